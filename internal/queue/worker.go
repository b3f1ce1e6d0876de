package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/streadway/amqp"

	"github.com/playlistor/playlistor/internal/shared"
)

// defaultMaxAttempts bounds how many times one job may run before it is
// dropped as poisoned.
const defaultMaxAttempts = 3

// Handler executes one conversion job. Returning an error wrapping
// shared.ErrRetryableUpstream schedules a delayed retry; any other error
// drops the job.
type Handler func(ctx context.Context, job ConversionJob) error

// Worker consumes conversion jobs from the queue and dispatches them to a
// handler, one at a time.
type Worker struct {
	channel     MessageChannel
	queueName   string
	handler     Handler
	logger      *log.Logger
	backoff     time.Duration
	maxAttempts int
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithRetryBackoff sets the delay before a retryable job is republished.
func WithRetryBackoff(backoff time.Duration) WorkerOption {
	return func(w *Worker) {
		if backoff > 0 {
			w.backoff = backoff
		}
	}
}

// WithMaxAttempts bounds total executions per job.
func WithMaxAttempts(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// NewWorker creates a Worker on an already-declared channel.
func NewWorker(channel MessageChannel, queueName string, handler Handler, logger *log.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		channel:     channel,
		queueName:   queueName,
		handler:     handler,
		logger:      logger,
		backoff:     30 * time.Second,
		maxAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// NewWorkerFromConnection opens a channel on conn, declares the queue, and
// builds a Worker for it.
func NewWorkerFromConnection(conn *amqp.Connection, queueName string, handler Handler, logger *log.Logger, opts ...WorkerOption) (*Worker, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	name, err := declareQueue(channel, queueName)
	if err != nil {
		_ = channel.Close()
		return nil, err
	}

	return NewWorker(channel, name, handler, logger, opts...), nil
}

// Start consumes deliveries until the channel closes or ctx is canceled.
func (w *Worker) Start(ctx context.Context) error {
	defer w.channel.Close()

	deliveries, err := w.channel.Consume(
		w.queueName,
		"",    // consumer
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to consume from %q: %w", w.queueName, err)
	}

	w.logger.Info("Worker started", "queue", w.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handleDelivery(ctx, delivery)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var job ConversionJob
	if err := json.Unmarshal(delivery.Body, &job); err != nil {
		w.logger.Error("Dropping malformed job", "error", err)
		w.nack(delivery)
		return
	}

	logger := w.logger.With("job", job.ID, "attempt", job.Attempt+1)
	logger.Info("Handling conversion job", "url", job.PlaylistURL)

	err := w.handler(ctx, job)
	if err == nil {
		logger.Info("Job completed")
		w.ack(delivery)
		return
	}

	if errors.Is(err, shared.ErrRetryableUpstream) && job.Attempt+1 < w.maxAttempts {
		logger.Warn("Retryable failure, scheduling retry", "backoff", w.backoff, "error", err)
		w.retry(ctx, job, delivery)
		return
	}

	logger.Error("Job failed", "error", err)
	w.nack(delivery)
}

// retry republishes the job with an incremented attempt count after the
// backoff, then acks the original delivery. Waiting in-process stands in
// for broker-side delayed delivery and blocks this worker for the duration.
func (w *Worker) retry(ctx context.Context, job ConversionJob, delivery amqp.Delivery) {
	select {
	case <-ctx.Done():
		// Shutdown before the backoff elapsed; requeue for another worker.
		if err := delivery.Nack(false, true); err != nil {
			w.logger.Error("Failed to requeue job", "job", job.ID, "error", err)
		}
		return
	case <-time.After(w.backoff):
	}

	job.Attempt++

	body, err := json.Marshal(job)
	if err != nil {
		w.logger.Error("Failed to encode retry", "job", job.ID, "error", err)
		w.nack(delivery)
		return
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	if err := w.channel.Publish("", w.queueName, true, false, msg); err != nil {
		w.logger.Error("Failed to republish job", "job", job.ID, "error", err)
		// Fall back to broker requeue so the job is not lost.
		if err := delivery.Nack(false, true); err != nil {
			w.logger.Error("Failed to requeue job", "job", job.ID, "error", err)
		}
		return
	}

	w.ack(delivery)
}

func (w *Worker) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		w.logger.Error("Failed to ack delivery", "error", err)
	}
}

func (w *Worker) nack(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		w.logger.Error("Failed to nack delivery", "error", err)
	}
}
