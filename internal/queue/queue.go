package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/playlistor/playlistor/internal/models"
)

// ConversionJob is the wire format of one queued conversion request.
type ConversionJob struct {
	ID          string           `json:"id"`
	PlaylistURL string           `json:"playlist_url"`
	Direction   models.Direction `json:"direction"`
	Attempt     int              `json:"attempt"`
}

// MessageChannel is the slice of amqp.Channel the queue layer uses.
// Narrowed to an interface so worker tests can run without a broker.
type MessageChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// declareQueue declares the durable conversion queue so publisher and worker
// can start in either order.
func declareQueue(channel MessageChannel, name string) (string, error) {
	queue, err := channel.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue %q: %w", name, err)
	}
	return queue.Name, nil
}

// Publisher enqueues conversion jobs.
type Publisher struct {
	channel   MessageChannel
	queueName string
}

// NewPublisher creates a Publisher on an already-declared channel.
func NewPublisher(channel MessageChannel, queueName string) *Publisher {
	return &Publisher{channel: channel, queueName: queueName}
}

// NewPublisherFromConnection opens a channel on conn and declares the queue.
func NewPublisherFromConnection(conn *amqp.Connection, queueName string) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	name, err := declareQueue(channel, queueName)
	if err != nil {
		_ = channel.Close()
		return nil, err
	}

	return NewPublisher(channel, name), nil
}

// Publish enqueues job as a persistent JSON message.
func (p *Publisher) Publish(job ConversionJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}

	if err := p.channel.Publish("", p.queueName, true, false, msg); err != nil {
		return fmt.Errorf("failed to publish job %s: %w", job.ID, err)
	}

	return nil
}

// Close releases the underlying channel.
func (p *Publisher) Close() error {
	return p.channel.Close()
}
