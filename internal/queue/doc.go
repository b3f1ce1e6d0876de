// Package queue moves conversion jobs through RabbitMQ.
//
// [Publisher] enqueues JSON-encoded [ConversionJob] messages on a durable
// queue; [Worker] consumes them and runs the conversion handler per
// delivery. Retryable failures are republished after a fixed backoff with
// an incremented attempt count, bounded by the worker's attempt limit.
// Fatal failures and exhausted jobs are nacked without requeue.
package queue
