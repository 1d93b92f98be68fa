package messagequeue

import "context"

// MessageQueue defines the interface for message queue services.
type MessageQueue interface {
	Publish(ctx context.Context, queueName string, body []byte) error
	// Consume delivers messages to handler until ctx is cancelled or the
	// delivery channel closes. A handler error requeues the message.
	Consume(ctx context.Context, queueName string, handler func(body []byte) error) error
	Close() error
}
