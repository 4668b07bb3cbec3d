package pubsub

import "context"

// PubSubClient publishes msgpack-encoded messages to a topic.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic string, data any) error
	Close()
}
