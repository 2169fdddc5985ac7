package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus. The bus
// carries only ephemeral signals (typing, presence announcements); durable
// chat messages never travel through it.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "presence.typing").
	Topic string
	// Origin is the session id of the connection that produced the signal.
	// Relays use it to exclude the sender from fan-out.
	Origin string
	// Payload contains the raw signal data.
	Payload []byte
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages
	// with the handler. The subscription runs until the context is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
