package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/parlorchat/parlor/internal/pubsub"
)

// Pub/sub topics for ephemeral signals. None of these are persisted and
// none carry a delivery guarantee.
const (
	TopicTyping = "presence.typing"
	TopicJoined = "presence.joined"
	TopicLeft   = "presence.left"
)

// Relay listens for ephemeral signals on the pub/sub bus and fans them
// out to live sessions, always excluding the originating session.
type Relay struct {
	pipeline   *Pipeline
	subscriber pubsub.Subscriber
}

// NewRelay creates a Relay over the given pipeline and subscriber.
func NewRelay(pipeline *Pipeline, subscriber pubsub.Subscriber) *Relay {
	return &Relay{pipeline: pipeline, subscriber: subscriber}
}

// Start subscribes to all ephemeral signal topics. It returns once the
// subscriptions are active.
func (r *Relay) Start(ctx context.Context) error {
	topics := map[string]string{
		TopicTyping: EventUserTyping,
		TopicJoined: EventUserJoined,
		TopicLeft:   EventUserLeft,
	}

	for topic, event := range topics {
		if err := r.subscriber.Subscribe(ctx, topic, r.forward(event)); err != nil {
			return err
		}
	}

	slog.Info("Presence relay started")
	return nil
}

// forward builds a handler that rebroadcasts a signal as the given wire
// event to everyone except its origin.
func (r *Relay) forward(event string) pubsub.Handler {
	return func(ctx context.Context, msg pubsub.Message) error {
		var payload NamePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			slog.Error("Failed to unmarshal presence signal", "topic", msg.Topic, "error", err)
			return err
		}

		r.pipeline.BroadcastExcept(msg.Origin, event, payload)
		return nil
	}
}
