package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// WatermillBridge implements Publisher and Subscriber on top of watermill's
// in-process GoChannel. Delivery is best effort: a signal published while a
// subscriber is busy may arrive late or not at all, which is exactly the
// contract ephemeral signals carry.
type WatermillBridge struct {
	pub    message.Publisher
	sub    message.Subscriber
	logger watermill.LoggerAdapter
}

const metaKeyOrigin = "origin"

// NewWatermillBridge initializes the in-memory Pub/Sub bridge.
func NewWatermillBridge() *WatermillBridge {
	logger := watermill.NewStdLogger(false, false)
	goChannel := gochannel.NewGoChannel(gochannel.Config{}, logger)

	return &WatermillBridge{
		pub:    goChannel,
		sub:    goChannel,
		logger: logger,
	}
}

// Publish implements the Publisher interface.
func (wb *WatermillBridge) Publish(ctx context.Context, msg Message) error {
	wmMsg := message.NewMessage(watermill.NewUUID(), msg.Payload)
	wmMsg.Metadata.Set(metaKeyOrigin, msg.Origin)
	return wb.pub.Publish(msg.Topic, wmMsg)
}

// Subscribe implements the Subscriber interface. It returns once the
// subscription is active; messages are handled on a background goroutine.
func (wb *WatermillBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	messages, err := wb.sub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for wmMsg := range messages {
			msg := Message{
				Topic:   topic,
				Origin:  wmMsg.Metadata.Get(metaKeyOrigin),
				Payload: wmMsg.Payload,
			}
			if err := handler(ctx, msg); err != nil {
				slog.Error("Failed to handle message", "topic", topic, "msg_id", wmMsg.UUID, "error", err)
			}
			// Ephemeral signals are never redelivered; ack unconditionally.
			wmMsg.Ack()
		}
		slog.Debug("Subscription message loop ended", "topic", topic)
	}()

	return nil
}

// Close shuts down the bridge and stops message consumption.
func (wb *WatermillBridge) Close() error {
	return wb.sub.Close()
}
