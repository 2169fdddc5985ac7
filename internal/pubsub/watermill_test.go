package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillBridge_PublishSubscribe(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var received []Message

	err := bridge.Subscribe(ctx, "presence.typing", func(ctx context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, msg)
		return nil
	})
	require.NoError(t, err)

	err = bridge.Publish(ctx, Message{
		Topic:   "presence.typing",
		Origin:  "session-1",
		Payload: []byte(`{"name":"alice"}`),
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "session-1", received[0].Origin)
	assert.Equal(t, "presence.typing", received[0].Topic)
	assert.JSONEq(t, `{"name":"alice"}`, string(received[0].Payload))
}

func TestWatermillBridge_TopicsAreIsolated(t *testing.T) {
	bridge := NewWatermillBridge()
	defer bridge.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Message, 1)
	err := bridge.Subscribe(ctx, "presence.joined", func(ctx context.Context, msg Message) error {
		got <- msg
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bridge.Publish(ctx, Message{Topic: "presence.left", Payload: []byte("x")}))
	require.NoError(t, bridge.Publish(ctx, Message{Topic: "presence.joined", Payload: []byte("y")}))

	select {
	case msg := <-got:
		assert.Equal(t, []byte("y"), msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("expected a message on presence.joined")
	}

	select {
	case msg := <-got:
		t.Fatalf("unexpected extra message: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
