package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/parlorchat/parlor/internal/domain"
	"github.com/parlorchat/parlor/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainMessages empties a session's outbound queue and returns the ids of
// all new_message events, in delivery order.
func drainMessages(t *testing.T, s *Session) []string {
	t.Helper()

	var ids []string
	for {
		env, ok := recvEvent(t, s, 100*time.Millisecond)
		if !ok {
			return ids
		}
		if env.Event != EventNewMessage {
			continue
		}
		var msg domain.Message
		require.NoError(t, json.Unmarshal(env.Payload, &msg))
		ids = append(ids, msg.ID)
	}
}

func TestPipeline_AllReceiversObserveSameOrder(t *testing.T) {
	registry := NewRegistry()
	messages := testutils.NewMemoryMessageStore()
	pipeline := NewPipeline(registry, messages)

	receiverA := NewSession()
	receiverA.Authenticate("user:a", "a")
	receiverB := NewSession()
	receiverB.Authenticate("user:b", "b")
	require.NoError(t, registry.Insert(receiverA))
	require.NoError(t, registry.Insert(receiverB))

	const senders = 4
	const perSender = 20

	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func(i int) {
			defer wg.Done()
			sender := NewSession()
			sender.Authenticate(fmt.Sprintf("user:%d", i), fmt.Sprintf("sender%d", i))
			for j := 0; j < perSender; j++ {
				assert.NoError(t, pipeline.Send(context.Background(), sender, fmt.Sprintf("msg %d/%d", i, j)))
			}
		}(i)
	}
	wg.Wait()

	orderA := drainMessages(t, receiverA)
	orderB := drainMessages(t, receiverB)

	require.Len(t, orderA, senders*perSender)
	assert.Equal(t, orderA, orderB, "every receiver must observe the same relative message order")
}

func TestPipeline_SenderGoneBeforeBroadcastStillReachesOthers(t *testing.T) {
	registry := NewRegistry()
	messages := testutils.NewMemoryMessageStore()
	pipeline := NewPipeline(registry, messages)

	receiver := NewSession()
	receiver.Authenticate("user:b", "bob")
	require.NoError(t, registry.Insert(receiver))

	// The sender authenticated but dropped off the registry before its
	// persistence call completed.
	sender := NewSession()
	sender.Authenticate("user:a", "alice")
	sender.Close()

	require.NoError(t, pipeline.Send(context.Background(), sender, "parting words"))

	env := awaitEvent(t, receiver, EventNewMessage)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, "parting words", msg.Text)
	assert.Equal(t, "alice", msg.AuthorName)
	require.Len(t, messages.All(), 1)
}

func TestPipeline_AuthorNameIsSnapshotAtSendTime(t *testing.T) {
	registry := NewRegistry()
	messages := testutils.NewMemoryMessageStore()
	pipeline := NewPipeline(registry, messages)

	sender := NewSession()
	sender.Authenticate("user:a", "alice")
	require.NoError(t, registry.Insert(sender))

	require.NoError(t, pipeline.Send(context.Background(), sender, "as alice"))

	stored := messages.All()
	require.Len(t, stored, 1)
	assert.Equal(t, "alice", stored[0].AuthorName)
	assert.Equal(t, "user:a", stored[0].AuthorID)
}

func TestPipeline_HistoryEmptyLog(t *testing.T) {
	registry := NewRegistry()
	messages := testutils.NewMemoryMessageStore()
	pipeline := NewPipeline(registry, messages)

	sess := NewSession()
	require.NoError(t, pipeline.History(context.Background(), sess, 50))

	env := awaitEvent(t, sess, EventMessageHistory)
	var history []domain.Message
	require.NoError(t, json.Unmarshal(env.Payload, &history))
	assert.Empty(t, history)
	assert.NotEqual(t, "null", string(env.Payload), "empty history is an empty list, not null")
}
