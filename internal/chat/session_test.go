package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recvEvent reads one envelope off the session's outbound queue, failing
// fast if nothing arrives in time.
func recvEvent(t *testing.T, s *Session, timeout time.Duration) (Envelope, bool) {
	t.Helper()
	select {
	case data, ok := <-s.send:
		if !ok {
			return Envelope{}, false
		}
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env, true
	case <-time.After(timeout):
		return Envelope{}, false
	}
}

// awaitEvent reads envelopes until one matches the wanted event name.
func awaitEvent(t *testing.T, s *Session, want string) Envelope {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		env, ok := recvEvent(t, s, time.Until(deadline))
		if !ok {
			break
		}
		if env.Event == want {
			return env
		}
	}
	t.Fatalf("did not receive %q event in time", want)
	return Envelope{}
}

func TestSession_DeliverAndClose(t *testing.T) {
	sess := NewSession()

	sess.Deliver(EventError, ErrorPayload{Message: "boom"})

	env, ok := recvEvent(t, sess, time.Second)
	require.True(t, ok)
	assert.Equal(t, EventError, env.Event)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "boom", payload.Message)

	sess.Close()
	sess.Close() // idempotent

	// Deliver after close is a silent no-op, not a panic on a closed channel.
	sess.Deliver(EventError, ErrorPayload{Message: "after close"})

	_, ok = recvEvent(t, sess, 50*time.Millisecond)
	assert.False(t, ok, "closed session must not accept deliveries")
}

func TestSession_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	sess := NewSession()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < sendBufferSize+10; i++ {
			sess.Deliver(EventUserTyping, NamePayload{Name: "alice"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Deliver blocked on a full send buffer")
	}
}

func TestSession_AuthenticateRecordsIdentity(t *testing.T) {
	sess := NewSession()
	assert.False(t, sess.Authenticated())

	sess.Authenticate("user:7", "carol")
	assert.True(t, sess.Authenticated())

	userID, name := sess.Identity()
	assert.Equal(t, "user:7", userID)
	assert.Equal(t, "carol", name)
}
