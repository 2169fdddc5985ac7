package chat

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// sendBufferSize is the per-session outbound queue depth. A session whose
// buffer is full has its messages dropped rather than stalling the sender.
const sendBufferSize = 256

// Session binds a single live connection to an authenticated identity.
// It exists only in memory; a process restart drops all sessions and
// clients must re-authenticate.
type Session struct {
	// ID uniquely identifies the connection, not the user. A user with
	// several devices holds several sessions.
	ID string

	mu            sync.RWMutex
	userID        string
	name          string
	authenticated bool
	closed        bool

	send      chan []byte
	closeOnce sync.Once

	// disconnectOnce guards the gateway's cleanup so it runs exactly once
	// per connection even when close is signalled more than once.
	disconnectOnce sync.Once
}

// NewSession creates an unauthenticated session for a fresh connection.
func NewSession() *Session {
	return &Session{
		ID:   uuid.NewString(),
		send: make(chan []byte, sendBufferSize),
	}
}

// Authenticate records the verified identity on the session. It must be
// called at most once, enforced by the gateway's dispatch logic.
func (s *Session) Authenticate(userID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.name = name
	s.authenticated = true
}

// Authenticated reports whether the session has a verified identity.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Identity returns the session's user id and display name.
func (s *Session) Identity() (userID, name string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.name
}

// Deliver encodes an event and queues it for the session's write pump.
// The send is non-blocking: if the buffer is full the event is dropped,
// so one slow client never stalls a broadcast.
func (s *Session) Deliver(event string, payload any) {
	data, err := Encode(event, payload)
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "sessionID", s.ID, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.send <- data:
	default:
		slog.Warn("Session send buffer full, dropping event", "event", event, "sessionID", s.ID)
	}
}

// Close shuts the outbound queue. It is safe to call multiple times; the
// write pump drains whatever was queued and then closes the transport.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.send)
		s.mu.Unlock()
	})
}

// outbound exposes the send queue to the write pump.
func (s *Session) outbound() <-chan []byte {
	return s.send
}
