package chat

import (
	"errors"
	"sync"
)

// ErrAlreadyRegistered is returned when inserting a session whose
// connection id is already present. Authentication happens at most once
// per connection, so a duplicate insert is a caller bug.
var ErrAlreadyRegistered = errors.New("session already registered")

// Registry is the single source of truth for who is online: one entry per
// live, authenticated connection. All mutations are atomic with respect
// to snapshot reads, so a broadcast iterating a snapshot is never
// corrupted by concurrent joins or leaves.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Insert registers an authenticated session. Inserting the same
// connection id twice fails with ErrAlreadyRegistered.
func (r *Registry) Insert(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrAlreadyRegistered
	}
	r.sessions[s.ID] = s
	return nil
}

// Remove unregisters a session by connection id. Removing an absent id is
// a no-op, which makes double cleanup on disconnect safe.
func (r *Registry) Remove(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Snapshot returns a consistent point-in-time copy of all live sessions.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	return all
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Names returns the display names of all live sessions. A user connected
// from several devices appears once per connection.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		_, name := s.Identity()
		names = append(names, name)
	}
	return names
}
