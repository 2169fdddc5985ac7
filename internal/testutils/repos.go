// Package testutils provides in-memory repository implementations shared
// by tests that don't need a live database.
package testutils

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parlorchat/parlor/internal/domain"
)

// MemoryUserStore is an in-memory domain.UserRepository.
type MemoryUserStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User // keyed by id
}

var _ domain.UserRepository = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*domain.User)}
}

// Create inserts a user, enforcing display name uniqueness.
func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Name == user.Name {
			return nil, domain.ErrUserAlreadyExists
		}
	}

	s.seq++
	stored := *user
	stored.ID = fmt.Sprintf("user:%d", s.seq)
	stored.CreatedAt = time.Now()
	stored.LastSeen = stored.CreatedAt
	s.users[stored.ID] = &stored

	out := stored
	return &out, nil
}

// FindByID returns the user with the given id, or nil.
func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, nil
}

// FindByName returns the user with the given display name, or nil.
func (s *MemoryUserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Name == name {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

// TouchLastSeen updates the user's last-seen timestamp.
func (s *MemoryUserStore) TouchLastSeen(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		u.LastSeen = time.Now()
	}
	return nil
}

// MemoryMessageStore is an in-memory domain.MessageRepository with an
// injectable append failure for exercising persistence error paths.
type MemoryMessageStore struct {
	mu        sync.Mutex
	seq       int
	base      time.Time
	messages  []*domain.Message
	appendErr error
}

var _ domain.MessageRepository = (*MemoryMessageStore)(nil)

// NewMemoryMessageStore creates an empty MemoryMessageStore.
func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{base: time.Now()}
}

// FailAppendWith makes subsequent Append calls fail with err. Pass nil to
// restore normal behavior.
func (s *MemoryMessageStore) FailAppendWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendErr = err
}

// Append stores a message, assigning a monotonically increasing id and a
// non-decreasing timestamp.
func (s *MemoryMessageStore) Append(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appendErr != nil {
		return nil, s.appendErr
	}

	s.seq++
	stored := *msg
	stored.ID = fmt.Sprintf("message:%d", s.seq)
	stored.CreatedAt = s.base.Add(time.Duration(s.seq) * time.Millisecond)
	s.messages = append(s.messages, &stored)

	out := stored
	return &out, nil
}

// Recent returns at most limit messages, oldest first.
func (s *MemoryMessageStore) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if len(s.messages) > limit {
		start = len(s.messages) - limit
	}

	out := make([]*domain.Message, 0, len(s.messages)-start)
	for _, m := range s.messages[start:] {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

// All returns every stored message in append order.
func (s *MemoryMessageStore) All() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		copied := *m
		out = append(out, &copied)
	}
	return out
}
