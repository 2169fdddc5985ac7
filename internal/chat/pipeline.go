package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/parlorchat/parlor/internal/domain"
)

// ErrEmptyMessage is returned for a send_message whose text is empty
// after trimming. Nothing is persisted or broadcast.
var ErrEmptyMessage = errors.New("message text is empty")

// Pipeline accepts outbound text from authenticated sessions, persists it,
// and fans the persisted message out to every live session.
type Pipeline struct {
	registry *Registry
	messages domain.MessageRepository

	// mu serializes snapshot-and-fan-out so every receiver observes the
	// same relative order for any two messages. It is only ever held for
	// in-memory enqueueing, never across a store call.
	mu sync.Mutex
}

// NewPipeline creates a Pipeline over the given registry and message log.
func NewPipeline(registry *Registry, messages domain.MessageRepository) *Pipeline {
	return &Pipeline{registry: registry, messages: messages}
}

// Send persists a message authored by the session and broadcasts it to
// everyone currently registered, sender included. The persistence call
// runs without any shared lock held, so a slow store stalls only the
// sending connection. If persistence fails nothing is broadcast.
//
// Messages from one sender keep their submission order because each
// connection's events are handled sequentially by its read loop. Across
// senders, receivers all observe the same relative order: fan-out happens
// in the order persistence completes, and broadcast itself delivers to a
// consistent registry snapshot.
func (p *Pipeline) Send(ctx context.Context, sess *Session, text string) error {
	userID, name := sess.Identity()

	msg := &domain.Message{
		AuthorID:   userID,
		AuthorName: name,
		Text:       text,
	}

	persisted, err := p.messages.Append(ctx, msg)
	if err != nil {
		return fmt.Errorf("could not persist message: %w", err)
	}

	// The sender may have disconnected while Append was in flight. The
	// snapshot no longer contains it, so the message still reaches every
	// other live session and the stale connection gets nothing.
	p.Broadcast(EventNewMessage, persisted)
	return nil
}

// History replays the most recent persisted messages, oldest first, to a
// single session.
func (p *Pipeline) History(ctx context.Context, sess *Session, limit int) error {
	messages, err := p.messages.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("could not load message history: %w", err)
	}
	if messages == nil {
		messages = []*domain.Message{}
	}
	sess.Deliver(EventMessageHistory, messages)
	return nil
}

// Broadcast delivers one event to every session in a registry snapshot.
// Concurrent broadcasts are serialized; their order is the order in which
// the callers' persistence steps completed.
func (p *Pipeline) Broadcast(event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.registry.Snapshot() {
		s.Deliver(event, payload)
	}
}

// BroadcastExcept delivers one event to every session in a registry
// snapshot except the named one. Used for presence announcements and
// typing indicators, which never echo back to their origin.
func (p *Pipeline) BroadcastExcept(exceptID, event string, payload any) {
	for _, s := range p.registry.Snapshot() {
		if s.ID == exceptID {
			continue
		}
		s.Deliver(event, payload)
	}
}
