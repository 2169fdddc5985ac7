package domain

import (
	"context"
	"time"
)

// Message is a single chat message. The author name is a snapshot taken
// at send time; later display name changes do not rewrite history.
// Messages are immutable once appended.
type Message struct {
	ID         string    `json:"id,omitempty"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageRepository is the append-only message log consumed by the chat
// pipeline. Append assigns the message its id and timestamp; Recent
// returns at most limit messages in chronological order, oldest first.
type MessageRepository interface {
	Append(ctx context.Context, msg *Message) (*Message, error)
	Recent(ctx context.Context, limit int) ([]*Message, error)
}
