package database

import (
	"context"
	"fmt"

	"github.com/parlorchat/parlor/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// MessageStore is the append-only message log backed by SurrealDB.
type MessageStore struct {
	db *surrealdb.DB
}

var _ domain.MessageRepository = (*MessageStore)(nil)

// NewMessageStore creates a new MessageStore.
func NewMessageStore(db *surrealdb.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Append persists a new message. The id and timestamp are assigned by the
// database so storage order matches timestamp order.
func (s *MessageStore) Append(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	query := `
		CREATE message SET
			authorId = $authorId,
			authorName = $authorName,
			text = $text,
			createdAt = time::now()
		RETURN AFTER
	`
	params := map[string]any{
		"authorId":   msg.AuthorID,
		"authorName": msg.AuthorName,
		"text":       msg.Text,
	}

	created, err := QueryOne[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("message was not created or could not be fetched")
	}

	return created, nil
}

// Recent retrieves the limit most recent messages, oldest first.
func (s *MessageStore) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	query := "SELECT * FROM message ORDER BY createdAt DESC LIMIT $limit"
	params := map[string]any{"limit": limit}

	result, err := Query[domain.Message](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	messages := make([]*domain.Message, len(result))
	for i := range result {
		messages[i] = &result[i]
	}

	// The query returns newest first; reverse to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
