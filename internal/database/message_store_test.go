package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/parlorchat/parlor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageStore_AppendAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMessageStore(db)

	msg, err := store.Append(ctx, &domain.Message{
		AuthorID:   "user:alice",
		AuthorName: "alice",
		Text:       "hello",
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "alice", msg.AuthorName)
}

func TestMessageStore_RecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMessageStore(db)

	const total = 60
	for i := 0; i < total; i++ {
		_, err := store.Append(ctx, &domain.Message{
			AuthorID:   "user:bob",
			AuthorName: "bob",
			Text:       fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	messages, err := store.Recent(ctx, 50)
	require.NoError(t, err)
	require.Len(t, messages, 50)

	// The 50 most recent of 60, oldest first.
	assert.Equal(t, "message 10", messages[0].Text)
	assert.Equal(t, "message 59", messages[49].Text)

	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt),
			"timestamps must be non-decreasing in replay order")
	}
}
