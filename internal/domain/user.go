package domain

import (
	"context"
	"time"
)

// User represents a registered participant. It is owned by the durable
// store; the session engine only ever sees the identity fields.
type User struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"` // argon2id hash, never sent over the wire
	CreatedAt time.Time `json:"createdAt,omitempty"`
	LastSeen  time.Time `json:"lastSeen,omitempty"`
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	TouchLastSeen(ctx context.Context, id string) error
}
