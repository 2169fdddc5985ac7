package database

import (
	"context"
	"fmt"

	"github.com/parlorchat/parlor/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// UserStore encapsulates database operations for users.
type UserStore struct {
	db *surrealdb.DB
}

var _ domain.UserRepository = (*UserStore)(nil)

// NewUserStore creates a new UserStore.
func NewUserStore(db *surrealdb.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a new user record. The display name must be unique;
// a duplicate yields domain.ErrUserAlreadyExists.
func (s *UserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	existing, err := s.FindByName(ctx, user.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	query := `
		CREATE user SET
			name = $name,
			email = $email,
			password = $password,
			createdAt = time::now(),
			lastSeen = time::now()
		RETURN AFTER
	`
	params := map[string]any{
		"name":     user.Name,
		"email":    user.Email,
		"password": user.Password,
	}

	created, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if created == nil {
		return nil, fmt.Errorf("user was not created or could not be fetched")
	}

	return created, nil
}

// FindByID retrieves a user record by its id.
func (s *UserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE meta::id(id) = $id OR id = $id"
	params := map[string]any{"id": id}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return user, nil
}

// FindByName queries for a single user by their display name.
func (s *UserStore) FindByName(ctx context.Context, name string) (*domain.User, error) {
	query := "SELECT * FROM user WHERE name = $name"
	params := map[string]any{"name": name}

	user, err := QueryOne[domain.User](ctx, s.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return user, nil
}

// TouchLastSeen updates the user's last-seen timestamp to now.
func (s *UserStore) TouchLastSeen(ctx context.Context, id string) error {
	query := "UPDATE user SET lastSeen = time::now() WHERE meta::id(id) = $id OR id = $id"
	params := map[string]any{"id": id}

	if err := Execute(ctx, s.db, query, params); err != nil {
		return fmt.Errorf("failed to touch last seen: %w", err)
	}
	return nil
}
