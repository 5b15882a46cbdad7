package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user's HashedPassword must
	// already be populated; plaintext passwords never reach the store.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns every registered user ordered by email. Used by clients
	// to populate the assignee picker; hashed passwords are not loaded.
	List(ctx context.Context) ([]*domain.User, error)

	// UpdateDisplayName changes a user's display name.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateDisplayName(ctx context.Context, id uuid.UUID, displayName string) error
}
