package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
)

// TaskStore defines the interface for task persistence. Every read and
// mutation is scoped by participation: a task is only reachable by its
// creator or its current assignee.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the task fails domain validation or
	// references an unknown assignee.
	Create(ctx context.Context, task *domain.Task) error

	// GetForUser retrieves a task by ID, restricted to tasks where the
	// given user is the creator or the current assignee.
	// Returns ErrTaskNotFound otherwise, including when the task exists
	// but the user is not a participant.
	GetForUser(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)

	// ListForUser retrieves every task where the given user is the creator
	// or the current assignee, ordered by due date ascending with undated
	// tasks last.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// Update persists a complete task record over the existing row.
	// Returns ErrTaskNotFound if no row with that ID exists.
	// Returns ErrInvalidEntity on referential violations.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task permanently (hard delete, no tombstone).
	// Returns ErrTaskNotFound if no row with that ID exists.
	Delete(ctx context.Context, taskID uuid.UUID) error
}
