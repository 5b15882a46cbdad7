package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/realtime"
	"github.com/taskwire/taskwire/internal/store"
)

// CreateTaskInput carries the fields for a new task. Zero values select
// the documented defaults: priority LOW, status ToDo, no assignee.
type CreateTaskInput struct {
	Title       string
	Description string

	// DueDate is an RFC 3339 timestamp string, or empty for no due date.
	// An unparseable value fails the operation with domain.ErrInvalidInput.
	DueDate string

	Priority     domain.Priority
	Status       domain.Status
	AssignedToID *uuid.UUID
}

// UpdateTaskInput carries a partial update. Pointer fields follow
// omitted-preserves semantics; Nullable fields additionally support an
// explicit null that clears the stored value. The null-clears rule applies
// uniformly to every optional field: description, due date and assignee.
type UpdateTaskInput struct {
	Title    *string
	Priority *domain.Priority
	Status   *domain.Status

	Description  domain.Nullable[string]
	DueDate      domain.Nullable[string] // RFC 3339
	AssignedToID domain.Nullable[uuid.UUID]
}

// TaskService implements the task operations. All reads and mutations are
// scoped by the participation rule: a task is visible and mutable to a
// user iff that user is the creator or the current assignee; everyone else
// sees not-found. The service signals the realtime publisher after each
// successful mutation, and mutation success never depends on delivery.
type TaskService struct {
	taskStore store.TaskStore
	publisher realtime.Publisher
	logger    *slog.Logger
}

// NewTaskService creates a TaskService with the given dependencies.
func NewTaskService(
	taskStore store.TaskStore,
	publisher realtime.Publisher,
	log *slog.Logger,
) *TaskService {
	if taskStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskStore cannot be nil for TaskService")
	}
	if publisher == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("publisher cannot be nil for TaskService")
	}
	if log == nil {
		log = slog.Default()
	}

	return &TaskService{
		taskStore: taskStore,
		publisher: publisher,
		logger:    log.With(slog.String("component", "task_service")),
	}
}

// CreateTask creates a task owned by creatorID, applying field defaults,
// and broadcasts it to all live connections. If the task is created with
// an assignee, that user is additionally target-notified.
func (s *TaskService) CreateTask(
	ctx context.Context,
	creatorID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(creatorID, input.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	task.Description = input.Description
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.Status != "" {
		task.Status = input.Status
	}
	task.AssignedToID = input.AssignedToID

	if input.DueDate != "" {
		due, err := parseDueDate(input.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", creatorID.String()))

	s.publisher.BroadcastAll(realtime.EventTaskCreated, task)
	if task.AssignedToID != nil {
		s.publisher.NotifyUser(*task.AssignedToID, realtime.EventTaskAssigned, task)
	}

	return task, nil
}

// ListTasks returns every task the user participates in.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.taskStore.ListForUser(ctx, userID)
}

// GetTask returns one task the user participates in, or store.ErrTaskNotFound.
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetForUser(ctx, taskID, userID)
}

// UpdateTask applies a partial update to a task the user participates in.
// Fields omitted from the input keep their existing value; Nullable fields
// set to explicit null are cleared. After a successful update the new
// state is broadcast, and if the assignee changed to a non-empty new
// value, that user is target-notified.
func (s *TaskService) UpdateTask(
	ctx context.Context,
	taskID, userID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.taskStore.GetForUser(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	updated := existing.Clone()

	if input.Title != nil {
		updated.Title = *input.Title
	}
	if input.Priority != nil {
		updated.Priority = *input.Priority
	}
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if input.Description.Set {
		if input.Description.Valid {
			updated.Description = input.Description.Value
		} else {
			updated.Description = ""
		}
	}
	if input.DueDate.Set {
		if input.DueDate.Valid {
			due, err := parseDueDate(input.DueDate.Value)
			if err != nil {
				return nil, err
			}
			updated.DueDate = due
		} else {
			updated.DueDate = nil
		}
	}
	if input.AssignedToID.Set {
		updated.AssignedToID = input.AssignedToID.Ptr()
	}

	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	updated.UpdatedAt = time.Now().UTC()

	if err := s.taskStore.Update(ctx, updated); err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", updated.ID.String()),
		slog.String("user_id", userID.String()))

	s.publisher.BroadcastAll(realtime.EventTaskUpdated, updated)

	if newAssignee := assigneeChange(existing, updated); newAssignee != nil {
		s.publisher.NotifyUser(*newAssignee, realtime.EventTaskAssigned, updated)
	}

	return updated, nil
}

// DeleteTask removes a task the user participates in (hard delete) and
// broadcasts the deletion. The deleted record is returned so callers can
// use it in response payloads.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.taskStore.GetForUser(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Delete(ctx, existing.ID); err != nil {
		return nil, err
	}

	log.Info("task deleted",
		slog.String("task_id", existing.ID.String()),
		slog.String("user_id", userID.String()))

	s.publisher.BroadcastAll(realtime.EventTaskDeleted, realtime.DeletedPayload{ID: existing.ID})

	return existing, nil
}

// assigneeChange returns the new assignee when the update changed the
// assignee to a non-empty value, and nil otherwise. Reassignment from A to
// B notifies B only; clearing the assignee notifies nobody.
func assigneeChange(before, after *domain.Task) *uuid.UUID {
	if after.AssignedToID == nil {
		return nil
	}
	if before.AssignedToID != nil && *before.AssignedToID == *after.AssignedToID {
		return nil
	}
	return after.AssignedToID
}

// parseDueDate parses an RFC 3339 timestamp into a UTC instant.
func parseDueDate(value string) (*time.Time, error) {
	due, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: due date %q is not a valid RFC 3339 timestamp",
			domain.ErrInvalidInput, value)
	}
	utc := due.UTC()
	return &utc, nil
}
