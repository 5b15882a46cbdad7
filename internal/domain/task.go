package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskCreatorEmpty is returned when a task's creator ID is empty or nil.
	ErrTaskCreatorEmpty = errors.New("task creator ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task's title exceeds 100 characters.
	ErrTaskTitleTooLong = errors.New("task title must be at most 100 characters")

	// ErrTaskInvalidPriority is returned when a priority value is not recognized.
	ErrTaskInvalidPriority = errors.New("invalid task priority")

	// ErrTaskInvalidStatus is returned when a status value is not recognized.
	ErrTaskInvalidStatus = errors.New("invalid task status")
)

// MaxTitleLength is the maximum number of characters allowed in a task title.
const MaxTitleLength = 100

// Priority represents the urgency of a task.
type Priority string

// Valid task priorities, in ascending order of urgency.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is one of the recognized priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status represents where a task sits in its workflow.
type Status string

// Valid task statuses.
const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
)

// IsValid reports whether s is one of the recognized statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// Task represents a unit of work tracked by the application.
// A task is visible and mutable only to its creator and, when set,
// its current assignee.
//
// The JSON field names match the wire format consumed by clients.
type Task struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Priority     Priority   `json:"priority"`
	Status       Status     `json:"status"`
	CreatorID    uuid.UUID  `json:"creatorId"`
	AssignedToID *uuid.UUID `json:"assignedToId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewTask creates a new Task owned by the given creator with default
// priority LOW and status ToDo. It generates a new UUID for the task ID
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(creatorID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  PriorityLow,
		Status:    StatusToDo,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.CreatorID == uuid.Nil {
		return ErrTaskCreatorEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if len([]rune(t.Title)) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if !t.Priority.IsValid() {
		return ErrTaskInvalidPriority
	}

	if !t.Status.IsValid() {
		return ErrTaskInvalidStatus
	}

	return nil
}

// IsParticipant reports whether the given user is the task's creator or
// its current assignee. All read and write access is scoped to participants.
func (t *Task) IsParticipant(userID uuid.UUID) bool {
	if t.CreatorID == userID {
		return true
	}
	return t.AssignedToID != nil && *t.AssignedToID == userID
}

// IsOverdue reports whether the task has a due date strictly in the past
// relative to now and is not yet completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted
}

// Clone returns a deep copy of the task. Pointer fields are copied by value
// so mutating the clone never affects the original.
func (t *Task) Clone() *Task {
	clone := *t
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	if t.AssignedToID != nil {
		assignee := *t.AssignedToID
		clone.AssignedToID = &assignee
	}
	return &clone
}
