package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	creatorID := uuid.New()
	task, err := NewTask(creatorID, "Write release notes")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, creatorID, task.CreatorID)
	assert.Equal(t, PriorityLow, task.Priority, "priority should default to LOW")
	assert.Equal(t, StatusToDo, task.Status, "status should default to ToDo")
	assert.Nil(t, task.AssignedToID)
	assert.Nil(t, task.DueDate)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, task.CreatedAt, task.UpdatedAt)
}

func TestNewTask_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewTask(uuid.New(), "")
	assert.ErrorIs(t, err, ErrTaskTitleEmpty)

	_, err = NewTask(uuid.Nil, "valid title")
	assert.ErrorIs(t, err, ErrTaskCreatorEmpty)

	_, err = NewTask(uuid.New(), strings.Repeat("x", MaxTitleLength+1))
	assert.ErrorIs(t, err, ErrTaskTitleTooLong)
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Task {
		return &Task{
			ID:        uuid.New(),
			Title:     "valid",
			Priority:  PriorityHigh,
			Status:    StatusInProgress,
			CreatorID: uuid.New(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"valid task", func(task *Task) {}, nil},
		{"nil ID", func(task *Task) { task.ID = uuid.Nil }, ErrTaskIDEmpty},
		{"unknown priority", func(task *Task) { task.Priority = "CRITICAL" }, ErrTaskInvalidPriority},
		{"unknown status", func(task *Task) { task.Status = "Done" }, ErrTaskInvalidStatus},
		{"empty title", func(task *Task) { task.Title = "" }, ErrTaskTitleEmpty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := valid()
			tc.mutate(task)

			err := task.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestTaskIsParticipant(t *testing.T) {
	t.Parallel()

	creator := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	task := &Task{ID: uuid.New(), Title: "t", CreatorID: creator}
	assert.True(t, task.IsParticipant(creator))
	assert.False(t, task.IsParticipant(assignee))

	task.AssignedToID = &assignee
	assert.True(t, task.IsParticipant(assignee))
	assert.False(t, task.IsParticipant(stranger))
}

func TestTaskIsOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	task := &Task{DueDate: &due, Status: StatusToDo}
	assert.True(t, task.IsOverdue(now))

	task.Status = StatusCompleted
	assert.False(t, task.IsOverdue(now), "completed tasks are never overdue")

	task = &Task{Status: StatusToDo}
	assert.False(t, task.IsOverdue(now), "tasks without a due date are never overdue")

	future := now.Add(time.Hour)
	task = &Task{DueDate: &future, Status: StatusToDo}
	assert.False(t, task.IsOverdue(now))
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	due := time.Now().UTC()
	assignee := uuid.New()
	task := &Task{
		ID:           uuid.New(),
		Title:        "original",
		DueDate:      &due,
		Priority:     PriorityMedium,
		Status:       StatusReview,
		CreatorID:    uuid.New(),
		AssignedToID: &assignee,
	}

	clone := task.Clone()
	require.Equal(t, task, clone)

	*clone.DueDate = due.Add(time.Hour)
	*clone.AssignedToID = uuid.New()
	clone.Title = "mutated"

	assert.Equal(t, "original", task.Title)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, assignee, *task.AssignedToID)
}
