package reconcile

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/domain"
)

func taskNamed(title string, mutate ...func(*domain.Task)) domain.Task {
	task := domain.Task{
		ID:        uuid.New(),
		Title:     title,
		Priority:  domain.PriorityLow,
		Status:    domain.StatusToDo,
		CreatorID: uuid.New(),
	}
	for _, fn := range mutate {
		fn(&task)
	}
	return task
}

func dueOn(year int, month time.Month, day int) func(*domain.Task) {
	return func(task *domain.Task) {
		due := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		task.DueDate = &due
	}
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestView_ScopeAll(t *testing.T) {
	t.Parallel()

	me := uuid.New()
	tasks := []domain.Task{taskNamed("a"), taskNamed("b")}

	out := computeView(tasks, Filter{Scope: ScopeAll}, me, time.Now())
	assert.Equal(t, []string{"a", "b"}, titles(out), "the default view preserves arrival order")
}

func TestView_ScopeAssignedToMe(t *testing.T) {
	t.Parallel()

	me := uuid.New()
	other := uuid.New()
	tasks := []domain.Task{
		taskNamed("mine", func(task *domain.Task) { task.AssignedToID = &me }),
		taskNamed("theirs", func(task *domain.Task) { task.AssignedToID = &other }),
		taskNamed("nobody's"),
	}

	out := computeView(tasks, Filter{Scope: ScopeAssignedToMe}, me, time.Now())
	assert.Equal(t, []string{"mine"}, titles(out))
}

func TestView_ScopeCreatedByMe(t *testing.T) {
	t.Parallel()

	me := uuid.New()
	tasks := []domain.Task{
		taskNamed("mine", func(task *domain.Task) { task.CreatorID = me }),
		taskNamed("theirs"),
	}

	out := computeView(tasks, Filter{Scope: ScopeCreatedByMe}, me, time.Now())
	assert.Equal(t, []string{"mine"}, titles(out))
}

func TestView_ScopeOverdue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		taskNamed("past due", dueOn(2024, 1, 1)),
		taskNamed("done anyway", dueOn(2024, 1, 1), func(task *domain.Task) {
			task.Status = domain.StatusCompleted
		}),
		taskNamed("future", dueOn(2026, 1, 1)),
		taskNamed("undated"),
	}

	out := computeView(tasks, Filter{Scope: ScopeOverdue}, uuid.New(), now)
	assert.Equal(t, []string{"past due"}, titles(out),
		"overdue excludes completed, future-dated and undated tasks")
}

func TestView_OverdueUsesStoreClock(t *testing.T) {
	t.Parallel()

	s := NewStore(uuid.New())
	s.SetClock(func() time.Time {
		return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	})
	s.Seed([]domain.Task{
		taskNamed("past due", dueOn(2024, 1, 1)),
		taskNamed("future", dueOn(2026, 1, 1)),
	})

	out := s.View(Filter{Scope: ScopeOverdue})
	require.Len(t, out, 1)
	assert.Equal(t, "past due", out[0].Title)
}

func TestView_StatusAndPriorityFilters(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		taskNamed("urgent todo", func(task *domain.Task) { task.Priority = domain.PriorityUrgent }),
		taskNamed("urgent done", func(task *domain.Task) {
			task.Priority = domain.PriorityUrgent
			task.Status = domain.StatusCompleted
		}),
		taskNamed("low todo"),
	}

	urgent := domain.PriorityUrgent
	todo := domain.StatusToDo

	out := computeView(tasks, Filter{Priority: &urgent}, uuid.New(), time.Now())
	assert.Equal(t, []string{"urgent todo", "urgent done"}, titles(out))

	out = computeView(tasks, Filter{Priority: &urgent, Status: &todo}, uuid.New(), time.Now())
	assert.Equal(t, []string{"urgent todo"}, titles(out), "filters compose conjunctively")
}

func TestView_SearchMatchesTitleAndDescription(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		taskNamed("Deploy API"),
		taskNamed("Write docs", func(task *domain.Task) {
			task.Description = "covers the deploy runbook"
		}),
		taskNamed("Unrelated"),
	}

	out := computeView(tasks, Filter{Search: "DEPLOY"}, uuid.New(), time.Now())
	assert.Equal(t, []string{"Deploy API", "Write docs"}, titles(out),
		"search is case-insensitive and spans title and description")
}

func TestView_SortDueAscNilLast(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		taskNamed("undated"),
		taskNamed("late", dueOn(2025, 12, 1)),
		taskNamed("early", dueOn(2025, 1, 1)),
	}

	out := computeView(tasks, Filter{Sort: SortDueAsc}, uuid.New(), time.Now())
	assert.Equal(t, []string{"early", "late", "undated"}, titles(out))
}

func TestView_SortDueDescNilStillLast(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		taskNamed("undated"),
		taskNamed("late", dueOn(2025, 12, 1)),
		taskNamed("early", dueOn(2025, 1, 1)),
	}

	out := computeView(tasks, Filter{Sort: SortDueDesc}, uuid.New(), time.Now())
	assert.Equal(t, []string{"late", "early", "undated"}, titles(out),
		"undated tasks sort last in both directions")
}

func TestView_SortIsStable(t *testing.T) {
	t.Parallel()

	tasks := []domain.Task{
		taskNamed("first", dueOn(2025, 6, 1)),
		taskNamed("second", dueOn(2025, 6, 1)),
		taskNamed("third"),
		taskNamed("fourth"),
	}

	for _, order := range []SortOrder{SortDueAsc, SortDueDesc} {
		out := computeView(tasks, Filter{Sort: order}, uuid.New(), time.Now())
		assert.Equal(t, []string{"first", "second", "third", "fourth"}, titles(out),
			"equal or absent due dates keep their original relative order")
	}
}

func TestView_DoesNotMutateStore(t *testing.T) {
	t.Parallel()

	s := NewStore(uuid.New())
	s.Seed([]domain.Task{
		taskNamed("b", dueOn(2025, 12, 1)),
		taskNamed("a", dueOn(2025, 1, 1)),
	})

	_ = s.View(Filter{Sort: SortDueAsc})
	assert.Equal(t, []string{"b", "a"}, titles(s.Tasks()),
		"sorting a view leaves the underlying collection untouched")
}
