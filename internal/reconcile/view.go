package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/taskwire/taskwire/internal/domain"

	"github.com/google/uuid"
)

// Scope selects which slice of the collection a view covers.
type Scope int

const (
	// ScopeAll includes every task the session can see.
	ScopeAll Scope = iota

	// ScopeAssignedToMe includes tasks assigned to the session user.
	ScopeAssignedToMe

	// ScopeCreatedByMe includes tasks created by the session user.
	ScopeCreatedByMe

	// ScopeOverdue includes tasks whose due date is strictly in the past
	// and whose status is not Completed.
	ScopeOverdue
)

// SortOrder selects the optional due-date ordering of a view.
type SortOrder int

const (
	// SortNone keeps arrival order.
	SortNone SortOrder = iota

	// SortDueAsc orders by due date ascending; undated tasks sort last.
	SortDueAsc

	// SortDueDesc orders by due date descending; undated tasks still sort last.
	SortDueDesc
)

// Filter describes a derived view of the task collection.
type Filter struct {
	Scope    Scope
	Status   *domain.Status
	Priority *domain.Priority

	// Search is matched case-insensitively as a substring of the title
	// or the description. Empty means no text filter.
	Search string

	Sort SortOrder
}

// View computes a derived, filtered and optionally sorted copy of the
// task collection. The pipeline is deterministic and order-stable for
// equal sort keys: filters preserve arrival order, and the sort is stable.
func (s *Store) View(filter Filter) []domain.Task {
	s.mu.RLock()
	tasks := make([]domain.Task, len(s.tasks))
	copy(tasks, s.tasks)
	sessionUserID := s.sessionUserID
	now := s.now()
	s.mu.RUnlock()

	return computeView(tasks, filter, sessionUserID, now)
}

// computeView is the pure filtering/sorting pipeline, split out so tests
// can drive it with a fixed "now".
func computeView(tasks []domain.Task, filter Filter, sessionUserID uuid.UUID, now time.Time) []domain.Task {
	out := tasks[:0:0]

	search := strings.ToLower(filter.Search)
	for _, task := range tasks {
		if !inScope(task, filter.Scope, sessionUserID, now) {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		out = append(out, task)
	}

	switch filter.Sort {
	case SortDueAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return dueLess(out[i].DueDate, out[j].DueDate, false)
		})
	case SortDueDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return dueLess(out[i].DueDate, out[j].DueDate, true)
		})
	}

	return out
}

func inScope(task domain.Task, scope Scope, sessionUserID uuid.UUID, now time.Time) bool {
	switch scope {
	case ScopeAssignedToMe:
		return task.AssignedToID != nil && *task.AssignedToID == sessionUserID
	case ScopeCreatedByMe:
		return task.CreatorID == sessionUserID
	case ScopeOverdue:
		return task.IsOverdue(now)
	default:
		return true
	}
}

// dueLess orders two due dates. Tasks without a due date sort last
// regardless of direction.
func dueLess(a, b *time.Time, desc bool) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	if desc {
		return a.After(*b)
	}
	return a.Before(*b)
}
