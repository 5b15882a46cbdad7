package reconcile

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/realtime"
)

// Notification is a client-local record of a task assignment. It is never
// persisted anywhere: it exists only in this store and is discarded on
// dismissal or session end.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	ReceivedAt time.Time `json:"received_at"`
}

// Store holds the reconciled task collection and the notification list
// for one authenticated session.
type Store struct {
	mu            sync.RWMutex
	sessionUserID uuid.UUID
	tasks         []domain.Task
	notifications []Notification

	subscribers map[int]func()
	nextSubID   int

	// now is injectable so overdue filtering is testable.
	now func() time.Time
}

// NewStore creates an empty store scoped to the given session user.
// The session identity decides which task:assigned events produce
// notifications.
func NewStore(sessionUserID uuid.UUID) *Store {
	return &Store{
		sessionUserID: sessionUserID,
		subscribers:   make(map[int]func()),
		now:           time.Now,
	}
}

// SetClock overrides the store's clock. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Seed replaces the task collection with a freshly fetched snapshot.
// Push events applied before the snapshot arrived are superseded by it;
// events applied afterwards reconcile against it.
func (s *Store) Seed(tasks []domain.Task) {
	s.mu.Lock()
	s.tasks = make([]domain.Task, len(tasks))
	copy(s.tasks, tasks)
	s.mu.Unlock()

	s.publish()
}

// Apply reconciles one push event into the local state. Unknown event
// names are ignored; malformed payloads are reported but never fatal.
func (s *Store) Apply(envelope realtime.Envelope) error {
	switch envelope.Event {
	case realtime.EventTaskCreated, realtime.EventTaskUpdated, realtime.EventTaskAssigned:
		var task domain.Task
		if err := json.Unmarshal(envelope.Data, &task); err != nil {
			return fmt.Errorf("malformed %s payload: %w", envelope.Event, err)
		}
		switch envelope.Event {
		case realtime.EventTaskCreated:
			s.applyCreated(task)
		case realtime.EventTaskUpdated:
			s.applyUpdated(task)
		case realtime.EventTaskAssigned:
			s.applyAssigned(task)
		}

	case realtime.EventTaskDeleted:
		var payload realtime.DeletedPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return fmt.Errorf("malformed %s payload: %w", envelope.Event, err)
		}
		s.applyDeleted(payload.ID)
	}

	return nil
}

// applyCreated appends the task unless one with the same ID already
// exists. The duplicate case is normal: the REST response and the push
// event for the same create may both arrive.
func (s *Store) applyCreated(task domain.Task) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.mu.Unlock()
			return
		}
	}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	s.publish()
}

// applyUpdated replaces the matching task in place. An unknown ID is
// dropped silently: the record may belong to a filtered-out set or the
// event may have arrived before the initial list load completed.
func (s *Store) applyUpdated(task domain.Task) {
	s.mu.Lock()
	replaced := false
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			replaced = true
			break
		}
	}
	s.mu.Unlock()

	if replaced {
		s.publish()
	}
}

// applyDeleted removes the matching task; absent is a silent no-op.
func (s *Store) applyDeleted(taskID uuid.UUID) {
	s.mu.Lock()
	removed := false
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.publish()
	}
}

// applyAssigned produces a notification when the payload's assignee is
// the session user. Notifications are prepended (most recent first) and
// never deduplicated: repeated reassignment of the same task produces
// repeated notifications.
func (s *Store) applyAssigned(task domain.Task) {
	if task.AssignedToID == nil || *task.AssignedToID != s.sessionUserID {
		return
	}

	s.mu.Lock()
	notification := Notification{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Title:      task.Title,
		ReceivedAt: s.now(),
	}
	s.notifications = append([]Notification{notification}, s.notifications...)
	s.mu.Unlock()

	s.publish()
}

// Tasks returns a copy of the task collection in arrival order.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Notifications returns a copy of the notification list, most recent first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// DismissNotification discards one notification; absent is a no-op.
func (s *Store) DismissNotification(id uuid.UUID) {
	s.mu.Lock()
	dismissed := false
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			dismissed = true
			break
		}
	}
	s.mu.Unlock()

	if dismissed {
		s.publish()
	}
}

// Subscribe registers a change listener and returns its unsubscribe
// handle. Listeners fire after every applied mutation; a caller acquires
// the subscription on mount and must release it on teardown.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// publish invokes the current listeners outside the lock.
func (s *Store) publish() {
	s.mu.RLock()
	listeners := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
