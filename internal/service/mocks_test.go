package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/store"
)

// fakeTaskStore is an in-memory TaskStore honoring the participation rule.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *fakeTaskStore) GetForUser(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok || !task.IsParticipant(userID) {
		return nil, store.ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (s *fakeTaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Task
	for _, task := range s.tasks {
		if task.IsParticipant(userID) {
			out = append(out, task.Clone())
		}
	}
	return out, nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}

// emission records one publisher call.
type emission struct {
	event   string
	userID  *uuid.UUID // nil for broadcasts
	payload interface{}
}

// fakePublisher records every emission for assertions.
type fakePublisher struct {
	mu        sync.Mutex
	emissions []emission
}

func (p *fakePublisher) BroadcastAll(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emissions = append(p.emissions, emission{event: event, payload: payload})
}

func (p *fakePublisher) NotifyUser(userID uuid.UUID, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := userID
	p.emissions = append(p.emissions, emission{event: event, userID: &id, payload: payload})
}

func (p *fakePublisher) broadcasts(event string) []emission {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []emission
	for _, e := range p.emissions {
		if e.event == event && e.userID == nil {
			out = append(out, e)
		}
	}
	return out
}

func (p *fakePublisher) notifies(event string, userID uuid.UUID) []emission {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []emission
	for _, e := range p.emissions {
		if e.event == event && e.userID != nil && *e.userID == userID {
			out = append(out, e)
		}
	}
	return out
}
