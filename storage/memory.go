package storage

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"sync"

	"tracker-api/domain"
)

// Memory is an in-process store with the same conditional write semantics
// as Tables. ETags are per-record version counters.
type Memory struct {
	mu       sync.Mutex
	version  uint64
	todos    map[string]domain.Todo
	projects map[string]domain.Project
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		todos:    map[string]domain.Todo{},
		projects: map[string]domain.Project{},
	}
}

func (m *Memory) nextETag() string {
	m.version++
	return strconv.FormatUint(m.version, 10)
}

func (m *Memory) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) InsertTodo(ctx context.Context, t domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertTodo(t)
}

func (m *Memory) insertTodo(t domain.Todo) error {
	if _, exists := m.todos[t.ID]; exists {
		return domain.ErrConcurrencyConflict
	}
	t.ETag = m.nextETag()
	m.todos[t.ID] = t
	return nil
}

func (m *Memory) UpdateTodo(ctx context.Context, t domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.todos[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if t.ETag != "" && t.ETag != cur.ETag {
		return domain.ErrConcurrencyConflict
	}
	t.ETag = m.nextETag()
	m.todos[t.ID] = t
	return nil
}

func (m *Memory) DeleteTodo(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.todos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.todos, id)
	return nil
}

func (m *Memory) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	p.TodoRefs = slices.Clone(p.TodoRefs)
	return &p, nil
}

// ListProjects returns projects ordered by creation time.
func (m *Memory) ListProjects(ctx context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		p.TodoRefs = slices.Clone(p.TodoRefs)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) InsertProject(ctx context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.projects[p.ID]; exists {
		return domain.ErrConcurrencyConflict
	}
	m.putProject(p)
	return nil
}

func (m *Memory) UpdateProject(ctx context.Context, p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkProject(p); err != nil {
		return err
	}
	m.putProject(p)
	return nil
}

func (m *Memory) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *Memory) InsertLinkedTodo(ctx context.Context, p domain.Project, t domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkProject(p); err != nil {
		return err
	}
	if err := m.insertTodo(t); err != nil {
		return err
	}
	m.putProject(p)
	return nil
}

func (m *Memory) UnlinkAndDeleteTodo(ctx context.Context, p domain.Project, todoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkProject(p); err != nil {
		return err
	}
	if _, ok := m.todos[todoID]; !ok {
		return domain.ErrNotFound
	}
	m.putProject(p)
	delete(m.todos, todoID)
	return nil
}

func (m *Memory) checkProject(p domain.Project) error {
	cur, ok := m.projects[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.ETag != "" && p.ETag != cur.ETag {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

func (m *Memory) putProject(p domain.Project) {
	p.TodoRefs = slices.Clone(p.TodoRefs)
	if p.TodoRefs == nil {
		p.TodoRefs = []string{}
	}
	p.Todos = nil
	p.ETag = m.nextETag()
	m.projects[p.ID] = p
}
