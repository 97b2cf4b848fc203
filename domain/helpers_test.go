package domain_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"tracker-api/domain"
	"tracker-api/storage"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now advances by one second on every call.
func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	store    *storage.Memory
	pub      *recordingPublisher
	clock    *stepClock
	hook     *test.Hook
	projects domain.ProjectService
	todos    domain.TodoService
	links    domain.Relationships
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	f := &fixture{
		store: storage.NewMemory(),
		pub:   &recordingPublisher{},
		clock: newStepClock(),
		hook:  hook,
	}
	opts := []domain.Option{
		domain.WithLogger(logger),
		domain.WithPublisher(f.pub),
		domain.WithClock(f.clock.Now),
	}
	f.projects = domain.NewProjectService(f.store, opts...)
	f.todos = domain.NewTodoService(f.store, opts...)
	f.links = domain.NewRelationships(f.store, opts...)
	return f
}

func (f *fixture) project(t *testing.T, title string) domain.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), title)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (f *fixture) addTodo(t *testing.T, projectID, desc string) domain.Todo {
	t.Helper()
	_, todo, err := f.links.AddTodo(context.Background(), projectID, desc)
	if err != nil {
		t.Fatalf("add todo %q: %v", desc, err)
	}
	return todo
}

const missingID = "6f1c2b8e-3a4d-4c5e-9f00-112233445566"
