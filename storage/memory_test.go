package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"tracker-api/domain"
)

func TestMemoryUpdateProjectRejectsStaleETag(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.InsertProject(ctx, domain.Project{ID: "p1", Title: "A"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	first, _ := m.GetProject(ctx, "p1")
	second, _ := m.GetProject(ctx, "p1")

	first.TodoRefs = append(first.TodoRefs, "t1")
	if err := m.UpdateProject(ctx, *first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	second.TodoRefs = append(second.TodoRefs, "t2")
	if err := m.UpdateProject(ctx, *second); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}

	got, _ := m.GetProject(ctx, "p1")
	if len(got.TodoRefs) != 1 || got.TodoRefs[0] != "t1" {
		t.Fatalf("unexpected refs: %#v", got.TodoRefs)
	}
}

func TestMemoryUnlinkAndDeleteTodo(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.InsertProject(ctx, domain.Project{ID: "p1", Title: "A"})
	p, _ := m.GetProject(ctx, "p1")
	if err := m.InsertLinkedTodo(ctx, domain.Project{ID: "p1", Title: "A", TodoRefs: []string{"t1"}, ETag: p.ETag}, domain.Todo{ID: "t1", Description: "x"}); err != nil {
		t.Fatalf("insert linked: %v", err)
	}

	p, _ = m.GetProject(ctx, "p1")
	p.TodoRefs = nil
	if err := m.UnlinkAndDeleteTodo(ctx, *p, "t1"); err != nil {
		t.Fatalf("unlink and delete: %v", err)
	}
	if todo, _ := m.GetTodo(ctx, "t1"); todo != nil {
		t.Fatalf("expected todo deleted, got %+v", todo)
	}
	p, _ = m.GetProject(ctx, "p1")
	if len(p.TodoRefs) != 0 {
		t.Fatalf("expected no refs, got %#v", p.TodoRefs)
	}
	if err := m.UnlinkAndDeleteTodo(ctx, *p, "t1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing todo, got %v", err)
	}
}

func TestMemoryInsertLinkedTodoStaleProjectLeavesNoTodo(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.InsertProject(ctx, domain.Project{ID: "p1", Title: "A"})

	err := m.InsertLinkedTodo(ctx, domain.Project{ID: "p1", Title: "A", TodoRefs: []string{"t1"}, ETag: "stale"}, domain.Todo{ID: "t1", Description: "x"})
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if todo, _ := m.GetTodo(ctx, "t1"); todo != nil {
		t.Fatalf("expected todo not to be inserted")
	}
}

func TestMemoryListProjectsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = m.InsertProject(ctx, domain.Project{ID: "b", Title: "second", CreatedAt: base.Add(time.Minute)})
	_ = m.InsertProject(ctx, domain.Project{ID: "a", Title: "first", CreatedAt: base})

	projects, err := m.ListProjects(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != "a" || projects[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", projects)
	}
}

func TestMemoryDeleteMissing(t *testing.T) {
	m := NewMemory()
	if err := m.DeleteProject(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := m.DeleteTodo(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
