package domain_test

import (
	"context"
	"errors"
	"testing"

	"tracker-api/domain"
)

func TestCreateThenGetProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"Launch", "  padded  ", "ünïcode ✓"} {
		created := f.project(t, title)
		got, err := f.projects.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("get %q: %v", title, err)
		}
		if got.Title != title {
			t.Fatalf("expected title %q got %q", title, got.Title)
		}
		if got.TodoRefs == nil || len(got.TodoRefs) != 0 {
			t.Fatalf("expected empty todo refs, got %v", got.TodoRefs)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("createdAt changed: %v vs %v", got.CreatedAt, created.CreatedAt)
		}
	}
}

func TestCreateProjectRequiresTitle(t *testing.T) {
	f := newFixture(t)
	for _, title := range []string{"", "   "} {
		_, err := f.projects.Create(context.Background(), title)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || verr.Msg != "Title is required" {
			t.Fatalf("expected title validation error for %q, got %v", title, err)
		}
	}
}

func TestGetProjectErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.Get(ctx, "nope")
	var invalid *domain.InvalidIDError
	if !errors.As(err, &invalid) || invalid.Error() != "Invalid Project ID" {
		t.Fatalf("expected invalid id error, got %v", err)
	}

	_, err = f.projects.Get(ctx, missingID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Error() != "Project not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProjectsInCreationOrder(t *testing.T) {
	f := newFixture(t)
	a := f.project(t, "A")
	b := f.project(t, "B")
	f.addTodo(t, b.ID, "b1")

	list, err := f.projects.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
	if len(list[1].Todos) != 1 || list[1].Todos[0].Description != "b1" {
		t.Fatalf("expected resolved todos, got %+v", list[1].Todos)
	}
}

func TestUpdateTitleKeepsRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Old")
	todo := f.addTodo(t, p.ID, "keep me")

	updated, err := f.projects.UpdateTitle(ctx, p.ID, "New")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "New" {
		t.Fatalf("expected renamed, got %q", updated.Title)
	}
	got, err := f.projects.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.TodoRefs) != 1 || got.TodoRefs[0] != todo.ID {
		t.Fatalf("expected refs preserved, got %v", got.TodoRefs)
	}

	if _, err := f.projects.UpdateTitle(ctx, p.ID, " "); err == nil {
		t.Fatalf("expected blank title to be rejected")
	}
}

func TestDeleteProjectLeavesTodos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Doomed")
	todo := f.addTodo(t, p.ID, "survivor")

	if err := f.projects.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.todos.Get(ctx, todo.ID); err != nil {
		t.Fatalf("expected todo to survive project deletion: %v", err)
	}
	err := f.projects.Delete(ctx, p.ID)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGetSkipsDanglingRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "P")
	todo := f.addTodo(t, p.ID, "gone")
	f.addTodo(t, p.ID, "here")

	if err := f.todos.Delete(ctx, todo.ID); err != nil {
		t.Fatalf("raw delete: %v", err)
	}
	got, err := f.projects.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.TodoRefs) != 2 {
		t.Fatalf("expected stale ref to remain, got %v", got.TodoRefs)
	}
	if len(got.Todos) != 1 || got.Todos[0].Description != "here" {
		t.Fatalf("expected only live todo resolved, got %+v", got.Todos)
	}
}

func TestProjectEventsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "P")
	if _, err := f.projects.UpdateTitle(ctx, p.ID, "Q"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := f.projects.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []string{domain.ProjectCreated, domain.ProjectRenamed, domain.ProjectDeleted}
	got := f.pub.Types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v got %v", want, got)
		}
	}
}

func TestPublishFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("queue down")
	f.project(t, "P")

	entry := f.hook.LastEntry()
	if entry == nil || entry.Message != "publish activity event failed" {
		t.Fatalf("expected publish failure warning, got %+v", entry)
	}
}
