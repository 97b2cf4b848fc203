package domain_test

import (
	"context"
	"strings"
	"testing"

	"tracker-api/domain"
)

func TestSummaryThreePendingTwoCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Mixed")

	descs := []string{"p1", "c1", "p2", "c2", "p3"}
	for _, d := range descs {
		todo := f.addTodo(t, p.ID, d)
		if strings.HasPrefix(d, "c") {
			if _, err := f.todos.SetStatus(ctx, todo.ID, domain.StatusCompleted); err != nil {
				t.Fatalf("complete %s: %v", d, err)
			}
		}
	}

	sum, err := f.projects.Summary(ctx, p.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.CompletedCount != 2 || sum.TotalCount != 5 {
		t.Fatalf("unexpected counts: %+v", sum)
	}

	want := "# Mixed\n\n" +
		"### Summary: 2 / 5 completed\n\n" +
		"## Pending Todos\n" +
		"- [ ] p1\n- [ ] p2\n- [ ] p3\n" +
		"## Completed Todos\n" +
		"- [x] c1\n- [x] c2\n"
	if sum.Markdown != want {
		t.Fatalf("unexpected markdown:\n%s\nwant:\n%s", sum.Markdown, want)
	}
}

func TestSummaryLaunchExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Launch")
	write := f.addTodo(t, p.ID, "Write brief")
	f.addTodo(t, p.ID, "Review brief")

	if _, err := f.todos.SetStatus(ctx, write.ID, domain.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	sum, err := f.projects.Summary(ctx, p.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(sum.Markdown, "1 / 2 completed") {
		t.Fatalf("missing counts line: %q", sum.Markdown)
	}
	if !strings.Contains(sum.Markdown, "- [x] Write brief") || !strings.Contains(sum.Markdown, "- [ ] Review brief") {
		t.Fatalf("missing todo lines: %q", sum.Markdown)
	}
}

func TestSummaryStatusRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "P")
	todo := f.addTodo(t, p.ID, "only once")

	status := domain.StatusCompleted
	if _, err := f.todos.Update(ctx, todo.ID, domain.TodoChanges{Status: &status}); err != nil {
		t.Fatalf("update: %v", err)
	}
	sum, err := f.projects.Summary(ctx, p.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if n := strings.Count(sum.Markdown, "only once"); n != 1 {
		t.Fatalf("expected todo listed once, got %d", n)
	}
	pending, completed, _ := strings.Cut(sum.Markdown, "## Completed Todos")
	if strings.Contains(pending, "only once") || !strings.Contains(completed, "- [x] only once") {
		t.Fatalf("todo listed under wrong section: %q", sum.Markdown)
	}
}

func TestSummarizeEmptyProject(t *testing.T) {
	sum := domain.Summarize(domain.Project{Title: "Empty"})
	if sum.CompletedCount != 0 || sum.TotalCount != 0 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	want := "# Empty\n\n### Summary: 0 / 0 completed\n\n## Pending Todos\n## Completed Todos\n"
	if sum.Markdown != want {
		t.Fatalf("unexpected markdown %q", sum.Markdown)
	}
}
