package api

import (
	"context"

	"tracker-api/domain"
)

// ProjectService is the project store used by handlers.
type ProjectService interface {
	Create(ctx context.Context, title string) (domain.Project, error)
	Get(ctx context.Context, id string) (domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	UpdateTitle(ctx context.Context, id, title string) (domain.Project, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, id string) (domain.Summary, error)
}

// TodoService is the todo store used by handlers.
type TodoService interface {
	Get(ctx context.Context, id string) (domain.Todo, error)
	Update(ctx context.Context, id string, changes domain.TodoChanges) (domain.Todo, error)
	SetStatus(ctx context.Context, id string, status domain.Status) (domain.Todo, error)
}

// Relationships maintains project todo references.
type Relationships interface {
	AddTodo(ctx context.Context, projectID, description string) (domain.Project, domain.Todo, error)
	LinkTodo(ctx context.Context, projectID, todoID string) error
	UnlinkTodo(ctx context.Context, projectID, todoID string) error
	DeleteTodoCascade(ctx context.Context, todoID, projectID string) error
	DeleteTodo(ctx context.Context, todoID string) error
}

// Exporter ships project summaries to the gist service.
type Exporter interface {
	Export(ctx context.Context, projectID string) (domain.ExportResult, error)
}

// Deduper prevents repeated processing of the same idempotency key.
type Deduper interface {
	// Add records the key and returns true if it was newly added.
	Add(ctx context.Context, scope, key string) (bool, error)
	// Remove deletes a previously added key, used when processing fails.
	Remove(ctx context.Context, scope, key string) error
}

// Services bundles the domain components exposed over HTTP. Deduper is optional.
type Services struct {
	Projects ProjectService
	Todos    TodoService
	Links    Relationships
	Exporter Exporter
	Deduper  Deduper
}
