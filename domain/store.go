package domain

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Store persists projects and todos. Getters return (nil, nil) for missing
// records; writers return ErrNotFound or ErrConcurrencyConflict.
type Store interface {
	GetTodo(ctx context.Context, id string) (*Todo, error)
	InsertTodo(ctx context.Context, t Todo) error
	// UpdateTodo replaces the todo, conditional on t.ETag when set.
	UpdateTodo(ctx context.Context, t Todo) error
	DeleteTodo(ctx context.Context, id string) error

	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	InsertProject(ctx context.Context, p Project) error
	// UpdateProject writes title and refs, conditional on p.ETag when set.
	UpdateProject(ctx context.Context, p Project) error
	DeleteProject(ctx context.Context, id string) error

	// InsertLinkedTodo inserts t and writes p (already carrying the new ref) atomically.
	InsertLinkedTodo(ctx context.Context, p Project, t Todo) error
	// UnlinkAndDeleteTodo writes p (without the ref) and deletes the todo atomically.
	UnlinkAndDeleteTodo(ctx context.Context, p Project, todoID string) error
}

// Event types published after successful mutations.
const (
	ProjectCreated  = "project-created"
	ProjectRenamed  = "project-renamed"
	ProjectDeleted  = "project-deleted"
	ProjectExported = "project-exported"
	TodoCreated     = "todo-created"
	TodoUpdated     = "todo-updated"
	TodoDeleted     = "todo-deleted"
	TodoLinked      = "todo-linked"
	TodoUnlinked    = "todo-unlinked"
)

// Event describes a completed change for downstream consumers.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	EntityID  string    `json:"entityId"`
	ProjectID string    `json:"projectId,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher delivers activity events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

// Option configures the domain services.
type Option func(*deps)

type deps struct {
	pub    Publisher
	logger *log.Logger
	now    func() time.Time
}

// WithPublisher sets the activity event publisher.
func WithPublisher(p Publisher) Option {
	return func(d *deps) {
		if p != nil {
			d.pub = p
		}
	}
}

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *log.Logger) Option {
	return func(d *deps) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

func newDeps(opts []Option) deps {
	d := deps{
		pub:    noopPublisher{},
		logger: log.StandardLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d deps) publish(ctx context.Context, typ, entityID, projectID string) {
	ev := Event{
		ID:        newID(),
		Type:      typ,
		EntityID:  entityID,
		ProjectID: projectID,
		Time:      d.now(),
	}
	if err := d.pub.Publish(ctx, ev); err != nil {
		d.logger.WithFields(log.Fields{"event": typ, "entity": entityID, "error": err}).Warn("publish activity event failed")
	}
}

const maxWriteAttempts = 5

// retryOnConflict re-runs fn while the store reports a lost optimistic write.
func retryOnConflict(fn func() error) error {
	var err error
	for i := 0; i < maxWriteAttempts; i++ {
		err = fn()
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
