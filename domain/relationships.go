package domain

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Relationships keeps project todo references consistent with the todo records.
type Relationships struct {
	st       Store
	projects ProjectService
	todos    TodoService
	deps
}

func NewRelationships(st Store, opts ...Option) Relationships {
	return Relationships{
		st:       st,
		projects: NewProjectService(st, opts...),
		todos:    NewTodoService(st, opts...),
		deps:     newDeps(opts),
	}
}

// AddTodo creates a todo and links it to the end of the project's refs.
func (r Relationships) AddTodo(ctx context.Context, projectID, description string) (Project, Todo, error) {
	if err := checkID(kindProject, projectID); err != nil {
		return Project{}, Todo{}, err
	}
	t, err := r.todos.newTodo(description)
	if err != nil {
		return Project{}, Todo{}, err
	}
	var linked Project
	err = retryOnConflict(func() error {
		p, err := r.projects.load(ctx, projectID)
		if err != nil {
			return err
		}
		p.TodoRefs = append(slices.Clone(p.TodoRefs), t.ID)
		if err := r.st.InsertLinkedTodo(ctx, p, t); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Kind: kindProject}
			}
			return err
		}
		linked = p
		return nil
	})
	if err != nil {
		return Project{}, Todo{}, err
	}
	if err := r.projects.resolve(ctx, &linked); err != nil {
		return Project{}, Todo{}, err
	}
	r.publish(ctx, TodoCreated, t.ID, projectID)
	r.publish(ctx, TodoLinked, t.ID, projectID)
	return linked, t, nil
}

// LinkTodo appends an existing todo to the project's refs.
func (r Relationships) LinkTodo(ctx context.Context, projectID, todoID string) error {
	if err := checkID(kindProject, projectID); err != nil {
		return err
	}
	if err := checkID(kindTodo, todoID); err != nil {
		return err
	}
	err := retryOnConflict(func() error {
		p, err := r.projects.load(ctx, projectID)
		if err != nil {
			return err
		}
		if _, err := r.todos.Get(ctx, todoID); err != nil {
			return err
		}
		if p.HasTodo(todoID) {
			return &ConflictError{Msg: "Todo already added to this project"}
		}
		p.TodoRefs = append(slices.Clone(p.TodoRefs), todoID)
		return r.updateProject(ctx, p)
	})
	if err != nil {
		return err
	}
	r.publish(ctx, TodoLinked, todoID, projectID)
	return nil
}

// UnlinkTodo removes the todo from the project's refs. It succeeds when the
// todo is not linked.
func (r Relationships) UnlinkTodo(ctx context.Context, projectID, todoID string) error {
	if err := checkID(kindProject, projectID); err != nil {
		return err
	}
	if err := checkID(kindTodo, todoID); err != nil {
		return err
	}
	removed := false
	err := retryOnConflict(func() error {
		p, err := r.projects.load(ctx, projectID)
		if err != nil {
			return err
		}
		refs, ok := p.withoutTodo(todoID)
		if !ok {
			return nil
		}
		p.TodoRefs = refs
		if err := r.updateProject(ctx, p); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return err
	}
	if removed {
		r.publish(ctx, TodoUnlinked, todoID, projectID)
	}
	return nil
}

// DeleteTodoCascade removes the todo from the named project and deletes the
// todo record in one store operation. Refs held by other projects are
// removed first so no project is left pointing at the deleted record.
func (r Relationships) DeleteTodoCascade(ctx context.Context, todoID, projectID string) error {
	if err := checkID(kindTodo, todoID); err != nil {
		return err
	}
	if err := checkID(kindProject, projectID); err != nil {
		return err
	}
	if _, err := r.todos.Get(ctx, todoID); err != nil {
		return err
	}
	if _, err := r.projects.load(ctx, projectID); err != nil {
		return err
	}
	if err := r.unlinkEverywhere(ctx, todoID, projectID); err != nil {
		return err
	}
	err := retryOnConflict(func() error {
		p, err := r.projects.load(ctx, projectID)
		if err != nil {
			return err
		}
		p.TodoRefs, _ = p.withoutTodo(todoID)
		if err := r.st.UnlinkAndDeleteTodo(ctx, p, todoID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Kind: kindTodo}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.publish(ctx, TodoUnlinked, todoID, projectID)
	r.publish(ctx, TodoDeleted, todoID, projectID)
	return nil
}

// DeleteTodo unlinks the todo from every project referencing it and then
// deletes the record.
func (r Relationships) DeleteTodo(ctx context.Context, todoID string) error {
	if _, err := r.todos.Get(ctx, todoID); err != nil {
		return err
	}
	if err := r.unlinkEverywhere(ctx, todoID, ""); err != nil {
		return err
	}
	return r.todos.Delete(ctx, todoID)
}

// unlinkEverywhere removes todoID from every project except skipID. Projects
// deleted meanwhile are ignored.
func (r Relationships) unlinkEverywhere(ctx context.Context, todoID, skipID string) error {
	projects, err := r.st.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		if p.ID == skipID || !p.HasTodo(todoID) {
			continue
		}
		if err := r.UnlinkTodo(ctx, p.ID, todoID); err != nil {
			var nf *NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return err
		}
	}
	return nil
}

func (r Relationships) updateProject(ctx context.Context, p Project) error {
	if err := r.st.UpdateProject(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: kindProject}
		}
		return err
	}
	return nil
}
