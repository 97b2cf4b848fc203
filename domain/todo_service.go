package domain

import (
	"context"
	"errors"
	"fmt"
)

// TodoService manages individual todo records.
type TodoService struct {
	st Store
	deps
}

func NewTodoService(st Store, opts ...Option) TodoService {
	return TodoService{st: st, deps: newDeps(opts)}
}

// Create stores a standalone pending todo.
func (s TodoService) Create(ctx context.Context, description string) (Todo, error) {
	t, err := s.newTodo(description)
	if err != nil {
		return Todo{}, err
	}
	if err := s.st.InsertTodo(ctx, t); err != nil {
		return Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	s.publish(ctx, TodoCreated, t.ID, "")
	return t, nil
}

func (s TodoService) newTodo(description string) (Todo, error) {
	if err := validateDescription(description); err != nil {
		return Todo{}, err
	}
	now := s.now()
	return Todo{
		ID:          newID(),
		Description: description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get returns the todo with the given id.
func (s TodoService) Get(ctx context.Context, id string) (Todo, error) {
	if err := checkID(kindTodo, id); err != nil {
		return Todo{}, err
	}
	t, err := s.st.GetTodo(ctx, id)
	if err != nil {
		return Todo{}, fmt.Errorf("get todo: %w", err)
	}
	if t == nil {
		return Todo{}, &NotFoundError{Kind: kindTodo}
	}
	return *t, nil
}

// Update applies the provided changes. UpdatedAt is refreshed only when a
// field actually changes value.
func (s TodoService) Update(ctx context.Context, id string, changes TodoChanges) (Todo, error) {
	if changes.Description == nil && changes.Status == nil {
		return Todo{}, &ValidationError{Msg: "Description or status must be provided"}
	}
	if changes.Description != nil {
		if err := validateDescription(*changes.Description); err != nil {
			return Todo{}, err
		}
	}
	if changes.Status != nil {
		if _, err := ParseStatus(string(*changes.Status)); err != nil {
			return Todo{}, err
		}
	}

	var updated Todo
	err := retryOnConflict(func() error {
		t, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		changed := false
		if changes.Description != nil && *changes.Description != t.Description {
			t.Description = *changes.Description
			changed = true
		}
		if changes.Status != nil && *changes.Status != t.Status {
			t.Status = *changes.Status
			changed = true
		}
		if !changed {
			updated = t
			return nil
		}
		t.UpdatedAt = s.now()
		if err := s.st.UpdateTodo(ctx, t); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Kind: kindTodo}
			}
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return Todo{}, err
	}
	s.publish(ctx, TodoUpdated, updated.ID, "")
	return updated, nil
}

// SetStatus marks the todo as pending or completed.
func (s TodoService) SetStatus(ctx context.Context, id string, status Status) (Todo, error) {
	return s.Update(ctx, id, TodoChanges{Status: &status})
}

// Delete removes the todo record only. Callers that need reference cleanup
// go through Relationships.
func (s TodoService) Delete(ctx context.Context, id string) error {
	if err := checkID(kindTodo, id); err != nil {
		return err
	}
	if err := s.st.DeleteTodo(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: kindTodo}
		}
		return fmt.Errorf("delete todo: %w", err)
	}
	s.publish(ctx, TodoDeleted, id, "")
	return nil
}
