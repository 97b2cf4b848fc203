package domain

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ProjectService manages project records.
type ProjectService struct {
	st Store
	deps
}

func NewProjectService(st Store, opts ...Option) ProjectService {
	return ProjectService{st: st, deps: newDeps(opts)}
}

// Create stores a new project with no todos.
func (s ProjectService) Create(ctx context.Context, title string) (Project, error) {
	if err := validateTitle(title); err != nil {
		return Project{}, err
	}
	p := Project{
		ID:        newID(),
		Title:     title,
		CreatedAt: s.now(),
		TodoRefs:  []string{},
		Todos:     []Todo{},
	}
	if err := s.st.InsertProject(ctx, p); err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	s.publish(ctx, ProjectCreated, p.ID, p.ID)
	return p, nil
}

// Get returns the project with its todos resolved.
func (s ProjectService) Get(ctx context.Context, id string) (Project, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if err := s.resolve(ctx, &p); err != nil {
		return Project{}, err
	}
	return p, nil
}

// List returns every project with todos resolved.
func (s ProjectService) List(ctx context.Context) ([]Project, error) {
	projects, err := s.st.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	for i := range projects {
		if err := s.resolve(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// UpdateTitle renames the project.
func (s ProjectService) UpdateTitle(ctx context.Context, id, title string) (Project, error) {
	if err := checkID(kindProject, id); err != nil {
		return Project{}, err
	}
	if err := validateTitle(title); err != nil {
		return Project{}, err
	}
	var updated Project
	err := retryOnConflict(func() error {
		p, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		p.Title = title
		if err := s.st.UpdateProject(ctx, p); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Kind: kindProject}
			}
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return Project{}, err
	}
	if err := s.resolve(ctx, &updated); err != nil {
		return Project{}, err
	}
	s.publish(ctx, ProjectRenamed, id, id)
	return updated, nil
}

// Delete removes the project. Linked todos are left in place.
func (s ProjectService) Delete(ctx context.Context, id string) error {
	if err := checkID(kindProject, id); err != nil {
		return err
	}
	if err := s.st.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Kind: kindProject}
		}
		return fmt.Errorf("delete project: %w", err)
	}
	s.publish(ctx, ProjectDeleted, id, id)
	return nil
}

// Summary loads the project and summarizes its todos.
func (s ProjectService) Summary(ctx context.Context, id string) (Summary, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(p), nil
}

func (s ProjectService) load(ctx context.Context, id string) (Project, error) {
	if err := checkID(kindProject, id); err != nil {
		return Project{}, err
	}
	p, err := s.st.GetProject(ctx, id)
	if err != nil {
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return Project{}, &NotFoundError{Kind: kindProject}
	}
	return *p, nil
}

// resolve fills p.Todos in ref order, skipping refs whose todo is gone.
func (s ProjectService) resolve(ctx context.Context, p *Project) error {
	todos := make([]Todo, 0, len(p.TodoRefs))
	for _, ref := range p.TodoRefs {
		t, err := s.st.GetTodo(ctx, ref)
		if err != nil {
			return fmt.Errorf("resolve todo %s: %w", ref, err)
		}
		if t == nil {
			s.logger.WithFields(log.Fields{"project": p.ID, "todo": ref}).Debug("dangling todo reference")
			continue
		}
		todos = append(todos, *t)
	}
	p.Todos = todos
	return nil
}
