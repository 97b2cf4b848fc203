package domain

import (
	"slices"
	"strings"
	"time"
)

// Project is a named container holding ordered references to todos.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	TodoRefs  []string  `json:"todoRefs"`
	// Todos holds the resolved records for TodoRefs on read paths.
	Todos []Todo `json:"todos"`

	ETag string `json:"-"`
}

// HasTodo reports whether todoID is referenced by the project.
func (p *Project) HasTodo(todoID string) bool {
	return slices.Contains(p.TodoRefs, todoID)
}

// withoutTodo returns a copy of the refs with todoID removed and whether it was present.
func (p *Project) withoutTodo(todoID string) ([]string, bool) {
	idx := slices.Index(p.TodoRefs, todoID)
	if idx < 0 {
		return p.TodoRefs, false
	}
	refs := make([]string, 0, len(p.TodoRefs)-1)
	refs = append(refs, p.TodoRefs[:idx]...)
	refs = append(refs, p.TodoRefs[idx+1:]...)
	return refs, true
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Msg: "Title is required"}
	}
	return nil
}
