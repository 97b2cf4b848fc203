package domain

import "github.com/google/uuid"

const (
	kindProject = "Project"
	kindTodo    = "Todo"
)

func newID() string { return uuid.NewString() }

func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &InvalidIDError{Kind: kind}
	}
	return nil
}
