package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Status is the completion state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

const maxDescriptionLength = 500

// Todo represents a single task tracked by a project.
type Todo struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// ETag is the store version the record was read at.
	ETag string `json:"-"`
}

// TodoChanges carries a partial todo update. Nil fields are left untouched.
type TodoChanges struct {
	Description *string
	Status      *Status
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusCompleted:
		return s, nil
	default:
		return "", &ValidationError{Msg: "Invalid status value"}
	}
}

func validateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return &ValidationError{Msg: "Description is required"}
	}
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return &ValidationError{Msg: "Description must be at most 500 characters"}
	}
	return nil
}
