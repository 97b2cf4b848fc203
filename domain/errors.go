package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrConcurrencyConflict indicates that the underlying storage rejected an
// update because a newer version of the entity is already persisted.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ErrNotFound is returned by stores when the addressed record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or missing input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InvalidIDError reports an identifier that is not well formed.
type InvalidIDError struct{ Kind string }

func (e *InvalidIDError) Error() string { return fmt.Sprintf("Invalid %s ID", e.Kind) }

// NotFoundError reports a well formed identifier with no matching record.
type NotFoundError struct{ Kind string }

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

// ConflictError reports a request that clashes with current state.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

// ConfigError reports a missing piece of required configuration.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return e.Msg }

// ExternalServiceError wraps a failed call to a third-party API.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Message    string
	// Payload is the upstream response body, when it was valid JSON.
	Payload json.RawMessage
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Service, e.StatusCode, e.Message)
}
