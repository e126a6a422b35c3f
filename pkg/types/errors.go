package types

import "fmt"

// ValidationError indicates rejected input. The operation had no partial effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SessionNotFoundError indicates an operation referenced an unknown session id.
// No state was changed.
type SessionNotFoundError struct {
	ID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// NewSessionNotFoundError creates a not-found error for the given session id.
func NewSessionNotFoundError(id string) *SessionNotFoundError {
	return &SessionNotFoundError{ID: id}
}

// InvalidOperationError indicates an illegal session state transition or an
// operation that is not valid in the session's current status. No state was changed.
type InvalidOperationError struct {
	Operation string
	Status    SessionStatus
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %q on session in status %q", e.Operation, e.Status)
}

// NewInvalidOperationError creates an invalid-operation error for the given
// operation attempted against a session in the given status.
func NewInvalidOperationError(operation string, status SessionStatus) *InvalidOperationError {
	return &InvalidOperationError{Operation: operation, Status: status}
}
