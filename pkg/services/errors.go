// Package services provides the application layer behind the HTTP API:
// role-aware workflow CRUD, lifecycle transitions and dashboard metrics.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidSortField     = errors.New("invalid sort field")
	ErrInvalidSortOrder     = errors.New("invalid sort order")
	ErrInvalidStatus        = errors.New("invalid workflow status")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrTenantRequired       = errors.New("workflow must belong to a tenant")

	// Authorization errors (403 Forbidden).
	ErrNotPermitted = errors.New("action not permitted for this role")

	// Business logic conflicts (409 Conflict).
	ErrInvalidTransition = errors.New("transition not valid from the current status")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrTenantRequired) ||
		errors.Is(err, ErrEmptyComment)
}

// IsForbiddenError checks if an error should map to HTTP 403.
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrNotPermitted)
}

// IsConflictError checks if an error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
