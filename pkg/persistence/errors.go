// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrProfileNotFound indicates a profile was not found by the given identifier.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrTenantNotFound indicates a tenant was not found by the given identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrMalformedRow indicates a stored row failed shape validation at the
	// persistence boundary and was rejected before entering the core.
	ErrMalformedRow = errors.New("malformed row")

	// ErrInvalidSortField indicates an unsupported sort field was requested.
	ErrInvalidSortField = errors.New("invalid sort field")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Create", "Update")
	WorkflowID string // Workflow ID if applicable
	Err        error  // Underlying error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// CommentError wraps comment-related errors with additional context.
type CommentError struct {
	Op         string
	WorkflowID string
	NodeID     string
	Err        error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("%s operation failed for thread %s/%s: %v", e.Op, e.WorkflowID, e.NodeID, e.Err)
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

func (e *CommentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsProfileNotFound checks if an error indicates a profile was not found.
func IsProfileNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound)
}

// IsTenantNotFound checks if an error indicates a tenant was not found.
func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}

// IsMalformedRow checks if an error indicates a stored row failed validation.
func IsMalformedRow(err error) bool {
	return errors.Is(err, ErrMalformedRow)
}

// IsInvalidSortField checks if an error indicates an unsupported sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}
