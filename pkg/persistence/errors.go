package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrStepNotFound indicates a step was not found by the given identifier.
	ErrStepNotFound = errors.New("step not found")

	// ErrEdgeNotFound indicates an edge was not found by the given identifier.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrRunNotFound indicates a builder run was not found by the given identifier.
	ErrRunNotFound = errors.New("builder run not found")

	// ErrStepAlreadyExists indicates a step with the same identifier already exists.
	ErrStepAlreadyExists = errors.New("step already exists")

	// ErrEdgeAlreadyExists indicates an edge with the same identifier already exists.
	ErrEdgeAlreadyExists = errors.New("edge already exists")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	WorkflowID string
	Err        error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

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

// StepError wraps step-related errors with additional context.
type StepError struct {
	Op         string
	WorkflowID string
	StepID     string
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s operation failed for step %s in workflow %s: %v", e.Op, e.StepID, e.WorkflowID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// EdgeError wraps edge-related errors with additional context.
type EdgeError struct {
	Op         string
	WorkflowID string
	EdgeID     string
	Err        error
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s operation failed for edge %s in workflow %s: %v", e.Op, e.EdgeID, e.WorkflowID, e.Err)
}

func (e *EdgeError) Unwrap() error {
	return e.Err
}

func (e *EdgeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsStepNotFound checks if an error indicates a step was not found.
func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}

// IsEdgeNotFound checks if an error indicates an edge was not found.
func IsEdgeNotFound(err error) bool {
	return errors.Is(err, ErrEdgeNotFound)
}

// IsRunNotFound checks if an error indicates a builder run was not found.
func IsRunNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
