// Package services provides the business operations the editor commands
// are built on.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. Validation errors map to 400 responses,
// conflicts to 409.
var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrUnknownBlockType     = errors.New("unknown block type")
	ErrEndpointStepMissing  = errors.New("edge endpoint step does not exist")

	ErrCannotModifyPublished = errors.New("cannot modify published workflow")
)

// ServiceError wraps service-level errors with operation context.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should surface as HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrUnknownBlockType) ||
		errors.Is(err, ErrEndpointStepMissing)
}

// IsConflictError checks if an error should surface as HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrCannotModifyPublished)
}
