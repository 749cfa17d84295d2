package persistence_test

import (
	"errors"
	"testing"

	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error constants are available", func(t *testing.T) {
		assert.NotNil(t, persistence.ErrWorkflowNotFound)
		assert.NotNil(t, persistence.ErrStepNotFound)
		assert.NotNil(t, persistence.ErrEdgeNotFound)
		assert.NotNil(t, persistence.ErrRunNotFound)
	})

	t.Run("error checking functions work correctly", func(t *testing.T) {
		workflowErr := persistence.NewWorkflowError("GetByID", "workflow-123", persistence.ErrWorkflowNotFound)
		stepErr := &persistence.StepError{Op: "Delete", WorkflowID: "workflow-123", StepID: "step-9", Err: persistence.ErrStepNotFound}

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.True(t, persistence.IsStepNotFound(stepErr))

		// Test error unwrapping
		assert.True(t, errors.Is(workflowErr, persistence.ErrWorkflowNotFound))
		assert.True(t, errors.Is(stepErr, persistence.ErrStepNotFound))
	})

	t.Run("workflow error contains context", func(t *testing.T) {
		err := persistence.NewWorkflowError("Save", "workflow-123", persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Save")
		assert.Contains(t, err.Error(), "workflow-123")
		assert.Contains(t, err.Error(), "workflow not found")
	})

	t.Run("edge error contains context", func(t *testing.T) {
		err := &persistence.EdgeError{Op: "GetByID", WorkflowID: "workflow-123", EdgeID: "edge-8", Err: persistence.ErrEdgeNotFound}

		assert.Contains(t, err.Error(), "GetByID")
		assert.Contains(t, err.Error(), "edge-8")
		assert.Contains(t, err.Error(), "edge not found")
	})
}
