// Package commands implements the concrete undoable editor operations on
// steps and edges, backed by the services layer.
package commands

import (
	"context"
	"fmt"

	"github.com/atelierhq/atelier/pkg/history"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/services"
)

// CreateStep adds a step to the workflow. The step id is fixed at
// construction so redo recreates the same identity.
type CreateStep struct {
	history.Base

	steps      *services.Step
	workflowID string
	step       *models.WorkflowStep
}

// NewCreateStep builds a create-step command for a fully-formed step.
func NewCreateStep(steps *services.Step, workflowID string, step *models.WorkflowStep) *CreateStep {
	return &CreateStep{
		Base:       history.NewBase(history.TypeStepCreate, fmt.Sprintf("Add step %q", step.Name)),
		steps:      steps,
		workflowID: workflowID,
		step:       step,
	}
}

func (c *CreateStep) Execute(ctx context.Context) error {
	return c.steps.Add(ctx, c.workflowID, c.step)
}

func (c *CreateStep) Undo(ctx context.Context) error {
	_, _, err := c.steps.Remove(ctx, c.workflowID, c.step.ID)

	return err
}

// StepID returns the id the created step will carry.
func (c *CreateStep) StepID() string {
	return c.step.ID
}

// UpdateStep applies a partial patch to a step. The inverse patch is
// captured on first execution and replayed on undo.
type UpdateStep struct {
	history.Base

	steps      *services.Step
	workflowID string
	stepID     string
	patch      map[string]any
	inverse    map[string]any
}

// NewUpdateStep builds an update-step command.
func NewUpdateStep(steps *services.Step, workflowID, stepID string, patch map[string]any) *UpdateStep {
	return &UpdateStep{
		Base:       history.NewBase(history.TypeStepUpdate, "Update step"),
		steps:      steps,
		workflowID: workflowID,
		stepID:     stepID,
		patch:      patch,
	}
}

func (c *UpdateStep) Execute(ctx context.Context) error {
	inverse, err := c.steps.ApplyPatch(ctx, c.workflowID, c.stepID, c.patch)
	if err != nil {
		return err
	}

	if c.inverse == nil {
		c.inverse = inverse
	}

	return nil
}

func (c *UpdateStep) Undo(ctx context.Context) error {
	_, err := c.steps.ApplyPatch(ctx, c.workflowID, c.stepID, c.inverse)

	return err
}

// DeleteStep removes a step and every edge touching it, remembering both
// so undo can restore them.
type DeleteStep struct {
	history.Base

	steps      *services.Step
	workflowID string
	stepID     string
	removed    *models.WorkflowStep
	detached   []*models.Edge
}

// NewDeleteStep builds a delete-step command.
func NewDeleteStep(steps *services.Step, workflowID, stepID string) *DeleteStep {
	return &DeleteStep{
		Base:       history.NewBase(history.TypeStepDelete, "Delete step"),
		steps:      steps,
		workflowID: workflowID,
		stepID:     stepID,
	}
}

func (c *DeleteStep) Execute(ctx context.Context) error {
	removed, detached, err := c.steps.Remove(ctx, c.workflowID, c.stepID)
	if err != nil {
		return err
	}

	c.removed = removed
	c.detached = detached

	return nil
}

func (c *DeleteStep) Undo(ctx context.Context) error {
	return c.steps.Restore(ctx, c.workflowID, c.removed, c.detached)
}
