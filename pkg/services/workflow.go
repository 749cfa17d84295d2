package services

import (
	"context"
	"fmt"
	"time"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/google/uuid"
)

// CreateWorkflowRequest represents the request to create a new workflow.
type CreateWorkflowRequest struct {
	Name        string
	Description string
	Variables   map[string]any
	Metadata    map[string]any
	Owner       string
}

// Workflow handles workflow-level business operations.
type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{persistence: persistence}
}

// List returns all workflows.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	return w.persistence.WorkflowRepository().List(ctx)
}

// GetByID returns one workflow.
func (w *Workflow) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create creates an empty draft workflow.
func (w *Workflow) Create(ctx context.Context, req *CreateWorkflowRequest) (*models.Workflow, error) {
	if req.Name == "" {
		return nil, &ServiceError{Op: "CreateWorkflow", Err: ErrWorkflowNameRequired}
	}

	now := time.Now()
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Status:      models.WorkflowStatusDraft,
		Steps:       make([]*models.WorkflowStep, 0),
		Edges:       make([]*models.Edge, 0),
		Variables:   req.Variables,
		Metadata:    req.Metadata,
		Owner:       req.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	return w.persistence.WorkflowRepository().Delete(ctx, id)
}

// requireEditable loads a workflow and ensures it can be modified.
func requireEditable(ctx context.Context, p persistence.Persistence, workflowID string) (*models.Workflow, error) {
	workflow, err := p.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status != models.WorkflowStatusDraft {
		return nil, &ServiceError{Op: "requireEditable", Err: ErrCannotModifyPublished}
	}

	return workflow, nil
}
