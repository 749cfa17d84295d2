// Package persistence provides the storage abstraction for workflows and
// builder runs.
package persistence

import (
	"context"

	"github.com/atelierhq/atelier/pkg/models"
)

// Persistence aggregates the repositories backing the editor.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	StepRepository() StepRepository
	EdgeRepository() EdgeRepository
	RunRepository() RunRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores whole workflows.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// StepRepository manipulates steps inside a workflow.
type StepRepository interface {
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowStep, error)
	GetByID(ctx context.Context, workflowID, stepID string) (*models.WorkflowStep, error)
	Save(ctx context.Context, workflowID string, step *models.WorkflowStep) error
	Update(ctx context.Context, workflowID string, step *models.WorkflowStep) error
	Delete(ctx context.Context, workflowID, stepID string) error
}

// EdgeRepository manipulates edges inside a workflow.
type EdgeRepository interface {
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Edge, error)
	GetByID(ctx context.Context, workflowID, edgeID string) (*models.Edge, error)
	Save(ctx context.Context, workflowID string, edge *models.Edge) error
	Delete(ctx context.Context, workflowID, edgeID string) error
}

// RunRepository stores builder run status records.
type RunRepository interface {
	GetByID(ctx context.Context, id string) (*models.BuilderRun, error)
	Save(ctx context.Context, run *models.BuilderRun) error
	Delete(ctx context.Context, id string) error
}
