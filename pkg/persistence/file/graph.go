package file

import (
	"context"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
)

// stepRepository implements persistence.StepRepository by rewriting the
// owning workflow document.
type stepRepository struct {
	workflows *WorkflowRepository
}

func (sr *stepRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowStep, error) {
	workflow, err := sr.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return workflow.Steps, nil
}

func (sr *stepRepository) GetByID(ctx context.Context, workflowID, stepID string) (*models.WorkflowStep, error) {
	workflow, err := sr.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	step := workflow.StepByID(stepID)
	if step == nil {
		return nil, &persistence.StepError{Op: "GetByID", WorkflowID: workflowID, StepID: stepID, Err: persistence.ErrStepNotFound}
	}

	return step, nil
}

func (sr *stepRepository) Save(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	workflow, err := sr.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if workflow.StepByID(step.ID) != nil {
		return &persistence.StepError{Op: "Save", WorkflowID: workflowID, StepID: step.ID, Err: persistence.ErrStepAlreadyExists}
	}

	workflow.Steps = append(workflow.Steps, step)

	return sr.workflows.Save(ctx, workflow)
}

func (sr *stepRepository) Update(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	workflow, err := sr.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	for i, existing := range workflow.Steps {
		if existing.ID == step.ID {
			workflow.Steps[i] = step

			return sr.workflows.Save(ctx, workflow)
		}
	}

	return &persistence.StepError{Op: "Update", WorkflowID: workflowID, StepID: step.ID, Err: persistence.ErrStepNotFound}
}

func (sr *stepRepository) Delete(ctx context.Context, workflowID, stepID string) error {
	workflow, err := sr.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	for i, existing := range workflow.Steps {
		if existing.ID == stepID {
			workflow.Steps = append(workflow.Steps[:i], workflow.Steps[i+1:]...)

			return sr.workflows.Save(ctx, workflow)
		}
	}

	return &persistence.StepError{Op: "Delete", WorkflowID: workflowID, StepID: stepID, Err: persistence.ErrStepNotFound}
}

// edgeRepository implements persistence.EdgeRepository by rewriting the
// owning workflow document.
type edgeRepository struct {
	workflows *WorkflowRepository
}

func (er *edgeRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Edge, error) {
	workflow, err := er.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return workflow.Edges, nil
}

func (er *edgeRepository) GetByID(ctx context.Context, workflowID, edgeID string) (*models.Edge, error) {
	workflow, err := er.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	edge := workflow.EdgeByID(edgeID)
	if edge == nil {
		return nil, &persistence.EdgeError{Op: "GetByID", WorkflowID: workflowID, EdgeID: edgeID, Err: persistence.ErrEdgeNotFound}
	}

	return edge, nil
}

func (er *edgeRepository) Save(ctx context.Context, workflowID string, edge *models.Edge) error {
	workflow, err := er.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if workflow.EdgeByID(edge.ID) != nil {
		return &persistence.EdgeError{Op: "Save", WorkflowID: workflowID, EdgeID: edge.ID, Err: persistence.ErrEdgeAlreadyExists}
	}

	workflow.Edges = append(workflow.Edges, edge)

	return er.workflows.Save(ctx, workflow)
}

func (er *edgeRepository) Delete(ctx context.Context, workflowID, edgeID string) error {
	workflow, err := er.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	for i, existing := range workflow.Edges {
		if existing.ID == edgeID {
			workflow.Edges = append(workflow.Edges[:i], workflow.Edges[i+1:]...)

			return er.workflows.Save(ctx, workflow)
		}
	}

	return &persistence.EdgeError{Op: "Delete", WorkflowID: workflowID, EdgeID: edgeID, Err: persistence.ErrEdgeNotFound}
}
