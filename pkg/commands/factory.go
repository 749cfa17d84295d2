package commands

import (
	"fmt"

	"github.com/atelierhq/atelier/pkg/history"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/services"
	"github.com/google/uuid"
)

// Factory translates draft changes into concrete commands for one
// workflow. It resolves the temporary ids a draft uses for steps that do
// not exist yet: when a step-create change is built, the temp id is bound
// to a freshly generated real id, and later changes referencing the temp
// id are rewritten to the real one.
type Factory struct {
	steps      *services.Step
	edges      *services.Edge
	workflowID string
	tempIDs    map[string]string
}

// NewFactory creates a factory bound to one workflow. A factory is scoped
// to a single draft application; temp-id bindings are not reset between
// calls.
func NewFactory(steps *services.Step, edges *services.Edge, workflowID string) *Factory {
	return &Factory{
		steps:      steps,
		edges:      edges,
		workflowID: workflowID,
		tempIDs:    make(map[string]string),
	}
}

// Build converts one draft change into a command.
func (f *Factory) Build(change models.Change) (history.Command, error) {
	switch change.Kind {
	case models.ChangeKindStepCreate:
		if change.StepCreate == nil {
			return nil, fmt.Errorf("step-create change without payload")
		}

		return f.buildStepCreate(change.StepCreate), nil

	case models.ChangeKindStepUpdate:
		if change.StepUpdate == nil {
			return nil, fmt.Errorf("step-update change without payload")
		}

		return NewUpdateStep(f.steps, f.workflowID, f.resolve(change.StepUpdate.StepID), change.StepUpdate.Patch), nil

	case models.ChangeKindStepDelete:
		if change.StepDelete == nil {
			return nil, fmt.Errorf("step-delete change without payload")
		}

		return NewDeleteStep(f.steps, f.workflowID, f.resolve(change.StepDelete.StepID)), nil

	case models.ChangeKindEdgeCreate:
		if change.EdgeCreate == nil {
			return nil, fmt.Errorf("edge-create change without payload")
		}

		edge := &models.Edge{
			ID:         uuid.New().String(),
			SourceStep: f.resolve(change.EdgeCreate.SourceStep),
			SourcePort: change.EdgeCreate.SourcePort,
			TargetStep: f.resolve(change.EdgeCreate.TargetStep),
			TargetPort: change.EdgeCreate.TargetPort,
		}

		return NewCreateEdge(f.edges, f.workflowID, edge), nil

	case models.ChangeKindEdgeDelete:
		if change.EdgeDelete == nil {
			return nil, fmt.Errorf("edge-delete change without payload")
		}

		return NewDeleteEdge(f.edges, f.workflowID, change.EdgeDelete.EdgeID), nil
	}

	return nil, fmt.Errorf("unknown change kind: %s", change.Kind)
}

func (f *Factory) buildStepCreate(payload *models.StepCreateChange) *CreateStep {
	realID := uuid.New().String()
	f.tempIDs[payload.TempID] = realID

	step := &models.WorkflowStep{
		ID:        realID,
		Type:      payload.Type,
		Category:  payload.Category,
		Name:      payload.Name,
		Config:    payload.Config,
		PositionX: payload.PositionX,
		PositionY: payload.PositionY,
		Enabled:   true,
	}

	return NewCreateStep(f.steps, f.workflowID, step)
}

func (f *Factory) resolve(id string) string {
	if real, ok := f.tempIDs[id]; ok {
		return real
	}

	return id
}
