package services

import (
	"context"
	"fmt"
	"maps"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/registry"
)

// Step handles step-level business operations. Commands call these to
// perform and reverse graph edits, so every operation must be exactly
// invertible by its counterpart.
type Step struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewStep creates a new step service.
func NewStep(persistence persistence.Persistence, registry *registry.Registry) *Step {
	return &Step{
		persistence: persistence,
		registry:    registry,
	}
}

// Add places a fully-formed step into the workflow. The caller supplies the
// step id so that redo after undo recreates the same identity.
func (s *Step) Add(ctx context.Context, workflowID string, step *models.WorkflowStep) error {
	if _, err := requireEditable(ctx, s.persistence, workflowID); err != nil {
		return err
	}

	definition, err := s.registry.Get(step.Type)
	if err != nil {
		return &ServiceError{Op: "AddStep", Err: fmt.Errorf("%w: %s", ErrUnknownBlockType, step.Type)}
	}

	if err := s.registry.ValidateConfig(step.Type, step.Config); err != nil {
		return &ServiceError{Op: "AddStep", Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
	}

	if step.Category == "" {
		step.Category = definition.Category
	}

	if step.Config == nil {
		step.Config = make(map[string]any)
	}

	return s.persistence.StepRepository().Save(ctx, workflowID, step)
}

// Get returns one step.
func (s *Step) Get(ctx context.Context, workflowID, stepID string) (*models.WorkflowStep, error) {
	return s.persistence.StepRepository().GetByID(ctx, workflowID, stepID)
}

// ApplyPatch applies a partial patch to a step and returns the previous
// values of the touched fields, so the caller can invert the patch later.
func (s *Step) ApplyPatch(ctx context.Context, workflowID, stepID string, patch map[string]any) (map[string]any, error) {
	if _, err := requireEditable(ctx, s.persistence, workflowID); err != nil {
		return nil, err
	}

	step, err := s.persistence.StepRepository().GetByID(ctx, workflowID, stepID)
	if err != nil {
		return nil, err
	}

	inverse := make(map[string]any, len(patch))

	for key, value := range patch {
		switch key {
		case "name":
			inverse[key] = step.Name
			if name, ok := value.(string); ok {
				step.Name = name
			}
		case "enabled":
			inverse[key] = step.Enabled
			if enabled, ok := value.(bool); ok {
				step.Enabled = enabled
			}
		case "position_x":
			inverse[key] = step.PositionX
			step.PositionX = toInt(value, step.PositionX)
		case "position_y":
			inverse[key] = step.PositionY
			step.PositionY = toInt(value, step.PositionY)
		case "config":
			if config, ok := value.(map[string]any); ok {
				if err := s.registry.ValidateConfig(step.Type, config); err != nil {
					return nil, &ServiceError{Op: "ApplyPatch", Err: fmt.Errorf("%w: %v", ErrInvalidRequest, err)}
				}

				previous := make(map[string]any, len(step.Config))
				maps.Copy(previous, step.Config)
				inverse[key] = previous
				step.Config = config
			}
		default:
			return nil, &ServiceError{Op: "ApplyPatch", Err: fmt.Errorf("%w: unknown field %q", ErrInvalidRequest, key)}
		}
	}

	if err := s.persistence.StepRepository().Update(ctx, workflowID, step); err != nil {
		return nil, err
	}

	return inverse, nil
}

// Remove deletes a step together with every edge touching it, and returns
// what was removed so the caller can restore it on undo.
func (s *Step) Remove(ctx context.Context, workflowID, stepID string) (*models.WorkflowStep, []*models.Edge, error) {
	if _, err := requireEditable(ctx, s.persistence, workflowID); err != nil {
		return nil, nil, err
	}

	step, err := s.persistence.StepRepository().GetByID(ctx, workflowID, stepID)
	if err != nil {
		return nil, nil, err
	}

	edges, err := s.persistence.EdgeRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, nil, err
	}

	detached := make([]*models.Edge, 0)

	for _, edge := range edges {
		if edge.SourceStep == stepID || edge.TargetStep == stepID {
			if err := s.persistence.EdgeRepository().Delete(ctx, workflowID, edge.ID); err != nil {
				return nil, nil, err
			}

			detached = append(detached, edge)
		}
	}

	if err := s.persistence.StepRepository().Delete(ctx, workflowID, stepID); err != nil {
		return nil, nil, err
	}

	return step, detached, nil
}

// Restore puts back a previously removed step and its edges.
func (s *Step) Restore(ctx context.Context, workflowID string, step *models.WorkflowStep, edges []*models.Edge) error {
	if err := s.persistence.StepRepository().Save(ctx, workflowID, step); err != nil {
		return err
	}

	for _, edge := range edges {
		if err := s.persistence.EdgeRepository().Save(ctx, workflowID, edge); err != nil {
			return err
		}
	}

	return nil
}

func toInt(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
