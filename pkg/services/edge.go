package services

import (
	"context"
	"fmt"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
)

// Edge handles edge-level business operations.
type Edge struct {
	persistence persistence.Persistence
}

// NewEdge creates a new edge service.
func NewEdge(persistence persistence.Persistence) *Edge {
	return &Edge{persistence: persistence}
}

// Add connects two existing steps. The caller supplies the edge id so that
// redo after undo recreates the same identity.
func (e *Edge) Add(ctx context.Context, workflowID string, edge *models.Edge) error {
	workflow, err := requireEditable(ctx, e.persistence, workflowID)
	if err != nil {
		return err
	}

	if workflow.StepByID(edge.SourceStep) == nil {
		return &ServiceError{Op: "AddEdge", Err: fmt.Errorf("%w: %s", ErrEndpointStepMissing, edge.SourceStep)}
	}

	if workflow.StepByID(edge.TargetStep) == nil {
		return &ServiceError{Op: "AddEdge", Err: fmt.Errorf("%w: %s", ErrEndpointStepMissing, edge.TargetStep)}
	}

	return e.persistence.EdgeRepository().Save(ctx, workflowID, edge)
}

// Get returns one edge.
func (e *Edge) Get(ctx context.Context, workflowID, edgeID string) (*models.Edge, error) {
	return e.persistence.EdgeRepository().GetByID(ctx, workflowID, edgeID)
}

// Remove deletes an edge and returns it so the caller can restore it on
// undo.
func (e *Edge) Remove(ctx context.Context, workflowID, edgeID string) (*models.Edge, error) {
	if _, err := requireEditable(ctx, e.persistence, workflowID); err != nil {
		return nil, err
	}

	edge, err := e.persistence.EdgeRepository().GetByID(ctx, workflowID, edgeID)
	if err != nil {
		return nil, err
	}

	if err := e.persistence.EdgeRepository().Delete(ctx, workflowID, edgeID); err != nil {
		return nil, err
	}

	return edge, nil
}

// Restore puts back a previously removed edge.
func (e *Edge) Restore(ctx context.Context, workflowID string, edge *models.Edge) error {
	return e.persistence.EdgeRepository().Save(ctx, workflowID, edge)
}
