package commands

import (
	"context"

	"github.com/atelierhq/atelier/pkg/history"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/services"
)

// CreateEdge connects two steps. The edge id is fixed at construction so
// redo recreates the same identity.
type CreateEdge struct {
	history.Base

	edges      *services.Edge
	workflowID string
	edge       *models.Edge
}

// NewCreateEdge builds a create-edge command.
func NewCreateEdge(edges *services.Edge, workflowID string, edge *models.Edge) *CreateEdge {
	return &CreateEdge{
		Base:       history.NewBase(history.TypeEdgeCreate, "Connect steps"),
		edges:      edges,
		workflowID: workflowID,
		edge:       edge,
	}
}

func (c *CreateEdge) Execute(ctx context.Context) error {
	return c.edges.Add(ctx, c.workflowID, c.edge)
}

func (c *CreateEdge) Undo(ctx context.Context) error {
	_, err := c.edges.Remove(ctx, c.workflowID, c.edge.ID)

	return err
}

// EdgeID returns the id the created edge received.
func (c *CreateEdge) EdgeID() string {
	return c.edge.ID
}

// DeleteEdge disconnects two steps, remembering the edge so undo can
// restore it.
type DeleteEdge struct {
	history.Base

	edges      *services.Edge
	workflowID string
	edgeID     string
	removed    *models.Edge
}

// NewDeleteEdge builds a delete-edge command.
func NewDeleteEdge(edges *services.Edge, workflowID, edgeID string) *DeleteEdge {
	return &DeleteEdge{
		Base:       history.NewBase(history.TypeEdgeDelete, "Disconnect steps"),
		edges:      edges,
		workflowID: workflowID,
		edgeID:     edgeID,
	}
}

func (c *DeleteEdge) Execute(ctx context.Context) error {
	removed, err := c.edges.Remove(ctx, c.workflowID, c.edgeID)
	if err != nil {
		return err
	}

	c.removed = removed

	return nil
}

func (c *DeleteEdge) Undo(ctx context.Context) error {
	return c.edges.Restore(ctx, c.workflowID, c.removed)
}
