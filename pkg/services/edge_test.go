package services

import (
	"context"
	"testing"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdge_Add_RejectsMissingEndpoint(t *testing.T) {
	ctx := context.Background()
	p, _ := testEnv(t)
	seedWorkflow(t, p, models.WorkflowStatusDraft)

	service := NewEdge(p)

	err := service.Add(ctx, "wf-1", &models.Edge{
		ID:         "edge-2",
		SourceStep: "step-1",
		SourcePort: "main",
		TargetStep: "ghost",
		TargetPort: "input",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestEdge_RemoveAndRestore(t *testing.T) {
	ctx := context.Background()
	p, _ := testEnv(t)
	seedWorkflow(t, p, models.WorkflowStatusDraft)

	service := NewEdge(p)

	removed, err := service.Remove(ctx, "wf-1", "edge-1")
	require.NoError(t, err)
	assert.Equal(t, "step-1", removed.SourceStep)

	edges, err := p.EdgeRepository().ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Empty(t, edges)

	require.NoError(t, service.Restore(ctx, "wf-1", removed))

	edge, err := service.Get(ctx, "wf-1", "edge-1")
	require.NoError(t, err)
	assert.Equal(t, "step-2", edge.TargetStep)
}

func TestWorkflow_CreateAndList(t *testing.T) {
	ctx := context.Background()
	p, _ := testEnv(t)

	service := NewWorkflow(p)

	created, err := service.Create(ctx, &CreateWorkflowRequest{
		Name:        "Invoice chaser",
		Description: "Chase unpaid invoices",
		Owner:       "user-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)

	workflows, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, workflows, 1)
}

func TestWorkflow_Create_RequiresName(t *testing.T) {
	ctx := context.Background()
	p, _ := testEnv(t)

	service := NewWorkflow(p)

	_, err := service.Create(ctx, &CreateWorkflowRequest{Owner: "user-1"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
