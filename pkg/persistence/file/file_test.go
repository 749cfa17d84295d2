package file

import (
	"context"
	"testing"
	"time"

	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWorkflow(id string) *models.Workflow {
	return &models.Workflow{
		ID:          id,
		Name:        "Order sync",
		Description: "Sync orders into the warehouse",
		Status:      models.WorkflowStatusDraft,
		Steps: []*models.WorkflowStep{
			{
				ID:       "step-1",
				Type:     "trigger:webhook",
				Category: models.CategoryTypeTrigger,
				Name:     "On new order",
				Enabled:  true,
			},
		},
		Edges:     []*models.Edge{},
		Owner:     "user-1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	workflow := testWorkflow("wf-1")
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	loaded, err := p.WorkflowRepository().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, "Order sync", loaded.Name)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, "On new order", loaded.Steps[0].Name)
}

func TestWorkflowRepository_GetMissing_ReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	_, err := p.WorkflowRepository().GetByID(ctx, "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_Delete(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-1")))
	require.NoError(t, p.WorkflowRepository().Delete(ctx, "wf-1"))

	_, err := p.WorkflowRepository().GetByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	assert.True(t, persistence.IsWorkflowNotFound(p.WorkflowRepository().Delete(ctx, "wf-1")))
}

func TestStepRepository_SaveUpdateDelete(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-1")))

	step := &models.WorkflowStep{
		ID:       "step-2",
		Type:     "http.request",
		Category: models.CategoryTypeAction,
		Name:     "Fetch order",
		Enabled:  true,
	}
	require.NoError(t, p.StepRepository().Save(ctx, "wf-1", step))

	steps, err := p.StepRepository().ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, steps, 2)

	step.Name = "Fetch order details"
	require.NoError(t, p.StepRepository().Update(ctx, "wf-1", step))

	loaded, err := p.StepRepository().GetByID(ctx, "wf-1", "step-2")
	require.NoError(t, err)
	assert.Equal(t, "Fetch order details", loaded.Name)

	require.NoError(t, p.StepRepository().Delete(ctx, "wf-1", "step-2"))

	_, err = p.StepRepository().GetByID(ctx, "wf-1", "step-2")
	assert.True(t, persistence.IsStepNotFound(err))
}

func TestStepRepository_SaveDuplicate_Fails(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	require.NoError(t, p.WorkflowRepository().Save(ctx, testWorkflow("wf-1")))

	duplicate := &models.WorkflowStep{
		ID:       "step-1",
		Type:     "http.request",
		Category: models.CategoryTypeAction,
		Name:     "Duplicate",
	}

	err := p.StepRepository().Save(ctx, "wf-1", duplicate)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrStepAlreadyExists)
}

func TestEdgeRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	workflow := testWorkflow("wf-1")
	workflow.Steps = append(workflow.Steps, &models.WorkflowStep{
		ID:       "step-2",
		Type:     "log",
		Category: models.CategoryTypeAction,
		Name:     "Log it",
	})
	require.NoError(t, p.WorkflowRepository().Save(ctx, workflow))

	edge := &models.Edge{
		ID:         "edge-1",
		SourceStep: "step-1",
		SourcePort: "main",
		TargetStep: "step-2",
		TargetPort: "input",
	}
	require.NoError(t, p.EdgeRepository().Save(ctx, "wf-1", edge))

	edges, err := p.EdgeRepository().ListByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "step-1:main->step-2:input", edges[0].Key())

	require.NoError(t, p.EdgeRepository().Delete(ctx, "wf-1", "edge-1"))

	_, err = p.EdgeRepository().GetByID(ctx, "wf-1", "edge-1")
	assert.True(t, persistence.IsEdgeNotFound(err))
}

func TestRunRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	run := &models.BuilderRun{
		ID:         "run-1",
		WorkflowID: "wf-1",
		Prompt:     "add a slack notification",
		Status:     models.RunStatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.RunRepository().Save(ctx, run))

	loaded, err := p.RunRepository().GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPending, loaded.Status)

	require.NoError(t, p.RunRepository().Delete(ctx, "run-1"))

	_, err = p.RunRepository().GetByID(ctx, "run-1")
	assert.True(t, persistence.IsRunNotFound(err))
}

func TestWorkflowRepository_List_NewestFirst(t *testing.T) {
	ctx := context.Background()
	p := NewPersistence(t.TempDir())

	older := testWorkflow("wf-old")
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testWorkflow("wf-new")

	require.NoError(t, p.WorkflowRepository().Save(ctx, older))
	require.NoError(t, p.WorkflowRepository().Save(ctx, newer))

	workflows, err := p.WorkflowRepository().List(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "wf-new", workflows[0].ID)
}

func TestPersistence_HealthCheck(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewPersistence(t.TempDir()).HealthCheck(ctx))
	assert.Error(t, NewPersistence("/nonexistent/atelier-data").HealthCheck(ctx))
}
