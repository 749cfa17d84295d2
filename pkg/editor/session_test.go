package editor

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/events"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/persistence/file"
	"github.com/atelierhq/atelier/pkg/registry"
	"github.com/atelierhq/atelier/pkg/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.GetType())
	}

	return types
}

func testManager(t *testing.T) (*Manager, *recordingPublisher) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultBlocks()

	p := file.NewPersistence(t.TempDir())
	publisher := &recordingPublisher{}

	return NewManager(p, reg, publisher, nil, logger), publisher
}

func seedWorkflow(t *testing.T, m *Manager) *models.Workflow {
	t.Helper()

	workflow := testutil.CreateTestWorkflow()
	workflow.ID = "wf-1"
	workflow.Steps = []*models.WorkflowStep{
		testutil.CreateTestStep(testutil.WithTriggerStep(), testutil.WithID("step-1"), testutil.WithName("On new order")),
	}
	require.NoError(t, m.persistence.WorkflowRepository().Save(context.Background(), workflow))

	return workflow
}

func stepCreateChange(tempID, name string) models.Change {
	return models.Change{
		Kind: models.ChangeKindStepCreate,
		StepCreate: &models.StepCreateChange{
			TempID:   tempID,
			Type:     "log",
			Category: models.CategoryTypeAction,
			Name:     name,
			Config:   map[string]any{"message": "hello", "level": "info"},
		},
	}
}

func TestManagerOpenRequiresWorkflow(t *testing.T) {
	manager, _ := testManager(t)

	_, err := manager.Open(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestManagerReturnsSharedSession(t *testing.T) {
	manager, _ := testManager(t)
	seedWorkflow(t, manager)
	ctx := context.Background()

	first, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	second, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, manager.SessionCount())
}

func TestSessionApplyUndoRedo(t *testing.T) {
	manager, publisher := testManager(t)
	seedWorkflow(t, manager)
	ctx := context.Background()

	session, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	command, err := session.Apply(ctx, stepCreateChange("temp-1", "Log order"))
	require.NoError(t, err)
	assert.NotEmpty(t, command.ID())
	assert.True(t, session.CanUndo())
	assert.Len(t, session.History(), 1)

	done, err := session.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, session.CanUndo())
	assert.True(t, session.CanRedo())

	done, err = session.Redo(ctx)
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, session.CanUndo())

	assert.Equal(t, []events.EventType{
		events.CommandExecutedEvent,
		events.CommandUndoneEvent,
		events.CommandRedoneEvent,
	}, publisher.types())

	workflow, err := manager.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, workflow.Steps, 2)
}

func TestSessionDraftLifecycle(t *testing.T) {
	manager, publisher := testManager(t)
	seedWorkflow(t, manager)
	ctx := context.Background()

	session, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	draftID := session.StartDraft("add logging steps")
	assert.NotEmpty(t, draftID)
	assert.True(t, session.IsDraftCollecting())

	session.AddDraftChange(stepCreateChange("temp-1", "Log order"))
	session.AddDraftChange(models.Change{
		Kind: models.ChangeKindEdgeCreate,
		EdgeCreate: &models.EdgeCreateChange{
			SourceStep: "step-1",
			SourcePort: "main",
			TargetStep: "temp-1",
			TargetPort: "input",
		},
	})

	result := session.FinalizeDraft()
	assert.True(t, result.NeedsPreview)

	summary := session.DraftSummary()
	assert.Equal(t, 2, summary.Additions)

	require.NoError(t, session.ApplyDraft(ctx))
	assert.Nil(t, session.CurrentDraft())

	// The whole draft lands as one undoable batch.
	assert.Len(t, session.History(), 1)

	workflow, err := manager.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, workflow.Steps, 2)
	assert.Len(t, workflow.Edges, 1)

	done, err := session.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, done)

	workflow, err = manager.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, workflow.Steps, 1)
	assert.Empty(t, workflow.Edges)

	assert.Contains(t, publisher.types(), events.DraftAppliedEvent)
}

func TestSessionDiscardDraft(t *testing.T) {
	manager, publisher := testManager(t)
	seedWorkflow(t, manager)
	ctx := context.Background()

	session, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	session.StartDraft("scratch")
	session.AddDraftChange(stepCreateChange("temp-1", "Scratch step"))
	session.DiscardDraft(ctx)

	assert.Nil(t, session.CurrentDraft())
	assert.Empty(t, session.History())
	assert.Contains(t, publisher.types(), events.DraftDiscardedEvent)

	workflow, err := manager.Workflows().GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Len(t, workflow.Steps, 1)
}

func TestManagerCloseIdle(t *testing.T) {
	manager, _ := testManager(t)
	seedWorkflow(t, manager)
	ctx := context.Background()

	_, err := manager.Open(ctx, "wf-1")
	require.NoError(t, err)

	manager.SetSessionTTL(time.Nanosecond)
	time.Sleep(time.Millisecond)

	closed := manager.CloseIdle()
	assert.Equal(t, 1, closed)
	assert.Equal(t, 0, manager.SessionCount())
}
