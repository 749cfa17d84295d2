package builder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/events"
	"github.com/atelierhq/atelier/pkg/mocks"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
	"github.com/atelierhq/atelier/pkg/persistence/file"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *capturingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.GetType())
	}

	return types
}

func newTestService(t *testing.T) (*Service, *capturingPublisher) {
	t.Helper()

	publisher := &capturingPublisher{}
	service := NewService(file.NewRunRepository(t.TempDir()), publisher, testLogger())

	return service, publisher
}

func TestServiceRequestCreatesPendingRun(t *testing.T) {
	service, publisher := newTestService(t)

	run, err := service.Request(context.Background(), "wf-1", "build me a webhook pipeline")
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "wf-1", run.WorkflowID)
	assert.Equal(t, models.RunStatusPending, run.Status)

	stored, err := service.Get(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)

	assert.Equal(t, []events.EventType{events.RunRequestedEvent}, publisher.types())
}

func TestServiceRequestRequiresPrompt(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Request(context.Background(), "wf-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPromptRequired)
}

func TestServiceGetUnknownRun(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrRunNotFound)
}

func TestServiceProgressAndCompletion(t *testing.T) {
	service, publisher := newTestService(t)
	ctx := context.Background()

	run, err := service.Request(ctx, "wf-1", "prompt")
	require.NoError(t, err)

	run, err = service.UpdateProgress(ctx, run.ID, 40, "generating steps")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusRunning, run.Status)
	assert.Equal(t, 40, run.Progress)
	assert.Equal(t, "generating steps", run.Message)

	run, err = service.Complete(ctx, run.ID, map[string]any{"steps": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 100, run.Progress)
	assert.NotNil(t, run.Result)

	assert.Equal(t, []events.EventType{events.RunRequestedEvent, events.RunFinishedEvent}, publisher.types())
}

func TestServiceFailRecordsError(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	run, err := service.Request(ctx, "wf-1", "prompt")
	require.NoError(t, err)

	run, err = service.Fail(ctx, run.ID, "model rejected the prompt")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.Equal(t, "model rejected the prompt", run.Error)
}

func TestServicePublishFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()

	runs := &mocks.MockRunRepository{}
	runs.On("Save", mock.Anything, mock.AnythingOfType("*models.BuilderRun")).Return(nil)

	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "wf-1", mock.Anything).Return(errors.New("broker down"))

	service := NewService(runs, bus, testLogger())

	run, err := service.Request(ctx, "wf-1", "prompt")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusPending, run.Status)

	runs.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestServiceWaitForCompletion(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	run, err := service.Request(ctx, "wf-1", "prompt")
	require.NoError(t, err)

	go func() {
		time.Sleep(5 * time.Millisecond)

		_, _ = service.Complete(ctx, run.ID, map[string]any{"done": true})
	}()

	final, err := service.WaitForCompletion(ctx, run.ID, nil, WithInterval(time.Millisecond), WithMaxAttempts(500))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, final.Status)
}
