package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/pkg/channels/gochannel"
	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/events"
)

func TestWatermillEventBusRoundtrip(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	received := make(chan *events.CommandExecuted, 1)

	require.NoError(t, bus.Handle(events.CommandExecutedEvent, func(_ context.Context, event any) error {
		executed, ok := event.(*events.CommandExecuted)
		require.True(t, ok)

		received <- executed

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	err = bus.Publish(ctx, "wf-1", events.CommandExecuted{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.CommandExecutedEvent,
			Timestamp:  time.Now(),
			WorkflowID: "wf-1",
		},
		CommandID:   "cmd-1",
		CommandType: "step.create",
		Description: "Add step",
	})
	require.NoError(t, err)

	select {
	case executed := <-received:
		assert.Equal(t, "wf-1", executed.WorkflowID)
		assert.Equal(t, "cmd-1", executed.CommandID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBusSkipsUnhandledTypes(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	received := make(chan *events.DraftApplied, 1)

	require.NoError(t, bus.Handle(events.DraftAppliedEvent, func(_ context.Context, event any) error {
		applied, ok := event.(*events.DraftApplied)
		require.True(t, ok)

		received <- applied

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler for this one; it must be acked and dropped.
	require.NoError(t, bus.Publish(ctx, "wf-1", events.CommandUndone{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.CommandUndoneEvent, WorkflowID: "wf-1"},
	}))

	require.NoError(t, bus.Publish(ctx, "wf-1", events.DraftApplied{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.DraftAppliedEvent, WorkflowID: "wf-1"},
		DraftID:   "draft-1",
	}))

	select {
	case applied := <-received:
		assert.Equal(t, "draft-1", applied.DraftID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}
