package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite_Execute_RunsChildrenInOrder(t *testing.T) {
	var order []string

	first := newFakeCommand("first")
	first.onExecute = func() { order = append(order, "first") }
	second := newFakeCommand("second")
	second.onExecute = func() { order = append(order, "second") }

	composite := NewComposite("batch", []Command{first, second})
	require.NoError(t, composite.Execute(context.Background()))

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, TypeBatch, composite.Type())
	assert.Equal(t, "batch", composite.Description())
	assert.NotEmpty(t, composite.ID())
}

func TestComposite_Undo_RunsChildrenInReverse(t *testing.T) {
	var order []string

	first := newFakeCommand("first")
	first.onUndo = func() { order = append(order, "first") }
	second := newFakeCommand("second")
	second.onUndo = func() { order = append(order, "second") }

	composite := NewComposite("batch", []Command{first, second})
	require.NoError(t, composite.Undo(context.Background()))

	assert.Equal(t, []string{"second", "first"}, order)
}

func TestComposite_Execute_MiddleFailure_NoRollback(t *testing.T) {
	first := newFakeCommand("first")
	second := newFakeCommand("second")
	second.executeErr = errors.New("boom")
	third := newFakeCommand("third")

	composite := NewComposite("batch", []Command{first, second, third})
	err := composite.Execute(context.Background())
	require.Error(t, err)

	// Earlier children stay applied; the composite performs no rollback.
	assert.Equal(t, 1, first.executed)
	assert.Equal(t, 0, first.undone)
	assert.Equal(t, 0, third.executed)
}

func TestComposite_Commands_ReturnsCopy(t *testing.T) {
	first := newFakeCommand("first")
	composite := NewComposite("batch", []Command{first})

	children := composite.Commands()
	require.Len(t, children, 1)

	children[0] = nil
	assert.NotNil(t, composite.Commands()[0])
}
