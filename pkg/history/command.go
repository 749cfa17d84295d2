// Package history implements the undo/redo command stack of the editor.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type identifies the semantic action of a command.
type Type string

const (
	TypeStepCreate Type = "step.create"
	TypeStepUpdate Type = "step.update"
	TypeStepDelete Type = "step.delete"
	TypeEdgeCreate Type = "edge.create"
	TypeEdgeDelete Type = "edge.delete"
	TypeBatch      Type = "batch"
)

// Command is a reversible unit of work. Execute performs the forward action,
// Undo its exact inverse. Execute is only called again after an intervening
// Undo (the redo path), never twice in a row.
type Command interface {
	ID() string
	Type() Type
	Description() string
	Timestamp() time.Time
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
}

// Base carries the identity fields shared by every command. Embed it and
// implement Execute/Undo.
type Base struct {
	id          string
	commandType Type
	description string
	timestamp   time.Time
}

// NewBase creates the identity for a command. The id is generated at
// construction and never reused.
func NewBase(commandType Type, description string) Base {
	return Base{
		id:          uuid.New().String(),
		commandType: commandType,
		description: description,
		timestamp:   time.Now(),
	}
}

func (b Base) ID() string {
	return b.id
}

func (b Base) Type() Type {
	return b.commandType
}

func (b Base) Description() string {
	return b.description
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
