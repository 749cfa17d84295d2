package history

import "context"

// Composite groups an ordered list of commands into one undo/redo unit.
// The child list is immutable after construction.
type Composite struct {
	Base

	commands []Command
}

// NewComposite wraps commands in a single history entry carrying description.
func NewComposite(description string, commands []Command) *Composite {
	children := make([]Command, len(commands))
	copy(children, commands)

	return &Composite{
		Base:     NewBase(TypeBatch, description),
		commands: children,
	}
}

// Commands returns the child commands in execution order.
func (c *Composite) Commands() []Command {
	children := make([]Command, len(c.commands))
	copy(children, c.commands)

	return children
}

// Execute runs the children first-to-last. If a child fails, children that
// already ran are left as-is and the error is returned; partial-application
// handling is the caller's responsibility.
func (c *Composite) Execute(ctx context.Context) error {
	for _, command := range c.commands {
		if err := command.Execute(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Undo runs the children last-to-first.
func (c *Composite) Undo(ctx context.Context) error {
	for i := len(c.commands) - 1; i >= 0; i-- {
		if err := c.commands[i].Undo(ctx); err != nil {
			return err
		}
	}

	return nil
}
