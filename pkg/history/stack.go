package history

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultLimit is the maximum number of entries kept on the undo stack.
const DefaultLimit = 50

// Stack serializes execute/undo/redo operations and maintains the undo and
// redo stacks for one editor session. A single operation may be in flight at
// a time; a second call arriving while one runs is a logged no-op rather
// than queued, so callers must not assume deferred execution.
type Stack struct {
	mu              sync.Mutex
	undo            []Command
	redo            []Command
	executing       bool
	lastCommandTime time.Time
	limit           int
	logger          *slog.Logger
}

// NewStack creates an empty stack bounded at DefaultLimit.
func NewStack(logger *slog.Logger) *Stack {
	return &Stack{
		undo:   make([]Command, 0),
		redo:   make([]Command, 0),
		limit:  DefaultLimit,
		logger: logger.With("module", "history"),
	}
}

// NewStackWithLimit creates an empty stack with a custom undo bound.
func NewStackWithLimit(logger *slog.Logger, limit int) *Stack {
	stack := NewStack(logger)
	if limit > 0 {
		stack.limit = limit
	}

	return stack
}

// begin claims the execution guard. It returns false when an operation is
// already in flight.
func (s *Stack) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.executing {
		return false
	}

	s.executing = true

	return true
}

func (s *Stack) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executing = false
}

// Execute runs the command and, on success, pushes it onto the undo stack.
// Any successful execute clears the redo stack entirely; history is linear.
// When another operation is in flight the call logs a warning and returns
// nil without running the command.
func (s *Stack) Execute(ctx context.Context, command Command) error {
	if command == nil {
		return nil
	}

	if !s.begin() {
		s.logger.Warn("command ignored, another history operation is in flight",
			"command_type", command.Type(),
			"description", command.Description())

		return nil
	}
	defer s.end()

	if err := command.Execute(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = append(s.undo, command)
	if len(s.undo) > s.limit {
		s.undo = s.undo[1:]
	}

	s.redo = s.redo[:0]
	s.lastCommandTime = time.Now()

	return nil
}

// ExecuteBatch executes commands as a single history entry. An empty batch
// is a no-op, a single command is executed directly so it keeps its own
// description, and two or more are wrapped in a Composite carrying
// description.
func (s *Stack) ExecuteBatch(ctx context.Context, commands []Command, description string) error {
	switch len(commands) {
	case 0:
		return nil
	case 1:
		return s.Execute(ctx, commands[0])
	default:
		return s.Execute(ctx, NewComposite(description, commands))
	}
}

// Undo reverses the most recent command. It reports false when there is
// nothing to undo or an operation is in flight. When the command's Undo
// fails it is pushed back onto the undo stack and the error is returned.
func (s *Stack) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()

	if s.executing || len(s.undo) == 0 {
		s.mu.Unlock()

		return false, nil
	}

	s.executing = true
	command := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.mu.Unlock()

	err := command.Undo(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.executing = false

	if err != nil {
		s.undo = append(s.undo, command)

		return false, err
	}

	s.redo = append(s.redo, command)
	s.lastCommandTime = time.Now()

	return true, nil
}

// Redo re-executes the most recently undone command. Symmetric to Undo: on
// failure the command is restored to the redo stack.
func (s *Stack) Redo(ctx context.Context) (bool, error) {
	s.mu.Lock()

	if s.executing || len(s.redo) == 0 {
		s.mu.Unlock()

		return false, nil
	}

	s.executing = true
	command := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.mu.Unlock()

	err := command.Execute(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.executing = false

	if err != nil {
		s.redo = append(s.redo, command)

		return false, err
	}

	s.undo = append(s.undo, command)
	s.lastCommandTime = time.Now()

	return true, nil
}

// Clear empties both stacks. Used when switching the active workflow so
// undo history never crosses document boundaries.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = s.undo[:0]
	s.redo = s.redo[:0]
	s.lastCommandTime = time.Time{}
}

// CanUndo reports whether an undo would do anything right now.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.undo) > 0 && !s.executing
}

// CanRedo reports whether a redo would do anything right now.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.redo) > 0 && !s.executing
}

// History returns the undo stack most-recent first, for display.
func (s *Stack) History() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Command, len(s.undo))
	for i, command := range s.undo {
		entries[len(s.undo)-1-i] = command
	}

	return entries
}

// UndoDescription returns the description of the next command to be undone,
// or "" when the undo stack is empty.
func (s *Stack) UndoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return ""
	}

	return s.undo[len(s.undo)-1].Description()
}

// RedoDescription returns the description of the next command to be redone,
// or "" when the redo stack is empty.
func (s *Stack) RedoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return ""
	}

	return s.redo[len(s.redo)-1].Description()
}

// LastCommandTime returns the time of the most recent successful operation,
// zero after Clear.
func (s *Stack) LastCommandTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastCommandTime
}

// Depth returns the current undo stack length.
func (s *Stack) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.undo)
}
