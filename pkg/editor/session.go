// Package editor holds the per-workflow editing sessions. A session owns
// the undo/redo stack and the draft accumulator for one workflow, so every
// client editing that workflow shares the same history.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/atelierhq/atelier/pkg/commands"
	"github.com/atelierhq/atelier/pkg/draft"
	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/events"
	"github.com/atelierhq/atelier/pkg/history"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/otelhelper"
	"github.com/atelierhq/atelier/pkg/services"
)

// Session is the editing context for one workflow.
type Session struct {
	workflowID string
	stack      *history.Stack
	drafts     *draft.Accumulator
	factory    *commands.Factory
	publisher  eventbus.EventPublisher
	tracer     trace.Tracer
	logger     *slog.Logger

	mu         sync.Mutex
	lastActive time.Time
}

// NewSession wires a session for the given workflow. publisher and tracer
// may be nil.
func NewSession(
	workflowID string,
	steps *services.Step,
	edges *services.Edge,
	publisher eventbus.EventPublisher,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Session {
	sessionLogger := logger.With("module", "editor_session", "workflow_id", workflowID)
	stack := history.NewStack(sessionLogger)

	return &Session{
		workflowID: workflowID,
		stack:      stack,
		drafts:     draft.NewAccumulator(stack, sessionLogger),
		factory:    commands.NewFactory(steps, edges, workflowID),
		publisher:  publisher,
		tracer:     tracer,
		logger:     sessionLogger,
		lastActive: time.Now(),
	}
}

// WorkflowID returns the workflow this session edits.
func (s *Session) WorkflowID() string {
	return s.workflowID
}

// Apply builds a command from a single change and executes it on the
// history stack. The executed command is returned so callers can read
// identifiers assigned during execution.
func (s *Session) Apply(ctx context.Context, change models.Change) (history.Command, error) {
	s.touch()

	command, err := s.factory.Build(change)
	if err != nil {
		return nil, err
	}

	ctx, span := s.startSpan(ctx, "editor.apply",
		attribute.String(otelhelper.CommandTypeKey, string(command.Type())))
	defer span.End()

	if err := s.stack.Execute(ctx, command); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	s.publish(ctx, events.CommandExecuted{
		BaseEvent:   s.baseEvent(events.CommandExecutedEvent),
		CommandID:   command.ID(),
		CommandType: string(command.Type()),
		Description: command.Description(),
	})

	return command, nil
}

// Undo reverts the most recent command. The returned bool reports whether
// anything was undone.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	s.touch()

	description := s.stack.UndoDescription()

	ctx, span := s.startSpan(ctx, "editor.undo")
	defer span.End()

	done, err := s.stack.Undo(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return done, err
	}

	if done {
		s.publish(ctx, events.CommandUndone{
			BaseEvent:   s.baseEvent(events.CommandUndoneEvent),
			Description: description,
		})
	}

	return done, nil
}

// Redo re-applies the most recently undone command.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	s.touch()

	description := s.stack.RedoDescription()

	ctx, span := s.startSpan(ctx, "editor.redo")
	defer span.End()

	done, err := s.stack.Redo(ctx)
	if err != nil {
		otelhelper.SetError(span, err)

		return done, err
	}

	if done {
		s.publish(ctx, events.CommandRedone{
			BaseEvent:   s.baseEvent(events.CommandRedoneEvent),
			Description: description,
		})
	}

	return done, nil
}

// ClearHistory drops both stacks, typically after an external reload of
// the workflow.
func (s *Session) ClearHistory(ctx context.Context) {
	s.touch()
	s.stack.Clear()

	s.publish(ctx, events.HistoryCleared{
		BaseEvent: s.baseEvent(events.HistoryClearedEvent),
	})
}

func (s *Session) CanUndo() bool { return s.stack.CanUndo() }

func (s *Session) CanRedo() bool { return s.stack.CanRedo() }

func (s *Session) UndoDescription() string { return s.stack.UndoDescription() }

func (s *Session) RedoDescription() string { return s.stack.RedoDescription() }

// History returns executed commands, most recent first.
func (s *Session) History() []history.Command {
	return s.stack.History()
}

// StartDraft opens a draft that buffers AI-proposed changes.
func (s *Session) StartDraft(description string) string {
	s.touch()

	return s.drafts.Start(description)
}

// AddDraftChange appends one proposed change to the active draft.
func (s *Session) AddDraftChange(change models.Change) {
	s.touch()
	s.drafts.Add(change)
}

// FinalizeDraft closes collection and reports whether the draft needs a
// preview before being applied.
func (s *Session) FinalizeDraft() draft.FinalizeResult {
	s.touch()

	return s.drafts.Finalize()
}

// ApplyDraft commits the active draft to the history stack as one
// undoable batch.
func (s *Session) ApplyDraft(ctx context.Context) error {
	s.touch()

	current := s.drafts.Current()
	summary := s.drafts.Summary()

	ctx, span := s.startSpan(ctx, "editor.apply_draft")
	defer span.End()

	if err := s.drafts.Apply(ctx, s.factory.Build); err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	if current != nil {
		s.publish(ctx, events.DraftApplied{
			BaseEvent:   s.baseEvent(events.DraftAppliedEvent),
			DraftID:     current.ID,
			Description: current.Description,
			Summary:     summary,
		})
	}

	return nil
}

// DiscardDraft destroys the active draft without touching the workflow.
func (s *Session) DiscardDraft(ctx context.Context) {
	s.touch()

	current := s.drafts.Current()
	s.drafts.Discard()

	if current != nil {
		s.publish(ctx, events.DraftDiscarded{
			BaseEvent: s.baseEvent(events.DraftDiscardedEvent),
			DraftID:   current.ID,
		})
	}
}

// CurrentDraft returns a copy of the active draft, or nil.
func (s *Session) CurrentDraft() *models.Draft {
	return s.drafts.Current()
}

// DraftPreview returns the id sets a canvas needs to highlight the draft.
func (s *Session) DraftPreview() models.PreviewState {
	return s.drafts.Preview()
}

// DraftSummary counts the active draft's changes by kind.
func (s *Session) DraftSummary() models.ChangeSummary {
	return s.drafts.Summary()
}

// IsDraftCollecting reports whether a draft is still accepting changes.
func (s *Session) IsDraftCollecting() bool {
	return s.drafts.IsCollecting()
}

// LastActive returns the time of the session's most recent operation.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
}

func (s *Session) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if s.tracer == nil {
		return noop.NewTracerProvider().Tracer("editor").Start(ctx, name)
	}

	attrs = append(attrs, attribute.String(otelhelper.WorkflowIDKey, s.workflowID))

	return otelhelper.StartSpan(ctx, s.tracer, name, attrs...)
}

func (s *Session) baseEvent(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now(),
		WorkflowID: s.workflowID,
	}
}

func (s *Session) publish(ctx context.Context, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, s.workflowID, event); err != nil {
		s.logger.Error("failed to publish editor event", "error", err, "event_type", event.GetType())
	}
}
