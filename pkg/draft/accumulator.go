// Package draft buffers proposed edits from the AI builder before they are
// committed to the history stack.
package draft

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/atelierhq/atelier/pkg/history"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/google/uuid"
)

// ErrNoActiveDraft is returned by Apply when there is no draft ready to be
// applied.
var ErrNoActiveDraft = errors.New("no active draft")

// Factory translates one draft change into an executable command. A nil
// command (with nil error) means the change produces no undoable work.
type Factory func(models.Change) (history.Command, error)

// FinalizeResult is the outcome of classifying a finalized draft.
type FinalizeResult struct {
	NeedsPreview bool `json:"needs_preview"`
}

// smallChangeLimit is the maximum change count for a draft to skip user
// confirmation.
const smallChangeLimit = 2

// Accumulator collects a sequence of proposed changes into a single draft
// and classifies the batch as small (silently applied) or large (requires
// preview). At most one draft exists at a time; once applied or discarded
// it is destroyed.
type Accumulator struct {
	mu      sync.Mutex
	stack   *history.Stack
	current *models.Draft
	logger  *slog.Logger
}

// NewAccumulator creates an accumulator committing through stack.
func NewAccumulator(stack *history.Stack, logger *slog.Logger) *Accumulator {
	return &Accumulator{
		stack:  stack,
		logger: logger.With("module", "draft"),
	}
}

// Start opens a new collecting draft and returns its id. An already active
// draft is silently replaced.
func (a *Accumulator) Start(description string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		a.logger.Debug("replacing active draft", "draft_id", a.current.ID, "status", a.current.Status)
	}

	a.current = &models.Draft{
		ID:          uuid.New().String(),
		Status:      models.DraftStatusCollecting,
		Description: description,
		Changes:     make([]models.Change, 0),
		CreatedAt:   time.Now(),
	}

	return a.current.ID
}

// Add appends a change to the collecting draft. Step updates targeting a
// step that already has an update entry are merged into it, last patch wins
// per field. Without a collecting draft the call logs a warning and does
// nothing.
func (a *Accumulator) Add(change models.Change) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil || a.current.Status != models.DraftStatusCollecting {
		a.logger.Warn("draft change ignored, no collecting draft", "kind", change.Kind)

		return
	}

	if change.Kind == models.ChangeKindStepUpdate && change.StepUpdate != nil {
		for i, existing := range a.current.Changes {
			if existing.Kind != models.ChangeKindStepUpdate || existing.StepUpdate == nil {
				continue
			}

			if existing.StepUpdate.StepID != change.StepUpdate.StepID {
				continue
			}

			merged := make(map[string]any, len(existing.StepUpdate.Patch)+len(change.StepUpdate.Patch))
			maps.Copy(merged, existing.StepUpdate.Patch)
			maps.Copy(merged, change.StepUpdate.Patch)

			a.current.Changes[i].StepUpdate = &models.StepUpdateChange{
				StepID: existing.StepUpdate.StepID,
				Patch:  merged,
			}

			return
		}
	}

	a.current.Changes = append(a.current.Changes, change)
}

// Finalize classifies the collected draft. Small drafts (at most two
// changes, none of them step creates or deletes) stay ready to apply
// without confirmation; large drafts transition to previewing and must be
// confirmed by the user. An empty draft is discarded.
func (a *Accumulator) Finalize() FinalizeResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil || a.current.Status != models.DraftStatusCollecting {
		return FinalizeResult{NeedsPreview: false}
	}

	if len(a.current.Changes) == 0 {
		a.current = nil

		return FinalizeResult{NeedsPreview: false}
	}

	if a.isSmallLocked() {
		return FinalizeResult{NeedsPreview: false}
	}

	a.current.Status = models.DraftStatusPreviewing

	return FinalizeResult{NeedsPreview: true}
}

func (a *Accumulator) isSmallLocked() bool {
	if len(a.current.Changes) > smallChangeLimit {
		return false
	}

	for _, change := range a.current.Changes {
		if change.Kind == models.ChangeKindStepCreate || change.Kind == models.ChangeKindStepDelete {
			return false
		}
	}

	return true
}

// Apply converts the draft changes into commands through factory and
// executes them as one batch on the history stack. On success the draft is
// destroyed. On failure it reverts to previewing so the caller can retry or
// discard, and the error is returned.
func (a *Accumulator) Apply(ctx context.Context, factory Factory) error {
	a.mu.Lock()

	if a.current == nil ||
		(a.current.Status != models.DraftStatusCollecting && a.current.Status != models.DraftStatusPreviewing) {
		a.mu.Unlock()

		return ErrNoActiveDraft
	}

	a.current.Status = models.DraftStatusApplying
	draftID := a.current.ID
	description := a.current.Description
	changes := make([]models.Change, len(a.current.Changes))
	copy(changes, a.current.Changes)
	a.mu.Unlock()

	commands := make([]history.Command, 0, len(changes))

	for _, change := range changes {
		command, err := factory(change)
		if err != nil {
			a.revertToPreviewing(draftID)

			return err
		}

		if command != nil {
			commands = append(commands, command)
		}
	}

	if err := a.stack.ExecuteBatch(ctx, commands, description); err != nil {
		a.revertToPreviewing(draftID)

		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Start may have replaced the draft while the lock was released; only
	// the draft this call applied gets destroyed.
	if a.current != nil && a.current.ID == draftID {
		a.current.Status = models.DraftStatusApplied
		a.current = nil
	}

	return nil
}

func (a *Accumulator) revertToPreviewing(draftID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil && a.current.ID == draftID {
		a.current.Status = models.DraftStatusPreviewing
	}
}

// Discard drops the draft without committing anything to history.
func (a *Accumulator) Discard() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return
	}

	a.current.Status = models.DraftStatusDiscarded
	a.current = nil
}

// Current returns a shallow copy of the active draft, or nil.
func (a *Accumulator) Current() *models.Draft {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return nil
	}

	draft := *a.current
	draft.Changes = make([]models.Change, len(a.current.Changes))
	copy(draft.Changes, a.current.Changes)

	return &draft
}

// IsCollecting reports whether a draft is currently accepting changes.
func (a *Accumulator) IsCollecting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current != nil && a.current.Status == models.DraftStatusCollecting
}

// IsPreviewing reports whether a draft is awaiting user confirmation.
func (a *Accumulator) IsPreviewing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current != nil && a.current.Status == models.DraftStatusPreviewing
}

// Preview derives the identifier sets used for canvas highlighting from the
// active draft. The step sets are disjoint: a step created in this draft
// never also appears as modified.
func (a *Accumulator) Preview() models.PreviewState {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := models.PreviewState{
		AddedSteps:    make([]string, 0),
		ModifiedSteps: make([]string, 0),
		DeletedSteps:  make([]string, 0),
		AddedEdges:    make([]string, 0),
		DeletedEdges:  make([]string, 0),
	}

	if a.current == nil {
		return state
	}

	added := make(map[string]bool)

	for _, change := range a.current.Changes {
		// A change whose payload does not match its kind cannot be
		// previewed and must not crash the walk.
		if change.Validate() != nil {
			continue
		}

		switch change.Kind {
		case models.ChangeKindStepCreate:
			state.AddedSteps = append(state.AddedSteps, change.StepCreate.TempID)
			added[change.StepCreate.TempID] = true
		case models.ChangeKindStepUpdate:
			if !added[change.StepUpdate.StepID] {
				state.ModifiedSteps = append(state.ModifiedSteps, change.StepUpdate.StepID)
			}
		case models.ChangeKindStepDelete:
			state.DeletedSteps = append(state.DeletedSteps, change.StepDelete.StepID)
		case models.ChangeKindEdgeCreate:
			edge := change.EdgeCreate
			key := edge.SourceStep + ":" + edge.SourcePort + "->" + edge.TargetStep + ":" + edge.TargetPort
			state.AddedEdges = append(state.AddedEdges, key)
		case models.ChangeKindEdgeDelete:
			state.DeletedEdges = append(state.DeletedEdges, change.EdgeDelete.EdgeID)
		}
	}

	return state
}

// Summary counts the draft's changes by effect.
func (a *Accumulator) Summary() models.ChangeSummary {
	a.mu.Lock()
	defer a.mu.Unlock()

	var summary models.ChangeSummary

	if a.current == nil {
		return summary
	}

	for _, change := range a.current.Changes {
		switch change.Kind {
		case models.ChangeKindStepCreate, models.ChangeKindEdgeCreate:
			summary.Additions++
		case models.ChangeKindStepUpdate:
			summary.Modifications++
		case models.ChangeKindStepDelete, models.ChangeKindEdgeDelete:
			summary.Deletions++
		}
	}

	return summary
}
