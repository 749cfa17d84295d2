// Package web provides the REST surface of the editor: workflow CRUD,
// undoable graph edits, draft coordination and builder runs.
package web

import (
	"github.com/atelierhq/atelier/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Variables   map[string]any `json:"variables,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Owner       string         `json:"owner"       validate:"required"`
}

// CreateStepRequest represents the request body for adding a step through
// the editing session.
type CreateStepRequest struct {
	Type      string         `json:"type"       validate:"required"`
	Category  string         `json:"category"   validate:"required,oneof=action trigger"`
	Name      string         `json:"name"       validate:"required,min=1"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// UpdateStepRequest carries the partial patch applied to a step. Only keys
// present in Patch are touched.
type UpdateStepRequest struct {
	Patch map[string]any `json:"patch" validate:"required,min=1"`
}

// CreateEdgeRequest represents the request body for connecting two steps.
type CreateEdgeRequest struct {
	SourceStep string `json:"source_step" validate:"required"`
	SourcePort string `json:"source_port" validate:"required"`
	TargetStep string `json:"target_step" validate:"required"`
	TargetPort string `json:"target_port" validate:"required"`
}

// StartDraftRequest opens a draft accumulating AI-proposed changes.
type StartDraftRequest struct {
	Description string `json:"description" validate:"required"`
}

// AddDraftChangeRequest appends one proposed change to the active draft.
type AddDraftChangeRequest struct {
	Change models.Change `json:"change" validate:"required"`
}

// CreateRunRequest represents the request body for starting a builder run.
type CreateRunRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

// HistoryEntryResponse is one executed command, most recent first.
type HistoryEntryResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// HistoryResponse describes the undo/redo state of a session.
type HistoryResponse struct {
	CanUndo         bool                   `json:"can_undo"`
	CanRedo         bool                   `json:"can_redo"`
	UndoDescription string                 `json:"undo_description,omitempty"`
	RedoDescription string                 `json:"redo_description,omitempty"`
	Entries         []HistoryEntryResponse `json:"entries"`
}

// DraftResponse describes the active draft plus the derived preview and
// summary a canvas needs.
type DraftResponse struct {
	Draft   *models.Draft        `json:"draft"`
	Preview models.PreviewState  `json:"preview"`
	Summary models.ChangeSummary `json:"summary"`
}

// FinalizeDraftResponse reports whether the finalized draft needs a
// user-facing preview before being applied.
type FinalizeDraftResponse struct {
	NeedsPreview bool `json:"needs_preview"`
}
