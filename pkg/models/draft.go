package models

import (
	"fmt"
	"time"
)

// DraftStatus represents the lifecycle state of an editing draft.
type DraftStatus string

const (
	DraftStatusIdle       DraftStatus = "idle"
	DraftStatusCollecting DraftStatus = "collecting"
	DraftStatusPreviewing DraftStatus = "previewing"
	DraftStatusApplying   DraftStatus = "applying"
	DraftStatusApplied    DraftStatus = "applied"
	DraftStatusDiscarded  DraftStatus = "discarded"
)

// ChangeKind discriminates the Change union.
type ChangeKind string

const (
	ChangeKindStepCreate ChangeKind = "step.create"
	ChangeKindStepUpdate ChangeKind = "step.update"
	ChangeKindStepDelete ChangeKind = "step.delete"
	ChangeKindEdgeCreate ChangeKind = "edge.create"
	ChangeKindEdgeDelete ChangeKind = "edge.delete"
)

// StepCreateChange proposes a new step. TempID is assigned by the change
// producer so later changes in the same draft can reference the step before
// it exists.
type StepCreateChange struct {
	TempID    string         `json:"temp_id"  validate:"required"`
	Type      string         `json:"type"     validate:"required"`
	Category  CategoryType   `json:"category" validate:"required"`
	Name      string         `json:"name"     validate:"required,min=1"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// StepUpdateChange proposes a partial patch to an existing step. Only the
// keys present in Patch are touched.
type StepUpdateChange struct {
	StepID string         `json:"step_id" validate:"required"`
	Patch  map[string]any `json:"patch"   validate:"required"`
}

// StepDeleteChange proposes removing a step.
type StepDeleteChange struct {
	StepID string `json:"step_id" validate:"required"`
}

// EdgeCreateChange proposes a new edge. Step references may be temp ids from
// a StepCreateChange earlier in the same draft.
type EdgeCreateChange struct {
	SourceStep string `json:"source_step" validate:"required"`
	SourcePort string `json:"source_port" validate:"required"`
	TargetStep string `json:"target_step" validate:"required"`
	TargetPort string `json:"target_port" validate:"required"`
}

// EdgeDeleteChange proposes removing an edge.
type EdgeDeleteChange struct {
	EdgeID string `json:"edge_id" validate:"required"`
}

// Change is one proposed edit inside a draft. Exactly one payload field is
// set, matching Kind.
type Change struct {
	Kind       ChangeKind        `json:"kind" validate:"required"`
	StepCreate *StepCreateChange `json:"step_create,omitempty"`
	StepUpdate *StepUpdateChange `json:"step_update,omitempty"`
	StepDelete *StepDeleteChange `json:"step_delete,omitempty"`
	EdgeCreate *EdgeCreateChange `json:"edge_create,omitempty"`
	EdgeDelete *EdgeDeleteChange `json:"edge_delete,omitempty"`
}

// Validate checks that the payload matching Kind is present. Struct tags
// cannot express the union, so producers deserializing a Change must call
// this before handing it to an accumulator.
func (c Change) Validate() error {
	switch c.Kind {
	case ChangeKindStepCreate:
		if c.StepCreate == nil {
			return fmt.Errorf("%s change without step_create payload", c.Kind)
		}
	case ChangeKindStepUpdate:
		if c.StepUpdate == nil {
			return fmt.Errorf("%s change without step_update payload", c.Kind)
		}
	case ChangeKindStepDelete:
		if c.StepDelete == nil {
			return fmt.Errorf("%s change without step_delete payload", c.Kind)
		}
	case ChangeKindEdgeCreate:
		if c.EdgeCreate == nil {
			return fmt.Errorf("%s change without edge_create payload", c.Kind)
		}
	case ChangeKindEdgeDelete:
		if c.EdgeDelete == nil {
			return fmt.Errorf("%s change without edge_delete payload", c.Kind)
		}
	default:
		return fmt.Errorf("unknown change kind: %q", c.Kind)
	}

	return nil
}

// Draft is a transient buffer of proposed changes awaiting classification
// and commit. At most one draft exists per editor session.
type Draft struct {
	ID          string      `json:"id"`
	Status      DraftStatus `json:"status"`
	Description string      `json:"description"`
	Changes     []Change    `json:"changes"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PreviewState holds the disjoint identifier sets used to highlight a
// pending draft on the canvas.
type PreviewState struct {
	AddedSteps    []string `json:"added_steps"`
	ModifiedSteps []string `json:"modified_steps"`
	DeletedSteps  []string `json:"deleted_steps"`
	AddedEdges    []string `json:"added_edges"`
	DeletedEdges  []string `json:"deleted_edges"`
}

// ChangeSummary counts draft changes by effect.
type ChangeSummary struct {
	Additions     int `json:"additions"`
	Modifications int `json:"modifications"`
	Deletions     int `json:"deletions"`
}
