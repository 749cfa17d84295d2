package models

// CategoryType represents the category of a step type.
type CategoryType string

const (
	CategoryTypeAction  CategoryType = "action"  // Regular action steps (http, transform, log, etc.)
	CategoryTypeTrigger CategoryType = "trigger" // Trigger steps (webhook, scheduler, etc.)
)

// WorkflowStep represents a block instance placed on the editor canvas.
type WorkflowStep struct {
	ID        string         `json:"id"         validate:"required"`
	Type      string         `json:"type"       validate:"required"`
	Category  CategoryType   `json:"category"   validate:"required"`
	Name      string         `json:"name"       validate:"required,min=1"`
	Config    map[string]any `json:"config"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
	Enabled   bool           `json:"enabled"`
}

func (s *WorkflowStep) IsActionStep() bool {
	return s.Category == CategoryTypeAction
}

func (s *WorkflowStep) IsTriggerStep() bool {
	return s.Category == CategoryTypeTrigger
}

// Edge connects an output port of one step to an input port of another.
type Edge struct {
	ID         string `json:"id"          validate:"required"`
	SourceStep string `json:"source_step" validate:"required"`
	SourcePort string `json:"source_port" validate:"required"`
	TargetStep string `json:"target_step" validate:"required"`
	TargetPort string `json:"target_port" validate:"required"`
}

// Key returns the source→target pair identifying the edge in preview sets,
// independent of the edge id.
func (e *Edge) Key() string {
	return e.SourceStep + ":" + e.SourcePort + "->" + e.TargetStep + ":" + e.TargetPort
}
