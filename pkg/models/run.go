package models

import "time"

// RunStatus represents the state of a server-side builder generation job.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status ends the run's lifecycle. Polling
// stops once a terminal status is observed.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	case RunStatusPending, RunStatusRunning:
		return false
	}

	return false
}

// BuilderRun represents one AI workflow-generation job.
type BuilderRun struct {
	ID         string         `json:"id"          validate:"required"`
	WorkflowID string         `json:"workflow_id" validate:"required"`
	Prompt     string         `json:"prompt"      validate:"required"`
	Status     RunStatus      `json:"status"      validate:"required"`
	Progress   int            `json:"progress"`
	Message    string         `json:"message,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
