// Package models defines the core domain models for the workflow editor.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "draft"     // Editable in the builder
	WorkflowStatusPublished WorkflowStatus = "published" // Frozen, executable
)

// Workflow represents an automation project built from typed steps
// connected by edges.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      WorkflowStatus  `json:"status"      validate:"required"`
	Steps       []*WorkflowStep `json:"steps"`
	Edges       []*Edge         `json:"edges"`
	Variables   map[string]any  `json:"variables,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StepByID returns the step with the given id, or nil if absent.
func (w *Workflow) StepByID(id string) *WorkflowStep {
	for _, step := range w.Steps {
		if step.ID == id {
			return step
		}
	}

	return nil
}

// EdgeByID returns the edge with the given id, or nil if absent.
func (w *Workflow) EdgeByID(id string) *Edge {
	for _, edge := range w.Edges {
		if edge.ID == id {
			return edge
		}
	}

	return nil
}
