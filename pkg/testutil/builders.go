// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/pkg/models"
)

// CreateTestStep creates a test WorkflowStep with default values that can be overridden.
func CreateTestStep(overrides ...func(*models.WorkflowStep)) *models.WorkflowStep {
	step := &models.WorkflowStep{
		ID:        uuid.New().String(),
		Type:      "log",
		Category:  models.CategoryTypeAction,
		Name:      "Test Step",
		Config:    map[string]any{"message": "test", "level": "info"},
		Enabled:   true,
		PositionX: 100,
		PositionY: 200,
	}

	for _, override := range overrides {
		override(step)
	}

	return step
}

// WithTriggerStep configures the step as a webhook trigger.
func WithTriggerStep() func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Type = "trigger:webhook"
		s.Category = models.CategoryTypeTrigger
		s.Config = map[string]any{
			"path":   "/webhook/test",
			"method": "POST",
		}
	}
}

// WithConfig sets the step configuration.
func WithConfig(config map[string]any) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Config = config
	}
}

// WithName sets the step name.
func WithName(name string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Name = name
	}
}

// WithPosition sets the step position on the canvas.
func WithPosition(x, y int) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.PositionX = x
		s.PositionY = y
	}
}

// WithEnabled sets the step enabled status.
func WithEnabled(enabled bool) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Enabled = enabled
	}
}

// WithType sets the step type.
func WithType(stepType string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.Type = stepType
	}
}

// WithID sets the step ID.
func WithID(id string) func(*models.WorkflowStep) {
	return func(s *models.WorkflowStep) {
		s.ID = id
	}
}

// CreateTestEdge creates a test edge between two steps.
func CreateTestEdge(id, source, target string) *models.Edge {
	return &models.Edge{
		ID:         id,
		SourceStep: source,
		SourcePort: "success",
		TargetStep: target,
		TargetPort: "input",
	}
}

// CreateTestWorkflow creates an empty draft workflow.
func CreateTestWorkflow() *models.Workflow {
	now := time.Now()

	return &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Description: "A workflow for testing",
		Status:      models.WorkflowStatusDraft,
		Owner:       "test-user",
		Variables:   map[string]any{"env": "test"},
		Metadata:    map[string]any{"category": "test"},
		Steps:       []*models.WorkflowStep{},
		Edges:       []*models.Edge{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateTestWorkflowWithSteps creates a workflow with a trigger, an action
// and an edge between them.
func CreateTestWorkflowWithSteps() *models.Workflow {
	workflow := CreateTestWorkflow()

	triggerStep := CreateTestStep(WithTriggerStep(), WithID("trigger-1"))
	actionStep := CreateTestStep(WithID("action-1"), WithName("Log Action"))

	workflow.Steps = []*models.WorkflowStep{triggerStep, actionStep}
	workflow.Edges = []*models.Edge{CreateTestEdge("edge-1", "trigger-1", "action-1")}

	return workflow
}
