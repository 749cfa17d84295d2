package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/pkg/eventbus"
	"github.com/atelierhq/atelier/pkg/events"
	"github.com/atelierhq/atelier/pkg/models"
	"github.com/atelierhq/atelier/pkg/persistence"
)

// ErrPromptRequired is returned when a run is requested without a prompt.
var ErrPromptRequired = errors.New("builder prompt is required")

// Service manages the lifecycle of AI workflow-generation runs: creating
// them, recording worker-side progress, and letting clients wait for a
// terminal status.
type Service struct {
	runs      persistence.RunRepository
	publisher eventbus.EventPublisher
	logger    *slog.Logger
}

// NewService creates a builder run service.
func NewService(runs persistence.RunRepository, publisher eventbus.EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		runs:      runs,
		publisher: publisher,
		logger:    logger.With("module", "builder_service"),
	}
}

// Request registers a new pending run for the given workflow and prompt.
func (s *Service) Request(ctx context.Context, workflowID, prompt string) (*models.BuilderRun, error) {
	if prompt == "" {
		return nil, ErrPromptRequired
	}

	now := time.Now()
	run := &models.BuilderRun{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Prompt:     prompt,
		Status:     models.RunStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	s.publish(ctx, run.WorkflowID, events.RunRequested{
		BaseEvent: s.baseEvent(events.RunRequestedEvent, run.WorkflowID),
		RunID:     run.ID,
		Prompt:    run.Prompt,
	})

	s.logger.Info("builder run requested", "run_id", run.ID, "workflow_id", workflowID)

	return run, nil
}

// Get returns the current state of a run.
func (s *Service) Get(ctx context.Context, runID string) (*models.BuilderRun, error) {
	return s.runs.GetByID(ctx, runID)
}

// UpdateProgress records worker-side progress on a run and moves it to
// running if it was still pending.
func (s *Service) UpdateProgress(ctx context.Context, runID string, progress int, message string) (*models.BuilderRun, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatusRunning
	run.Progress = progress
	run.Message = message
	run.UpdatedAt = time.Now()

	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run progress: %w", err)
	}

	return run, nil
}

// Complete marks a run as completed with its generation result.
func (s *Service) Complete(ctx context.Context, runID string, result map[string]any) (*models.BuilderRun, error) {
	return s.finish(ctx, runID, models.RunStatusCompleted, func(run *models.BuilderRun) {
		run.Progress = 100
		run.Result = result
	})
}

// Fail marks a run as failed with the worker-reported error.
func (s *Service) Fail(ctx context.Context, runID, runErr string) (*models.BuilderRun, error) {
	return s.finish(ctx, runID, models.RunStatusFailed, func(run *models.BuilderRun) {
		run.Error = runErr
	})
}

// Cancel marks a run as cancelled. The remote job is only abandoned, never
// interrupted.
func (s *Service) Cancel(ctx context.Context, runID string) (*models.BuilderRun, error) {
	return s.finish(ctx, runID, models.RunStatusCancelled, nil)
}

// WaitForCompletion polls the run until it reaches a terminal status,
// invoking onProgress on every observed state.
func (s *Service) WaitForCompletion(ctx context.Context, runID string, onProgress ProgressFunc, opts ...PollerOption) (*models.BuilderRun, error) {
	poller := NewPoller(s.runs.GetByID, s.logger, opts...)

	return poller.PollForCompletion(ctx, runID, onProgress)
}

func (s *Service) finish(ctx context.Context, runID string, status models.RunStatus, mutate func(*models.BuilderRun)) (*models.BuilderRun, error) {
	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	run.Status = status
	run.UpdatedAt = time.Now()

	if mutate != nil {
		mutate(run)
	}

	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	s.publish(ctx, run.WorkflowID, events.RunFinished{
		BaseEvent: s.baseEvent(events.RunFinishedEvent, run.WorkflowID),
		RunID:     run.ID,
		Status:    run.Status,
		Error:     run.Error,
	})

	s.logger.Info("builder run finished", "run_id", run.ID, "status", run.Status)

	return run, nil
}

func (s *Service) baseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	return events.BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now(),
		WorkflowID: workflowID,
	}
}

func (s *Service) publish(ctx context.Context, key string, event eventbus.Event) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, key, event); err != nil {
		s.logger.Error("failed to publish builder event", "error", err, "event_type", event.GetType())
	}
}
