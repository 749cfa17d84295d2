// Package events defines the editor lifecycle events published so that
// every surface observing a session sees the same history and drafts.
package events

import (
	"time"

	"github.com/atelierhq/atelier/pkg/models"
)

type EventType string

// Topic carries all editor events.
const Topic = "atelier.editor.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// History events.
	CommandExecutedEvent EventType = "command.executed"
	CommandUndoneEvent   EventType = "command.undone"
	CommandRedoneEvent   EventType = "command.redone"
	HistoryClearedEvent  EventType = "history.cleared"

	// Draft events.
	DraftAppliedEvent   EventType = "draft.applied"
	DraftDiscardedEvent EventType = "draft.discarded"

	// Builder run events.
	RunRequestedEvent EventType = "run.requested"
	RunFinishedEvent  EventType = "run.finished"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type CommandExecuted struct {
	BaseEvent

	CommandID   string `json:"command_id"`
	CommandType string `json:"command_type"`
	Description string `json:"description"`
	BatchSize   int    `json:"batch_size,omitempty"`
}

func (e CommandExecuted) GetType() EventType {
	return CommandExecutedEvent
}

type CommandUndone struct {
	BaseEvent

	Description string `json:"description"`
}

func (e CommandUndone) GetType() EventType {
	return CommandUndoneEvent
}

type CommandRedone struct {
	BaseEvent

	Description string `json:"description"`
}

func (e CommandRedone) GetType() EventType {
	return CommandRedoneEvent
}

type HistoryCleared struct {
	BaseEvent
}

func (e HistoryCleared) GetType() EventType {
	return HistoryClearedEvent
}

type DraftApplied struct {
	BaseEvent

	DraftID     string               `json:"draft_id"`
	Description string               `json:"description"`
	Summary     models.ChangeSummary `json:"summary"`
}

func (e DraftApplied) GetType() EventType {
	return DraftAppliedEvent
}

type DraftDiscarded struct {
	BaseEvent

	DraftID string `json:"draft_id"`
}

func (e DraftDiscarded) GetType() EventType {
	return DraftDiscardedEvent
}

type RunRequested struct {
	BaseEvent

	RunID  string `json:"run_id"`
	Prompt string `json:"prompt"`
}

func (e RunRequested) GetType() EventType {
	return RunRequestedEvent
}

type RunFinished struct {
	BaseEvent

	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

func (e RunFinished) GetType() EventType {
	return RunFinishedEvent
}
