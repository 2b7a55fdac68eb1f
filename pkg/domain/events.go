package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepStart EventType = "step_start"
	EventStepEnd   EventType = "step_end"
	EventRunStart  EventType = "run_start"
	EventRunEnd    EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	GraphID   string    `json:"graph_id"`
}

// StepEvent represents the start or end of one plan step.
type StepEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	CardID   string        `json:"card_id"`
	Duration time.Duration `json:"duration,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// RunEvent represents the start or end of a whole plan execution.
type RunEvent struct {
	EventBase
	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for execution observability.
// Every field is optional.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunEnd    func(context.Context, *RunEvent)
	OnStepStart func(context.Context, *StepEvent)
	OnStepEnd   func(context.Context, *StepEvent)
}
