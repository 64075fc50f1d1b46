package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter       EventType = "step_enter"
	EventStepSkip        EventType = "step_skip"
	EventNavigationError EventType = "navigation_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent reports a resolved or skipped step.
type StepEvent struct {
	EventBase
	StepID    StepID    `json:"step_id"`
	From      StepID    `json:"from,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// NavigationErrorEvent reports an aborted transition.
type NavigationErrorEvent struct {
	EventBase
	From      StepID    `json:"from"`
	Direction Direction `json:"direction"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter       func(context.Context, *StepEvent)
	OnStepSkip        func(context.Context, *StepEvent)
	OnNavigationError func(context.Context, *NavigationErrorEvent)
}
