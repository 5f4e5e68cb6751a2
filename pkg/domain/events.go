package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventApply EventType = "apply"
	EventUndo  EventType = "undo"
	EventInput EventType = "input"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TurtleID  uint64    `json:"turtle_id"`
}

// ApplyEvent is emitted after a draw request completed, animation included.
type ApplyEvent struct {
	EventBase
	Request  string        `json:"request"`
	Command  string        `json:"command,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// UndoEvent is emitted after an undo retracted an entry.
type UndoEvent struct {
	EventBase
	Request   string `json:"request"`
	Command   string `json:"command,omitempty"`
	Remaining int    `json:"remaining"`
}

// InputEvent is emitted when an input prompt was answered.
type InputEvent struct {
	EventBase
	Kind      PromptKind    `json:"kind"`
	Cancelled bool          `json:"cancelled"`
	Wait      time.Duration `json:"wait"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run on the engine goroutine and must not block.
type LifecycleHooks struct {
	OnApply func(context.Context, *ApplyEvent)
	OnUndo  func(context.Context, *UndoEvent)
	OnInput func(context.Context, *InputEvent)
}
