package jsonl

import (
	"fmt"

	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Renderer implements ports.Renderer by emitting events. A memory.Canvas
// keeps the command indexes, so Position and backfills agree with what a
// client replaying the stream would hold.
type Renderer struct {
	*memory.Canvas
	stream   *Stream
	progress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProgress also emits a progress event per animation frame.
func WithProgress(enabled bool) Option {
	return func(r *Renderer) {
		r.progress = enabled
	}
}

// NewRenderer emits onto stream.
func NewRenderer(stream *Stream, opts ...Option) *Renderer {
	r := &Renderer{Canvas: memory.NewCanvas(), stream: stream}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) emit(ev Event, cmd draw.Command) {
	if cmd != nil {
		env, err := draw.Wrap(cmd)
		if err != nil {
			r.stream.Emit(Event{Event: EventError, TurtleID: ev.TurtleID, Message: err.Error()})
			return
		}
		ev.Command = &env
	}
	r.stream.Emit(ev)
}

// NewTurtle announces a turtle.
func (r *Renderer) NewTurtle(id uint64) {
	r.Canvas.NewTurtle(id)
	r.emit(Event{Event: EventTurtle, TurtleID: id}, nil)
}

// CurrentCommand emits animation frames when enabled.
func (r *Renderer) CurrentCommand(id uint64, cmd draw.Command, progress float64) {
	r.Canvas.CurrentCommand(id, cmd, progress)
	if r.progress && cmd != nil {
		r.emit(Event{Event: EventProgress, TurtleID: id, Progress: &progress}, cmd)
	}
}

// AppendCommand emits the command with the index it occupies.
func (r *Renderer) AppendCommand(id uint64, cmd draw.Command) {
	index := r.Canvas.Position(id)
	r.Canvas.AppendCommand(id, cmd)
	r.emit(Event{Event: EventAppend, TurtleID: id, Index: &index}, cmd)
}

// FillPolygon emits the polygon with the index of its Filler marker.
func (r *Renderer) FillPolygon(id uint64, cmd draw.DrawPolygon, index int) {
	r.Canvas.FillPolygon(id, cmd, index)
	r.emit(Event{Event: EventFill, TurtleID: id, Index: &index}, cmd)
}

// Undo emits the command being retracted.
func (r *Renderer) Undo(id uint64, cmd draw.Command) {
	r.Canvas.Undo(id, cmd)
	r.emit(Event{Event: EventUndo, TurtleID: id}, cmd)
}

// Screen emits a window-level operation.
func (r *Renderer) Screen(id uint64, op domain.ScreenOp) {
	r.Canvas.Screen(id, op)
	r.emit(Event{Event: EventScreen, TurtleID: id, Screen: screenOp(op)}, nil)
}

// Decode reads back the draw command carried by an event.
func (ev Event) Decode() (draw.Command, error) {
	if ev.Command == nil {
		return nil, fmt.Errorf("event %q carries no command", ev.Event)
	}
	return draw.Unwrap(*ev.Command)
}
