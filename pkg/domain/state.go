package domain

import "time"

// DefaultPenWidth is the pen width of a freshly created turtle.
const DefaultPenWidth = 0.5

// TurtleState is the complete pose and pen state of one turtle.
// It is owned by the engine context and mutated only by the state machine.
type TurtleState struct {
	Transform Transform `json:"transform"`

	// Angle is the cumulative rotation in degrees. It is never wrapped.
	Angle float64 `json:"angle"`

	PenDown   bool    `json:"pen_down"`
	PenWidth  float64 `json:"pen_width"`
	FillColor Color   `json:"fill_color"`
}

// NewTurtleState returns the state of a turtle at the origin, facing angle 0,
// pen down.
func NewTurtleState() TurtleState {
	return TurtleState{
		Transform: Identity(),
		PenDown:   true,
		PenWidth:  DefaultPenWidth,
		FillColor: Black,
	}
}

// Pos returns the current position in floating point coordinates.
func (s *TurtleState) Pos() Vec {
	return s.Transform.Pos()
}

// Point returns the current position rounded to canvas coordinates.
func (s *TurtleState) Point() Point {
	return s.Transform.Point()
}

// Snapshot is a checkpoint of one turtle, as kept by session stores.
// It holds the pose and pen state only; the drawing itself is never persisted.
type Snapshot struct {
	State     TurtleState `json:"state"`
	UndoCount int         `json:"undo_count"`
	SavedAt   time.Time   `json:"saved_at"`
	// Sealed carries the whole snapshot, encrypted, when the store sits
	// behind an encryption middleware. State is then left zero.
	Sealed string `json:"sealed,omitempty"`
}
