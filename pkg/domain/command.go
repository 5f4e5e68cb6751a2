package domain

// Command is one of the four request families: Draw, Screen, Input or Data.
type Command interface {
	command()
}

// Draw routes a DrawRequest through the turtle state machine.
type Draw struct {
	Req DrawRequest
}

// Screen carries a window-level operation, handled by the renderer.
type Screen struct {
	Op ScreenOp
}

// Input asks the host for a number or a line of text.
type Input struct {
	Prompt Prompt
}

// Data is a synchronous query answered without animation.
type Data struct {
	Query Query
}

func (Draw) command()   {}
func (Screen) command() {}
func (Input) command()  {}
func (Data) command()   {}

// ScreenOp is a window-level operation.
type ScreenOp interface {
	screenOp()
}

type (
	ClearScreen struct{}
	Background  struct{ Color Color }
	Title       struct{ Text string }
	// Bye asks the engine to shut down once the response has been sent.
	Bye struct{}
)

func (ClearScreen) screenOp() {}
func (Background) screenOp()  {}
func (Title) screenOp()       {}
func (Bye) screenOp()         {}

// PromptKind selects the kind of value an input prompt collects.
type PromptKind string

const (
	PromptNumber PromptKind = "number"
	PromptText   PromptKind = "text"
)

// Prompt describes an input dialog.
type Prompt struct {
	TurtleID uint64     `json:"turtle_id"`
	Kind     PromptKind `json:"kind"`
	Title    string     `json:"title"`
	Text     string     `json:"prompt"`
}

// Query selects a piece of turtle data.
type Query int

const (
	QueryPosition Query = iota
	QueryHeading
	QueryUndoCount
	QueryPenDown
	QueryState
)

// Request is the envelope sent from a script to the engine.
type Request struct {
	TurtleID uint64
	Cmd      Command
}

// Response is the engine's single reply to a Request.
type Response interface {
	response()
}

type (
	// Ack acknowledges a command with no payload.
	Ack struct{}
	// Position answers QueryPosition.
	Position struct{ X, Y float64 }
	// Heading answers QueryHeading with the internal, unwrapped angle.
	Heading struct{ Angle float64 }
	// UndoCount answers QueryUndoCount.
	UndoCount struct{ N int }
	// PenState answers QueryPenDown.
	PenState struct{ Down bool }
	// NumberValue answers a number prompt.
	NumberValue struct {
		Value     float64
		Cancelled bool
	}
	// TextValue answers a text prompt.
	TextValue struct {
		Value     string
		Cancelled bool
	}
	// StateSnapshot answers QueryState with a copy of the full turtle state.
	StateSnapshot struct{ State TurtleState }
	// Failure reports a rejected request.
	Failure struct{ Err error }
)

func (Ack) response()           {}
func (Position) response()      {}
func (Heading) response()       {}
func (UndoCount) response()     {}
func (PenState) response()      {}
func (NumberValue) response()   {}
func (TextValue) response()     {}
func (StateSnapshot) response() {}
func (Failure) response()       {}
