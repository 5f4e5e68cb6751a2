package turtle

import (
	"fmt"
	"math"

	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
)

// Conn is one turtle's request/response channel pair, as handed out by the
// engine.
type Conn struct {
	TurtleID  uint64
	Requests  chan<- domain.Request
	Responses <-chan domain.Response
	// Done is closed once the engine has stopped.
	Done <-chan struct{}
}

// Turtle is a blocking handle on one engine-owned turtle.
type Turtle struct {
	conn   Conn
	hatch  func() Conn
	steps  int
	closed bool
	shared bool
}

// Option configures a Turtle.
type Option func(*Turtle)

// WithHatchery lets Hatch create sibling turtles on the same engine.
func WithHatchery(hatch func() Conn) Option {
	return func(t *Turtle) {
		t.hatch = hatch
	}
}

// New wraps an engine connection.
func New(conn Conn, opts ...Option) *Turtle {
	t := &Turtle{conn: conn}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the engine-assigned turtle ID.
func (t *Turtle) ID() uint64 {
	return t.conn.TurtleID
}

// Hatch creates a new turtle on the same engine, starting at the origin.
func (t *Turtle) Hatch() *Turtle {
	if t.hatch == nil {
		fail(fmt.Errorf("%w: turtle %d cannot hatch", domain.ErrUnknownTurtle, t.conn.TurtleID))
	}
	return New(t.hatch(), WithHatchery(t.hatch))
}

// Share marks the turtle as one of several independent users of the same
// window. Window-level operations then abort with domain.ErrScreenForbidden
// instead of reaching the engine.
func (t *Turtle) Share() {
	t.shared = true
}

// Close releases the turtle. Later calls abort with domain.ErrEngineGone.
func (t *Turtle) Close() {
	if t.closed {
		return
	}
	t.closed = true
	select {
	case <-t.conn.Done:
	default:
		close(t.conn.Requests)
	}
}

func (t *Turtle) do(cmd domain.Command) domain.Response {
	if t.closed {
		fail(fmt.Errorf("%w: turtle %d is closed", domain.ErrEngineGone, t.conn.TurtleID))
	}

	select {
	case t.conn.Requests <- domain.Request{TurtleID: t.conn.TurtleID, Cmd: cmd}:
	case <-t.conn.Done:
		fail(domain.ErrEngineGone)
	}

	resp, ok := <-t.conn.Responses
	if !ok {
		fail(domain.ErrEngineGone)
	}
	if f, ok := resp.(domain.Failure); ok {
		fail(f.Err)
	}
	return resp
}

func (t *Turtle) draw(req domain.DrawRequest) {
	t.do(domain.Draw{Req: req})
}

func (t *Turtle) screen(op domain.ScreenOp) {
	if t.shared {
		fail(fmt.Errorf("%w: %T", domain.ErrScreenForbidden, op))
	}
	t.do(domain.Screen{Op: op})
}

func (t *Turtle) query(q domain.Query) domain.Response {
	return t.do(domain.Data{Query: q})
}

// color resolves any value accepted by colors.FromAny, aborting on malformed
// input.
func color(v any) domain.Color {
	c, err := colors.FromAny(v)
	if err != nil {
		fail(err)
	}
	return c
}

// Forward moves along the current heading.
func (t *Turtle) Forward(dist float64) { t.draw(domain.Forward{Dist: dist}) }

// Backward moves against the current heading.
func (t *Turtle) Backward(dist float64) { t.draw(domain.Forward{Dist: -dist}) }

// Right turns clockwise by deg degrees.
func (t *Turtle) Right(deg float64) { t.draw(domain.Right{Deg: deg}) }

// Left turns counterclockwise by deg degrees.
func (t *Turtle) Left(deg float64) { t.draw(domain.Left{Deg: deg}) }

// Teleport jumps to (x, y) without drawing, whatever the pen state.
func (t *Turtle) Teleport(x, y float64) { t.draw(domain.Teleport{X: x, Y: y}) }

// GoTo moves to (x, y), drawing if the pen is down.
func (t *Turtle) GoTo(x, y float64) { t.draw(domain.GoTo{X: x, Y: y}) }

func (t *Turtle) SetX(x float64) { t.draw(domain.SetX{X: x}) }

func (t *Turtle) SetY(y float64) { t.draw(domain.SetY{Y: y}) }

// SetHeading turns to an absolute heading.
func (t *Turtle) SetHeading(heading float64) { t.draw(domain.SetHeading{Heading: heading}) }

// Steps sets the number of chords used by the next Circle or Arc.
func (t *Turtle) Steps(n int) *Turtle {
	t.steps = n
	return t
}

// Circle draws a full circle of the given radius. A positive radius curves
// to the left.
func (t *Turtle) Circle(radius float64) { t.Arc(radius, 360) }

// Arc draws extent degrees of a circle.
func (t *Turtle) Arc(radius, extent float64) {
	steps := t.steps
	if steps == 0 {
		steps = defaultSteps(radius, extent)
	} else {
		t.steps = 0
	}
	t.CircleSteps(radius, extent, steps)
}

// CircleSteps draws extent degrees of a circle as steps equal chords.
// Fewer than one step aborts with domain.ErrInvalidSteps.
func (t *Turtle) CircleSteps(radius, extent float64, steps int) {
	t.draw(domain.Circle{Radius: radius, Extent: extent, Steps: steps})
}

// defaultSteps picks a chord count that looks round at the given size.
func defaultSteps(radius, extent float64) int {
	frac := math.Abs(extent) / 360
	return 1 + int(math.Min(11+math.Abs(radius)/6, 59)*frac)
}

func (t *Turtle) PenUp() { t.draw(domain.PenUp{}) }

func (t *Turtle) PenDown() { t.draw(domain.PenDown{}) }

// PenColor sets the stroke colour. It accepts a name, "#rrggbb", a
// domain.Color or an RGB triple.
func (t *Turtle) PenColor(c any) { t.draw(domain.PenColor{Color: color(c)}) }

// FillColor sets the colour used by fills and default dots.
func (t *Turtle) FillColor(c any) { t.draw(domain.FillColor{Color: color(c)}) }

func (t *Turtle) PenWidth(width float64) { t.draw(domain.PenWidth{Width: width}) }

// Dot draws a dot as wide as the pen. An unknown colour falls back to the
// fill colour.
func (t *Turtle) Dot(c any) { t.draw(domain.Dot{Color: color(c)}) }

// DotSize draws a dot of the given size.
func (t *Turtle) DotSize(size float64, c any) {
	t.draw(domain.Dot{Size: &size, Color: color(c)})
}

// Stamp leaves a copy of the turtle shape at the current pose.
func (t *Turtle) Stamp() { t.draw(domain.Stamp{}) }

// Shape sets the polygon later stamps leave behind, in turtle-local
// coordinates. Passing nil goes back to the default turtle.
func (t *Turtle) Shape(polygon domain.Polygon) { t.draw(domain.Shape{Polygon: polygon}) }

// Restore puts the turtle in state without drawing and without an undo entry.
func (t *Turtle) Restore(state domain.TurtleState) { t.draw(domain.Restore{State: state}) }

// BeginFill starts recording the path to fill.
func (t *Turtle) BeginFill() { t.draw(domain.BackfillPolygon{}) }

// EndFill fills the path walked since BeginFill, underneath its strokes.
func (t *Turtle) EndFill() { t.draw(domain.Fill{}) }

// FillPolygon fills an explicit polygon.
func (t *Turtle) FillPolygon(polygon domain.Polygon) { t.draw(domain.Fill{Polygon: polygon}) }

// Speed sets the animation speed: 0 is instant, 1 slowest, 10 fastest.
func (t *Turtle) Speed(speed int) { t.draw(domain.Tracer{Speed: speed}) }

// Undo rolls back the most recent command.
func (t *Turtle) Undo() { t.draw(domain.Undo{}) }

// UndoBufferEntries returns how many commands can be undone.
func (t *Turtle) UndoBufferEntries() int {
	return t.query(domain.QueryUndoCount).(domain.UndoCount).N
}

// Position returns the current position.
func (t *Turtle) Position() (x, y float64) {
	p := t.query(domain.QueryPosition).(domain.Position)
	return p.X, p.Y
}

// Heading returns the cumulative turn angle in degrees, never wrapped.
func (t *Turtle) Heading() float64 {
	return t.query(domain.QueryHeading).(domain.Heading).Angle
}

// IsDown reports whether the pen is down.
func (t *Turtle) IsDown() bool {
	return t.query(domain.QueryPenDown).(domain.PenState).Down
}

// State returns a copy of the full turtle state.
func (t *Turtle) State() domain.TurtleState {
	return t.query(domain.QueryState).(domain.StateSnapshot).State
}

// NumInput asks the user for a number. ok is false when the prompt was
// cancelled.
func (t *Turtle) NumInput(title, prompt string) (value float64, ok bool) {
	resp := t.do(domain.Input{Prompt: domain.Prompt{Kind: domain.PromptNumber, Title: title, Text: prompt}})
	n, isNum := resp.(domain.NumberValue)
	if !isNum || n.Cancelled {
		return 0, false
	}
	return n.Value, true
}

// TextInput asks the user for a line of text. ok is false when the prompt
// was cancelled.
func (t *Turtle) TextInput(title, prompt string) (value string, ok bool) {
	resp := t.do(domain.Input{Prompt: domain.Prompt{Kind: domain.PromptText, Title: title, Text: prompt}})
	s, isText := resp.(domain.TextValue)
	if !isText || s.Cancelled {
		return "", false
	}
	return s.Value, true
}

// ClearScreen erases every drawing.
func (t *Turtle) ClearScreen() { t.screen(domain.ClearScreen{}) }

// Background sets the canvas colour.
func (t *Turtle) Background(c any) { t.screen(domain.Background{Color: color(c)}) }

// Title sets the window title.
func (t *Turtle) Title(text string) { t.screen(domain.Title{Text: text}) }

// Bye closes the window and stops the engine.
func (t *Turtle) Bye() { t.screen(domain.Bye{}) }
