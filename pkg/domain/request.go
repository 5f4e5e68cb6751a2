package domain

// DrawRequest is a command addressed to one turtle's pen.
// The set of implementations is closed; dispatch with a type switch.
type DrawRequest interface {
	drawRequest()
}

// Motion requests.
type (
	// Forward moves the turtle along its heading.
	Forward struct{ Dist float64 }
	// Teleport jumps to (X, Y) without drawing.
	Teleport struct{ X, Y float64 }
	// GoTo moves to (X, Y), drawing when the pen is down.
	GoTo struct{ X, Y float64 }
	// SetX moves horizontally to X.
	SetX struct{ X float64 }
	// SetY moves vertically to Y.
	SetY struct{ Y float64 }
)

// Rotation requests.
type (
	Right      struct{ Deg float64 }
	Left       struct{ Deg float64 }
	SetHeading struct{ Heading float64 }
)

// Circle traces an arc of Extent degrees as a regular polygon of Steps sides.
// Steps must be at least 1.
type Circle struct {
	Radius float64
	Extent float64
	Steps  int
}

// Undo rolls back the most recent recorded request.
type Undo struct{}

// Instantaneous requests.
type (
	// Tracer sets the animation speed: 0 is instant, 1 (slow) to 10 (fast).
	Tracer struct{ Speed int }
	// BackfillPolygon marks the start of a fillable region.
	BackfillPolygon struct{}
	PenDown         struct{}
	PenUp           struct{}
	PenColor        struct{ Color Color }
	FillColor       struct{ Color Color }
	PenWidth        struct{ Width float64 }
	// Dot draws a filled circle. A nil Size defaults to the pen width.
	Dot struct {
		Size  *float64
		Color Color
	}
	Stamp struct{}
	Fill  struct{ Polygon Polygon }
	// Shape sets the polygon Stamp leaves behind, in turtle-local
	// coordinates. An empty polygon restores the default turtle.
	Shape struct{ Polygon Polygon }
	// Restore replaces the whole turtle state without drawing. It never
	// enters the undo history; sessions use it to resume a checkpoint.
	Restore struct{ State TurtleState }
)

func (Forward) drawRequest()         {}
func (Teleport) drawRequest()        {}
func (GoTo) drawRequest()            {}
func (SetX) drawRequest()            {}
func (SetY) drawRequest()            {}
func (Right) drawRequest()           {}
func (Left) drawRequest()            {}
func (SetHeading) drawRequest()      {}
func (Circle) drawRequest()          {}
func (Undo) drawRequest()            {}
func (Tracer) drawRequest()          {}
func (BackfillPolygon) drawRequest() {}
func (PenDown) drawRequest()         {}
func (PenUp) drawRequest()           {}
func (PenColor) drawRequest()        {}
func (FillColor) drawRequest()       {}
func (PenWidth) drawRequest()        {}
func (Dot) drawRequest()             {}
func (Stamp) drawRequest()           {}
func (Fill) drawRequest()            {}
func (Shape) drawRequest()           {}
func (Restore) drawRequest()         {}

// IsTimed reports whether a request is animated over several frames.
func IsTimed(req DrawRequest) bool {
	switch req.(type) {
	case Forward, Teleport, GoTo, SetX, SetY, Right, Left, SetHeading, Circle:
		return true
	}
	return false
}

// RequestKind returns a stable snake_case name for logs and metrics.
func RequestKind(req DrawRequest) string {
	switch req.(type) {
	case Forward:
		return "forward"
	case Teleport:
		return "teleport"
	case GoTo:
		return "goto"
	case SetX:
		return "setx"
	case SetY:
		return "sety"
	case Right:
		return "right"
	case Left:
		return "left"
	case SetHeading:
		return "setheading"
	case Circle:
		return "circle"
	case Undo:
		return "undo"
	case Tracer:
		return "tracer"
	case BackfillPolygon:
		return "backfill"
	case PenDown:
		return "pendown"
	case PenUp:
		return "penup"
	case PenColor:
		return "pencolor"
	case FillColor:
		return "fillcolor"
	case PenWidth:
		return "penwidth"
	case Dot:
		return "dot"
	case Stamp:
		return "stamp"
	case Fill:
		return "fill"
	case Shape:
		return "shape"
	case Restore:
		return "restore"
	}
	return "unknown"
}
