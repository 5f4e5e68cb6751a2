package draw

import "github.com/aretw0/tortuga/pkg/domain"

// Command is a single renderable event. The set is closed.
type Command interface {
	drawCommand()
}

// Line is a straight move. PenDown false means a jump, not a stroke.
type Line struct {
	Begin   domain.Point `json:"begin"`
	End     domain.Point `json:"end"`
	PenDown bool         `json:"pen_down"`
}

type SetPenColor struct {
	Color domain.Color `json:"color"`
}

type SetPenWidth struct {
	Width float64 `json:"width"`
}

type SetFillColor struct {
	Color domain.Color `json:"color"`
}

// DrawPolygon fills a polygon with the active fill colour.
type DrawPolygon struct {
	Polygon domain.Polygon `json:"polygon"`
}

// SetHeading is a rotation from one angle to another, in degrees.
type SetHeading struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

type DrawDot struct {
	Point  domain.Vec   `json:"point"`
	Radius float64      `json:"radius"`
	Color  domain.Color `json:"color"`
}

// EndFill closes a fill region whose Filler marker sits at Index in the
// renderer's command list.
type EndFill struct {
	Index int `json:"index"`
}

// DrawPolyAt is a stamped copy of a shape placed at Pos, rotated by Angle.
type DrawPolyAt struct {
	Polygon domain.Polygon `json:"polygon"`
	Pos     domain.Vec     `json:"pos"`
	Angle   float64        `json:"angle"`
}

// Sample is one recorded pose along a circle.
type Sample struct {
	Angle   float64 `json:"angle"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	PenDown bool    `json:"pen_down"`
}

// Circle is an arc approximated by the straight segments between samples.
type Circle struct {
	Samples []Sample `json:"samples"`
}

// StampTurtle asks the renderer to leave a copy of the turtle shape at the current pose.
type StampTurtle struct{}

// Filler marks where a backfilled polygon will be inserted.
type Filler struct{}

func (Line) drawCommand()         {}
func (SetPenColor) drawCommand()  {}
func (SetPenWidth) drawCommand()  {}
func (SetFillColor) drawCommand() {}
func (DrawPolygon) drawCommand()  {}
func (SetHeading) drawCommand()   {}
func (DrawDot) drawCommand()      {}
func (EndFill) drawCommand()      {}
func (DrawPolyAt) drawCommand()   {}
func (Circle) drawCommand()       {}
func (StampTurtle) drawCommand()  {}
func (Filler) drawCommand()       {}

// IsStamp reports whether cmd is a stamped copy of the turtle shape.
// Stamps are durable canvas objects and are removed differently from strokes.
func IsStamp(cmd Command) bool {
	switch cmd.(type) {
	case StampTurtle, DrawPolyAt:
		return true
	}
	return false
}

// Kind returns a stable snake_case name for logs, metrics and wire encoding.
// A nil command has kind "none".
func Kind(cmd Command) string {
	switch cmd.(type) {
	case nil:
		return "none"
	case Line:
		return "line"
	case SetPenColor:
		return "set_pen_color"
	case SetPenWidth:
		return "set_pen_width"
	case SetFillColor:
		return "set_fill_color"
	case DrawPolygon:
		return "draw_polygon"
	case SetHeading:
		return "set_heading"
	case DrawDot:
		return "draw_dot"
	case EndFill:
		return "end_fill"
	case DrawPolyAt:
		return "draw_poly_at"
	case Circle:
		return "circle"
	case StampTurtle:
		return "stamp_turtle"
	case Filler:
		return "filler"
	}
	return "unknown"
}

// Vertices returns the points a command visits, in order. It is used to build
// fill polygons from the path walked between begin and end of a fill.
func Vertices(cmd Command) []domain.Vec {
	switch c := cmd.(type) {
	case Line:
		return []domain.Vec{
			{X: float64(c.Begin.X), Y: float64(c.Begin.Y)},
			{X: float64(c.End.X), Y: float64(c.End.Y)},
		}
	case Circle:
		out := make([]domain.Vec, len(c.Samples))
		for i, s := range c.Samples {
			out[i] = domain.Vec{X: s.X, Y: s.Y}
		}
		return out
	}
	return nil
}
