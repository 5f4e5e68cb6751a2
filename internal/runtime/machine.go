package runtime

import (
	"fmt"
	"math"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Apply runs one draw request against state, mutating it in place, and
// returns the resulting draw command. A nil command means nothing renderable
// happened. On error the state is left untouched.
//
// Undo is not handled here: rolling back needs the history, which the engine
// owns (see UndoBuffer).
func Apply(state *domain.TurtleState, req domain.DrawRequest) (draw.Command, error) {
	switch r := req.(type) {
	case domain.Forward:
		begin := state.Point()
		state.Transform = state.Transform.Trans(r.Dist, 0)
		return draw.Line{Begin: begin, End: state.Point(), PenDown: state.PenDown}, nil

	case domain.Teleport:
		begin := state.Point()
		state.Transform = poseAt(r.X, r.Y, state.Angle)
		// A teleport is a jump, reported as not drawn whatever the pen says.
		return draw.Line{Begin: begin, End: state.Point(), PenDown: false}, nil

	case domain.GoTo:
		return moveTo(state, r.X, r.Y), nil

	case domain.SetX:
		return moveTo(state, r.X, state.Transform[1][2]), nil

	case domain.SetY:
		return moveTo(state, state.Transform[0][2], r.Y), nil

	case domain.Right:
		return rotate(state, r.Deg), nil

	case domain.Left:
		return rotate(state, -r.Deg), nil

	case domain.SetHeading:
		from := state.Angle
		h := 180 - r.Heading
		state.Transform = state.Transform.RotDeg(h - state.Angle + 90)
		state.Angle = h + 90
		return draw.SetHeading{From: from, To: state.Angle}, nil

	case domain.Circle:
		return circle(state, r)

	case domain.Undo, domain.Tracer, domain.Shape:
		return nil, nil

	case domain.Restore:
		*state = r.State
		return nil, nil

	case domain.PenDown:
		state.PenDown = true
		return nil, nil

	case domain.PenUp:
		state.PenDown = false
		return nil, nil

	case domain.BackfillPolygon:
		return draw.Filler{}, nil

	case domain.PenColor:
		return draw.SetPenColor{Color: r.Color}, nil

	case domain.FillColor:
		state.FillColor = r.Color
		return draw.SetFillColor{Color: r.Color}, nil

	case domain.PenWidth:
		state.PenWidth = r.Width
		return draw.SetPenWidth{Width: r.Width / 2}, nil

	case domain.Dot:
		size := state.PenWidth
		if r.Size != nil {
			size = *r.Size
		}
		return draw.DrawDot{
			Point:  state.Pos(),
			Radius: size,
			Color:  r.Color.Or(state.FillColor),
		}, nil

	case domain.Stamp:
		return draw.StampTurtle{}, nil

	case domain.Fill:
		return draw.DrawPolygon{Polygon: r.Polygon}, nil
	}
	return nil, fmt.Errorf("unsupported draw request %T", req)
}

// poseAt builds the transform of a turtle standing at (x, y) facing angle.
func poseAt(x, y, angle float64) domain.Transform {
	return domain.Identity().Trans(x, y).RotDeg(angle)
}

func moveTo(state *domain.TurtleState, x, y float64) draw.Command {
	begin := state.Point()
	state.Transform = poseAt(x, y, state.Angle)
	return draw.Line{Begin: begin, End: state.Point(), PenDown: state.PenDown}
}

func rotate(state *domain.TurtleState, deg float64) draw.Command {
	from := state.Angle
	state.Transform = state.Transform.RotDeg(deg)
	state.Angle += deg
	return draw.SetHeading{From: from, To: state.Angle}
}

// circle walks a regular polygon of r.Steps chords. The first chord starts
// half a step into the turn and the last ends half a step short, so the net
// rotation is exactly sign*extent and every chord has the same length.
func circle(state *domain.TurtleState, r domain.Circle) (draw.Command, error) {
	if r.Steps < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSteps, r.Steps)
	}

	// A zero radius counts as positive: the turtle turns on the spot.
	sign := -math.Copysign(1, r.Radius)
	theta := sign * r.Extent / float64(r.Steps)
	length := 2 * math.Abs(r.Radius) * math.Sin(theta*math.Pi/180/2)

	turn := func(deg float64) {
		state.Transform = state.Transform.RotDeg(deg)
		state.Angle += deg
	}
	sample := func() draw.Sample {
		pos := state.Pos()
		return draw.Sample{Angle: state.Angle, X: pos.X, Y: pos.Y, PenDown: state.PenDown}
	}

	samples := make([]draw.Sample, 0, r.Steps+1)
	turn(theta / 2)
	samples = append(samples, sample())
	for i := 0; i < r.Steps; i++ {
		if i > 0 {
			turn(theta)
		}
		state.Transform = state.Transform.Trans(length, 0)
		samples = append(samples, sample())
	}
	turn(theta / 2)

	return draw.Circle{Samples: samples}, nil
}
