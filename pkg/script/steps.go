package script

import (
	"fmt"

	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/turtle"
	"github.com/mitchellh/mapstructure"
)

type builder func(arg any) (func(*turtle.Turtle), error)

var builders = map[string]builder{
	"forward":    number((*turtle.Turtle).Forward),
	"fd":         number((*turtle.Turtle).Forward),
	"backward":   number((*turtle.Turtle).Backward),
	"back":       number((*turtle.Turtle).Backward),
	"right":      number((*turtle.Turtle).Right),
	"rt":         number((*turtle.Turtle).Right),
	"left":       number((*turtle.Turtle).Left),
	"lt":         number((*turtle.Turtle).Left),
	"setheading": number((*turtle.Turtle).SetHeading),
	"seth":       number((*turtle.Turtle).SetHeading),
	"setx":       number((*turtle.Turtle).SetX),
	"sety":       number((*turtle.Turtle).SetY),
	"penwidth":   number((*turtle.Turtle).PenWidth),
	"teleport":   point((*turtle.Turtle).Teleport),
	"goto":       point((*turtle.Turtle).GoTo),
	"circle":     buildCircle,
	"penup":      bare((*turtle.Turtle).PenUp),
	"pu":         bare((*turtle.Turtle).PenUp),
	"pendown":    bare((*turtle.Turtle).PenDown),
	"pd":         bare((*turtle.Turtle).PenDown),
	"stamp":      bare((*turtle.Turtle).Stamp),
	"begin_fill": bare((*turtle.Turtle).BeginFill),
	"end_fill":   bare((*turtle.Turtle).EndFill),
	"clear":      bare((*turtle.Turtle).ClearScreen),
	"bye":        bare((*turtle.Turtle).Bye),
	"pencolor":   color((*turtle.Turtle).PenColor),
	"fillcolor":  color((*turtle.Turtle).FillColor),
	"background": color((*turtle.Turtle).Background),
	"dot":        buildDot,
	"speed":      buildSpeed,
	"undo":       buildUndo,
	"title":      buildTitle,
	"shape":      buildShape,
}

// decode maps a loosely typed YAML value onto out.
func decode(arg any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(arg)
}

func number(call func(*turtle.Turtle, float64)) builder {
	return func(arg any) (func(*turtle.Turtle), error) {
		if arg == nil {
			return nil, fmt.Errorf("missing number")
		}
		var n float64
		if err := decode(arg, &n); err != nil {
			return nil, err
		}
		return func(t *turtle.Turtle) { call(t, n) }, nil
	}
}

type pointArgs struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

func point(call func(*turtle.Turtle, float64, float64)) builder {
	return func(arg any) (func(*turtle.Turtle), error) {
		var p pointArgs
		if list, ok := arg.([]any); ok {
			var xy []float64
			if err := decode(list, &xy); err != nil {
				return nil, err
			}
			if len(xy) != 2 {
				return nil, fmt.Errorf("want [x, y], got %d values", len(xy))
			}
			p = pointArgs{X: xy[0], Y: xy[1]}
		} else if err := decode(arg, &p); err != nil {
			return nil, err
		}
		return func(t *turtle.Turtle) { call(t, p.X, p.Y) }, nil
	}
}

func bare(call func(*turtle.Turtle)) builder {
	return func(arg any) (func(*turtle.Turtle), error) {
		if arg != nil {
			return nil, fmt.Errorf("takes no argument")
		}
		return call, nil
	}
}

// color resolves the colour while compiling, so a malformed hex string fails
// the whole script before anything is drawn.
func color(call func(*turtle.Turtle, any)) builder {
	return func(arg any) (func(*turtle.Turtle), error) {
		c, err := colors.FromAny(arg)
		if err != nil {
			return nil, err
		}
		return func(t *turtle.Turtle) { call(t, c) }, nil
	}
}

type circleArgs struct {
	Radius float64  `mapstructure:"radius"`
	Extent *float64 `mapstructure:"extent"`
	Steps  int      `mapstructure:"steps"`
}

func buildCircle(arg any) (func(*turtle.Turtle), error) {
	var c circleArgs
	if _, ok := arg.(map[string]any); ok {
		if err := decode(arg, &c); err != nil {
			return nil, err
		}
	} else if err := decode(arg, &c.Radius); err != nil {
		return nil, err
	}

	extent := 360.0
	if c.Extent != nil {
		extent = *c.Extent
	}
	if c.Steps < 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSteps, c.Steps)
	}
	return func(t *turtle.Turtle) {
		if c.Steps > 0 {
			t.CircleSteps(c.Radius, extent, c.Steps)
			return
		}
		t.Arc(c.Radius, extent)
	}, nil
}

type dotArgs struct {
	Size  *float64 `mapstructure:"size"`
	Color any      `mapstructure:"color"`
}

func buildDot(arg any) (func(*turtle.Turtle), error) {
	var d dotArgs
	if _, ok := arg.(map[string]any); ok {
		if err := decode(arg, &d); err != nil {
			return nil, err
		}
	} else {
		d.Color = arg
	}

	c, err := colors.FromAny(d.Color)
	if err != nil {
		return nil, err
	}
	return func(t *turtle.Turtle) {
		if d.Size != nil {
			t.DotSize(*d.Size, c)
			return
		}
		t.Dot(c)
	}, nil
}

func buildSpeed(arg any) (func(*turtle.Turtle), error) {
	var speed int
	if err := decode(arg, &speed); err != nil {
		return nil, err
	}
	return func(t *turtle.Turtle) { t.Speed(speed) }, nil
}

// buildUndo accepts a bare "undo" or a count.
func buildUndo(arg any) (func(*turtle.Turtle), error) {
	times := 1
	if arg != nil {
		if err := decode(arg, &times); err != nil {
			return nil, err
		}
	}
	return func(t *turtle.Turtle) {
		for range times {
			t.Undo()
		}
	}, nil
}

func buildTitle(arg any) (func(*turtle.Turtle), error) {
	var text string
	if err := decode(arg, &text); err != nil {
		return nil, err
	}
	return func(t *turtle.Turtle) { t.Title(text) }, nil
}

// buildShape takes a list of [x, y] points, or nothing to go back to the
// default turtle.
func buildShape(arg any) (func(*turtle.Turtle), error) {
	var points [][]float64
	if arg != nil {
		if err := decode(arg, &points); err != nil {
			return nil, err
		}
	}
	polygon := make(domain.Polygon, 0, len(points))
	for i, p := range points {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d: want [x, y], got %d values", i, len(p))
		}
		polygon = append(polygon, domain.Vec{X: p[0], Y: p[1]})
	}
	return func(t *turtle.Turtle) { t.Shape(polygon) }, nil
}

type repeatArgs struct {
	Times int   `mapstructure:"times"`
	Steps []any `mapstructure:"steps"`
}

func (c *compiler) compileRepeat(arg any, where string) (func(*turtle.Turtle), error) {
	var r repeatArgs
	if err := decode(arg, &r); err != nil {
		return nil, err
	}
	if r.Times < 0 {
		return nil, fmt.Errorf("negative repeat count %d", r.Times)
	}
	body, err := c.compile(r.Steps, where+".steps")
	if err != nil {
		return nil, err
	}
	return func(t *turtle.Turtle) {
		for range r.Times {
			playAll(t, body)
		}
	}, nil
}
