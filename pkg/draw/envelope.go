package draw

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of a Command: {"kind": "...", "data": {...}}.
type Envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Wrap converts a command into its wire envelope.
func Wrap(cmd Command) (Envelope, error) {
	env := Envelope{Kind: Kind(cmd)}
	if cmd == nil {
		return env, nil
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode %s: %w", env.Kind, err)
	}
	env.Data = data
	return env, nil
}

// Unwrap decodes an envelope back into a typed command.
func Unwrap(env Envelope) (Command, error) {
	var target Command
	switch env.Kind {
	case "none":
		return nil, nil
	case "line":
		target = &Line{}
	case "set_pen_color":
		target = &SetPenColor{}
	case "set_pen_width":
		target = &SetPenWidth{}
	case "set_fill_color":
		target = &SetFillColor{}
	case "draw_polygon":
		target = &DrawPolygon{}
	case "set_heading":
		target = &SetHeading{}
	case "draw_dot":
		target = &DrawDot{}
	case "end_fill":
		target = &EndFill{}
	case "draw_poly_at":
		target = &DrawPolyAt{}
	case "circle":
		target = &Circle{}
	case "stamp_turtle":
		return StampTurtle{}, nil
	case "filler":
		return Filler{}, nil
	default:
		return nil, fmt.Errorf("unknown draw command kind %q", env.Kind)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", env.Kind, err)
		}
	}
	return deref(target), nil
}

func deref(c Command) Command {
	switch v := c.(type) {
	case *Line:
		return *v
	case *SetPenColor:
		return *v
	case *SetPenWidth:
		return *v
	case *SetFillColor:
		return *v
	case *DrawPolygon:
		return *v
	case *SetHeading:
		return *v
	case *DrawDot:
		return *v
	case *EndFill:
		return *v
	case *DrawPolyAt:
		return *v
	case *Circle:
		return *v
	}
	return c
}
