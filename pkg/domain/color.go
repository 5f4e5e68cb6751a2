package domain

import (
	"encoding/json"
	"fmt"
)

// Color is either a resolved RGB triple with channels in [0,1] or the
// CurrentColor sentinel, meaning "use whatever colour the caller has active".
type Color struct {
	R, G, B float32
	current bool
}

// CurrentColor is the unresolved sentinel.
var CurrentColor = Color{current: true}

// Black is the default fill colour of a new turtle.
var Black = RGB(0, 0, 0)

// RGB builds a resolved colour. Channels are not validated here.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// IsCurrent reports whether c is the CurrentColor sentinel.
func (c Color) IsCurrent() bool {
	return c.current
}

// Or returns fallback when c is the CurrentColor sentinel, c otherwise.
func (c Color) Or(fallback Color) Color {
	if c.current {
		return fallback
	}
	return c
}

// Hex formats a resolved colour as #rrggbb. CurrentColor formats as "current".
func (c Color) Hex() string {
	if c.current {
		return "current"
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func (c Color) String() string {
	return c.Hex()
}

func channel(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// MarshalJSON encodes a colour as its 0-1 channel triple [r,g,b], which
// round-trips exactly, or as the string "current". Hex is for display only.
func (c Color) MarshalJSON() ([]byte, error) {
	if c.current {
		return json.Marshal("current")
	}
	return json.Marshal([3]float32{c.R, c.G, c.B})
}

// UnmarshalJSON accepts the forms produced by MarshalJSON.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "current" {
			return fmt.Errorf("unexpected colour string %q", s)
		}
		*c = CurrentColor
		return nil
	}
	var rgb [3]float32
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("failed to decode colour: %w", err)
	}
	*c = RGB(rgb[0], rgb[1], rgb[2])
	return nil
}
