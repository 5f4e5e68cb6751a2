package memory

import (
	"slices"
	"sync"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Drawing is the command list of one turtle as a canvas would paint it.
type Drawing struct {
	Commands []draw.Command
	// Current is the command still animating, nil when idle.
	Current  draw.Command
	Progress float64
}

// Canvas implements ports.Renderer by keeping every turtle's drawing in
// memory. It is the headless renderer used by tests and by remote sessions.
// Safe for concurrent use: the engine writes while readers take snapshots.
type Canvas struct {
	mu         sync.RWMutex
	drawings   map[uint64]*Drawing
	order      []uint64
	title      string
	background domain.Color
	closed     bool
}

// NewCanvas creates an empty canvas with a white background.
func NewCanvas() *Canvas {
	return &Canvas{
		drawings:   make(map[uint64]*Drawing),
		background: domain.RGB(1, 1, 1),
	}
}

func (c *Canvas) drawing(id uint64) *Drawing {
	d, ok := c.drawings[id]
	if !ok {
		d = &Drawing{}
		c.drawings[id] = d
		c.order = append(c.order, id)
	}
	return d
}

// NewTurtle announces a turtle.
func (c *Canvas) NewTurtle(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawing(id)
}

// CurrentCommand records the in-flight command.
func (c *Canvas) CurrentCommand(id uint64, cmd draw.Command, progress float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drawing(id)
	d.Current = cmd
	d.Progress = progress
}

// AppendCommand adds a finished command.
func (c *Canvas) AppendCommand(id uint64, cmd draw.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drawing(id)
	d.Commands = append(d.Commands, cmd)
}

// Position returns the index the next command will occupy.
func (c *Canvas) Position(id uint64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.drawings[id]; ok {
		return len(d.Commands)
	}
	return 0
}

// FillPolygon replaces the Filler marker at index with the polygon, so the
// fill sits underneath every stroke drawn after the marker.
func (c *Canvas) FillPolygon(id uint64, cmd draw.DrawPolygon, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drawing(id)
	if index < 0 || index >= len(d.Commands) {
		d.Commands = append(d.Commands, cmd)
		return
	}
	d.Commands[index] = cmd
}

// Undo retracts the artifact produced by cmd. An EndFill puts its Filler
// marker back; stamps remove the most recent stamp; anything else removes
// the most recent command.
func (c *Canvas) Undo(id uint64, cmd draw.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.drawing(id)

	if end, ok := cmd.(draw.EndFill); ok {
		if end.Index >= 0 && end.Index < len(d.Commands) {
			d.Commands[end.Index] = draw.Filler{}
		}
		return
	}

	last := len(d.Commands) - 1
	if draw.IsStamp(cmd) {
		for last >= 0 && !draw.IsStamp(d.Commands[last]) {
			last--
		}
	}
	if last < 0 {
		return
	}
	d.Commands = slices.Delete(d.Commands, last, last+1)
}

// Screen applies a window-level operation.
func (c *Canvas) Screen(id uint64, op domain.ScreenOp) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch o := op.(type) {
	case domain.ClearScreen:
		for _, d := range c.drawings {
			d.Commands = nil
			d.Current = nil
			d.Progress = 0
		}
	case domain.Background:
		c.background = o.Color.Or(c.background)
	case domain.Title:
		c.title = o.Text
	case domain.Bye:
		c.closed = true
	}
}

// Drawing returns a copy of the turtle's drawing.
func (c *Canvas) Drawing(id uint64) Drawing {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.drawings[id]
	if !ok {
		return Drawing{}
	}
	return Drawing{
		Commands: slices.Clone(d.Commands),
		Current:  d.Current,
		Progress: d.Progress,
	}
}

// Turtles returns the announced turtle IDs in announcement order.
func (c *Canvas) Turtles() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Title returns the window title set by the last Title operation.
func (c *Canvas) Title() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.title
}

// Background returns the background colour.
func (c *Canvas) Background() domain.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.background
}

// Closed reports whether a script said Bye.
func (c *Canvas) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
