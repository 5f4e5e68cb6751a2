package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/muesli/termenv"
)

// Renderer implements ports.Renderer on top of a memory.Canvas, echoing every
// finished command to a terminal.
type Renderer struct {
	*memory.Canvas

	mu       sync.Mutex
	out      *termenv.Output
	pens     map[uint64]domain.Color
	progress bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProfile forces a colour profile, e.g. termenv.Ascii for plain logs.
func WithProfile(p termenv.Profile) Option {
	return func(r *Renderer) {
		r.out = termenv.NewOutput(r.out.Writer(), termenv.WithProfile(p))
	}
}

// WithProgress also prints animation frames of in-flight commands.
func WithProgress(enabled bool) Option {
	return func(r *Renderer) {
		r.progress = enabled
	}
}

// NewRenderer writes to w, stdout when nil. The colour profile is detected
// from w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	r := &Renderer{
		Canvas: memory.NewCanvas(),
		out:    termenv.NewOutput(w),
		pens:   make(map[uint64]domain.Color),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) printf(id uint64, color domain.Color, faint bool, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label := r.out.String(fmt.Sprintf("#%d", id)).Bold()
	text := r.out.String(fmt.Sprintf(format, args...))
	if !color.IsCurrent() {
		text = text.Foreground(r.out.Color(color.Hex()))
	}
	if faint {
		text = text.Faint()
	}
	fmt.Fprintf(r.out, "%s %s\n", label, text)
}

func (r *Renderer) pen(id uint64) domain.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.pens[id]; ok {
		return c
	}
	return domain.Black
}

// NewTurtle announces a turtle.
func (r *Renderer) NewTurtle(id uint64) {
	r.Canvas.NewTurtle(id)
	r.printf(id, domain.CurrentColor, true, "hatched")
}

// CurrentCommand tracks the in-flight command and prints it when progress
// output is enabled.
func (r *Renderer) CurrentCommand(id uint64, cmd draw.Command, progress float64) {
	r.Canvas.CurrentCommand(id, cmd, progress)
	if r.progress && cmd != nil {
		r.printf(id, r.pen(id), true, "%s %3.0f%%", Describe(cmd), progress*100)
	}
}

// AppendCommand records and prints a finished command.
func (r *Renderer) AppendCommand(id uint64, cmd draw.Command) {
	r.Canvas.AppendCommand(id, cmd)
	if c, ok := cmd.(draw.SetPenColor); ok {
		r.mu.Lock()
		r.pens[id] = c.Color.Or(domain.Black)
		r.mu.Unlock()
	}

	faint := false
	if line, ok := cmd.(draw.Line); ok && !line.PenDown {
		faint = true
	}
	r.printf(id, r.pen(id), faint, "%s", Describe(cmd))
}

// FillPolygon records the backfill and prints it.
func (r *Renderer) FillPolygon(id uint64, cmd draw.DrawPolygon, index int) {
	r.Canvas.FillPolygon(id, cmd, index)
	r.printf(id, r.pen(id), false, "fill %d vertices at %d", len(cmd.Polygon), index)
}

// Undo retracts and prints the undone command.
func (r *Renderer) Undo(id uint64, cmd draw.Command) {
	r.Canvas.Undo(id, cmd)
	r.printf(id, domain.CurrentColor, true, "undo %s", Describe(cmd))
}

// Screen applies a window-level operation. Titles also set the terminal
// window title.
func (r *Renderer) Screen(id uint64, op domain.ScreenOp) {
	r.Canvas.Screen(id, op)

	switch o := op.(type) {
	case domain.ClearScreen:
		r.printf(id, domain.CurrentColor, false, "clear screen")
	case domain.Background:
		r.printf(id, o.Color, false, "background %s", o.Color.Hex())
	case domain.Title:
		r.mu.Lock()
		if r.out.Profile != termenv.Ascii {
			r.out.SetWindowTitle(o.Text)
		}
		r.mu.Unlock()
		r.printf(id, domain.CurrentColor, false, "title %q", o.Text)
	case domain.Bye:
		r.printf(id, domain.CurrentColor, false, "bye")
	}
}

// Describe renders a draw command as one short line of text.
func Describe(cmd draw.Command) string {
	switch c := cmd.(type) {
	case nil:
		return "idle"
	case draw.Line:
		verb := "line"
		if !c.PenDown {
			verb = "jump"
		}
		return fmt.Sprintf("%s (%d,%d) -> (%d,%d)", verb, c.Begin.X, c.Begin.Y, c.End.X, c.End.Y)
	case draw.SetPenColor:
		return "pen color " + c.Color.Hex()
	case draw.SetPenWidth:
		return fmt.Sprintf("pen width %g", c.Width)
	case draw.SetFillColor:
		return "fill color " + c.Color.Hex()
	case draw.DrawPolygon:
		return fmt.Sprintf("polygon %d vertices", len(c.Polygon))
	case draw.SetHeading:
		return fmt.Sprintf("turn %g -> %g", c.From, c.To)
	case draw.DrawDot:
		return fmt.Sprintf("dot r=%g at (%.1f,%.1f) %s", c.Radius, c.Point.X, c.Point.Y, c.Color.Hex())
	case draw.EndFill:
		return fmt.Sprintf("end fill at %d", c.Index)
	case draw.DrawPolyAt:
		return fmt.Sprintf("stamp at (%.1f,%.1f)", c.Pos.X, c.Pos.Y)
	case draw.Circle:
		if len(c.Samples) == 0 {
			return "circle"
		}
		first, last := c.Samples[0], c.Samples[len(c.Samples)-1]
		return fmt.Sprintf("circle %d segments (%.1f,%.1f) -> (%.1f,%.1f)", len(c.Samples)-1, first.X, first.Y, last.X, last.Y)
	case draw.StampTurtle:
		return "stamp"
	case draw.Filler:
		return "begin fill"
	}
	return strings.ReplaceAll(draw.Kind(cmd), "_", " ")
}
