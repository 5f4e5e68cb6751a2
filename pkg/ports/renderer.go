package ports

import (
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Renderer consumes the draw command stream of every turtle.
// All methods are called from the engine goroutine.
type Renderer interface {
	// NewTurtle announces a turtle before any of its commands.
	NewTurtle(turtleID uint64)

	// CurrentCommand shows a command that is still animating, at progress in
	// [0,1]. Undo animations run progress back towards 0. A nil cmd clears it.
	CurrentCommand(turtleID uint64, cmd draw.Command, progress float64)

	// AppendCommand adds a finished command to the turtle's drawing.
	AppendCommand(turtleID uint64, cmd draw.Command)

	// Position returns the index the next appended command will occupy.
	// It is used to remember where a backfilled polygon belongs.
	Position(turtleID uint64) int

	// FillPolygon inserts a filled polygon at the Filler marker found at index.
	FillPolygon(turtleID uint64, cmd draw.DrawPolygon, index int)

	// Undo retracts the most recent artifact, which was produced by cmd.
	// Renderers use draw.IsStamp to tell stamps from strokes.
	Undo(turtleID uint64, cmd draw.Command)

	// Screen applies a window-level operation.
	Screen(turtleID uint64, op domain.ScreenOp)
}
