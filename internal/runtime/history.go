package runtime

import (
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Entry is one undoable step: the state before the request, the request
// itself, and the command the renderer received for it (nil when nothing was
// drawn).
type Entry struct {
	Pre     domain.TurtleState
	Request domain.DrawRequest
	Command draw.Command

	// fill is the region open before the request and fillLen its vertex
	// count at that point. Regions only grow, so truncating rolls them back.
	fill    *fillRegion
	fillLen int
}

// UndoBuffer is an append-only history of applied requests.
//
// Rolling back restores the stored snapshot instead of inverting the
// transform: Teleport and SetHeading discard the previous pose.
type UndoBuffer struct {
	entries []Entry
}

// Record appends an entry.
func (b *UndoBuffer) Record(pre domain.TurtleState, req domain.DrawRequest, cmd draw.Command) {
	b.push(Entry{Pre: pre, Request: req, Command: cmd})
}

func (b *UndoBuffer) push(entry Entry) {
	b.entries = append(b.entries, entry)
}

// Undo pops the most recent entry and restores state to the snapshot taken
// before it. It reports false, leaving state alone, when the buffer is empty.
func (b *UndoBuffer) Undo(state *domain.TurtleState) (Entry, bool) {
	n := len(b.entries)
	if n == 0 {
		return Entry{}, false
	}
	entry := b.entries[n-1]
	b.entries[n-1] = Entry{}
	b.entries = b.entries[:n-1]
	*state = entry.Pre
	return entry, true
}

// Len returns the number of entries available to undo.
func (b *UndoBuffer) Len() int {
	return len(b.entries)
}

// Truncate drops the oldest entries so that at most max remain, and returns
// how many were dropped. A max below zero is treated as zero.
func (b *UndoBuffer) Truncate(max int) int {
	if max < 0 {
		max = 0
	}
	drop := len(b.entries) - max
	if drop <= 0 {
		return 0
	}
	kept := make([]Entry, max, max+1)
	copy(kept, b.entries[drop:])
	b.entries = kept
	return drop
}

// shouldRecord decides whether an applied request belongs in the history:
// anything that changed the state or reached the renderer, except the
// control requests that never do either in a lasting way.
func shouldRecord(req domain.DrawRequest, pre, post domain.TurtleState, cmd draw.Command) bool {
	switch req.(type) {
	case domain.Undo, domain.Tracer, domain.Shape, domain.Restore:
		return false
	}
	return cmd != nil || pre != post
}
