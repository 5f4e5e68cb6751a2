package jsonl

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
)

// Event kinds.
const (
	EventTurtle   = "turtle"
	EventProgress = "progress"
	EventAppend   = "append"
	EventFill     = "fill"
	EventUndo     = "undo"
	EventScreen   = "screen"
	EventPrompt   = "prompt"
	EventError    = "error"
)

// Event is one line of the stream.
type Event struct {
	Event    string         `json:"event"`
	TurtleID uint64         `json:"turtle_id"`
	Index    *int           `json:"index,omitempty"`
	Progress *float64       `json:"progress,omitempty"`
	Command  *draw.Envelope `json:"command,omitempty"`
	Screen   *ScreenOp      `json:"screen,omitempty"`
	PromptID uint64         `json:"prompt_id,omitempty"`
	Prompt   *domain.Prompt `json:"prompt,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// ScreenOp is the wire form of a domain.ScreenOp.
type ScreenOp struct {
	Op    string        `json:"op"`
	Text  string        `json:"text,omitempty"`
	Color *domain.Color `json:"color,omitempty"`
}

func screenOp(op domain.ScreenOp) *ScreenOp {
	switch o := op.(type) {
	case domain.ClearScreen:
		return &ScreenOp{Op: "clear"}
	case domain.Background:
		return &ScreenOp{Op: "background", Color: &o.Color}
	case domain.Title:
		return &ScreenOp{Op: "title", Text: o.Text}
	case domain.Bye:
		return &ScreenOp{Op: "bye"}
	}
	return &ScreenOp{Op: "unknown"}
}

// Stream serialises events from the renderer and the dialog onto one writer,
// one JSON document per line.
type Stream struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

// NewStream writes to w, stdout when nil.
func NewStream(w io.Writer) *Stream {
	if w == nil {
		w = os.Stdout
	}
	return &Stream{enc: json.NewEncoder(w)}
}

// Emit writes one event. After the first write error every later event is
// dropped; Err reports it.
func (s *Stream) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	s.err = s.enc.Encode(ev)
}

// Err returns the first write error.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
