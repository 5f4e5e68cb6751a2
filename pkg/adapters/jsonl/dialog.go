package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/tortuga/pkg/domain"
)

// Dialog implements ports.InputDialog over the stream: each prompt is an
// event, each answer one line of input.
type Dialog struct {
	reader *bufio.Reader
	stream *Stream
	ids    atomic.Uint64

	lines     chan string
	startOnce sync.Once
	turn      chan struct{}
}

// NewDialog reads answers from r (stdin when nil) and emits prompts onto
// stream.
func NewDialog(r io.Reader, stream *Stream) *Dialog {
	if r == nil {
		r = os.Stdin
	}
	return &Dialog{
		reader: bufio.NewReader(r),
		stream: stream,
		turn:   make(chan struct{}, 1),
	}
}

func (d *Dialog) initPump() {
	d.startOnce.Do(func() {
		d.lines = make(chan string)
		go d.pump()
	})
}

// pump owns the reader. It stops at the first read error; later prompts are
// cancelled.
func (d *Dialog) pump() {
	defer close(d.lines)
	for {
		text, err := d.reader.ReadString('\n')
		if strings.TrimSpace(text) != "" {
			d.lines <- text
		}
		if err != nil {
			return
		}
	}
}

// Open emits the prompt and waits for its answer on a new goroutine.
func (d *Dialog) Open(ctx context.Context, prompt domain.Prompt) <-chan domain.Response {
	d.initPump()
	out := make(chan domain.Response, 1)
	go func() {
		defer close(out)
		select {
		case d.turn <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-d.turn }()

		if resp, ok := d.ask(ctx, prompt); ok {
			out <- resp
		}
	}()
	return out
}

func (d *Dialog) ask(ctx context.Context, prompt domain.Prompt) (domain.Response, bool) {
	id := d.ids.Add(1)
	d.stream.Emit(Event{Event: EventPrompt, TurtleID: prompt.TurtleID, PromptID: id, Prompt: &prompt})

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil, false
		case line, ok = <-d.lines:
		}
		if !ok {
			return nil, false
		}

		resp, err := parseAnswer(prompt.Kind, line)
		if err != nil {
			d.stream.Emit(Event{Event: EventError, TurtleID: prompt.TurtleID, PromptID: id, Message: err.Error()})
			continue
		}
		return resp, true
	}
}

type answer struct {
	Value     any  `json:"value"`
	Cancelled bool `json:"cancelled"`
}

// parseAnswer accepts an answer object, a bare JSON value or raw text.
func parseAnswer(kind domain.PromptKind, line string) (domain.Response, error) {
	line = strings.TrimSpace(line)

	var value any = line
	if strings.HasPrefix(line, "{") {
		var a answer
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			return nil, fmt.Errorf("invalid answer: %w", err)
		}
		if a.Cancelled || a.Value == nil {
			return cancelled(kind), nil
		}
		value = a.Value
	} else {
		var v any
		if err := json.Unmarshal([]byte(line), &v); err == nil {
			if v == nil {
				return cancelled(kind), nil
			}
			value = v
		}
	}

	if kind == domain.PromptText {
		switch v := value.(type) {
		case string:
			return domain.TextValue{Value: v}, nil
		case float64:
			return domain.TextValue{Value: strconv.FormatFloat(v, 'g', -1, 64)}, nil
		}
		return nil, fmt.Errorf("want text, got %T", value)
	}

	switch v := value.(type) {
	case float64:
		return domain.NumberValue{Value: v}, nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		return domain.NumberValue{Value: n}, nil
	}
	return nil, fmt.Errorf("want a number, got %T", value)
}

func cancelled(kind domain.PromptKind) domain.Response {
	if kind == domain.PromptText {
		return domain.TextValue{Cancelled: true}
	}
	return domain.NumberValue{Cancelled: true}
}
