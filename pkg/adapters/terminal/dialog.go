package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/tortuga/pkg/domain"
	"golang.org/x/term"
)

// Dialog implements ports.InputDialog on a line-based reader. An empty
// answer or end of input cancels the prompt. Prompts from several turtles
// are asked one at a time.
type Dialog struct {
	reader      *bufio.Reader
	writer      io.Writer
	interactive bool

	lines     chan inputResult
	startOnce sync.Once
	turn      chan struct{}
}

type inputResult struct {
	text string
	err  error
}

// NewDialog reads answers from r and writes prompts to w, defaulting to
// stdin and stdout.
func NewDialog(r io.Reader, w io.Writer) *Dialog {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Dialog{
		reader:      bufio.NewReader(r),
		writer:      w,
		interactive: isTerminal(r),
		turn:        make(chan struct{}, 1),
	}
}

// isTerminal reports whether r is a TTY. On a terminal, end of input
// (Ctrl+D) only cancels the current prompt; on a pipe it ends all of them.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether the dialog reads from a terminal.
func (d *Dialog) Interactive() bool {
	return d.interactive
}

func (d *Dialog) initPump() {
	d.startOnce.Do(func() {
		d.lines = make(chan inputResult)
		go d.pump()
	})
}

func (d *Dialog) pump() {
	for {
		text, err := d.reader.ReadString('\n')
		if text != "" {
			d.lines <- inputResult{text: text}
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && !d.interactive {
			close(d.lines)
			return
		}
		d.lines <- inputResult{err: err}
		// Holding Ctrl+D or a failing reader must not spin.
		time.Sleep(50 * time.Millisecond)
	}
}

// Open asks the prompt on its own goroutine and returns immediately.
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
	for {
		if ctx.Err() != nil {
			return nil, false
		}
		if prompt.Title != "" {
			fmt.Fprintf(d.writer, "[%s] ", prompt.Title)
		}
		fmt.Fprintf(d.writer, "%s > ", prompt.Text)

		var res inputResult
		var ok bool
		select {
		case <-ctx.Done():
			return nil, false
		case res, ok = <-d.lines:
		}
		if !ok || res.err != nil {
			fmt.Fprintln(d.writer)
			return nil, false
		}

		text, err := SanitizeInput(strings.TrimSpace(res.text))
		if err != nil {
			fmt.Fprintf(d.writer, "Error: %v. Please try again.\n", err)
			continue
		}
		if text == "" {
			return nil, false
		}

		if prompt.Kind == domain.PromptText {
			return domain.TextValue{Value: text}, true
		}
		n, err := strconv.ParseFloat(text, 64)
		if err != nil {
			fmt.Fprintf(d.writer, "Error: %q is not a number. Please try again.\n", text)
			continue
		}
		return domain.NumberValue{Value: n}, true
	}
}
