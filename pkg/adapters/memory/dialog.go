package memory

import (
	"context"
	"sync"

	"github.com/aretw0/tortuga/pkg/domain"
)

// Dialog implements ports.InputDialog with canned answers, consumed in order.
// When the answers run out every prompt is cancelled.
type Dialog struct {
	mu      sync.Mutex
	answers []domain.Response
	prompts []domain.Prompt
}

// NewDialog creates a dialog that replies with answers in order.
func NewDialog(answers ...domain.Response) *Dialog {
	return &Dialog{answers: answers}
}

// Open records the prompt and yields the next answer.
func (d *Dialog) Open(ctx context.Context, prompt domain.Prompt) <-chan domain.Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prompts = append(d.prompts, prompt)
	ch := make(chan domain.Response, 1)
	if len(d.answers) > 0 {
		ch <- d.answers[0]
		d.answers = d.answers[1:]
	}
	close(ch)
	return ch
}

// Prompts returns every prompt opened so far.
func (d *Dialog) Prompts() []domain.Prompt {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]domain.Prompt, len(d.prompts))
	copy(out, d.prompts)
	return out
}
