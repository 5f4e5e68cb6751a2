package ports

import (
	"context"

	"github.com/aretw0/tortuga/pkg/domain"
)

// InputDialog collects values from a human.
//
// Open must not block. The returned channel yields exactly one
// domain.NumberValue or domain.TextValue (possibly Cancelled) and may then be
// closed. A channel closed without a value counts as a cancellation.
type InputDialog interface {
	Open(ctx context.Context, prompt domain.Prompt) <-chan domain.Response
}
