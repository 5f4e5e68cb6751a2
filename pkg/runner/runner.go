package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/pkg/script"
	"github.com/aretw0/tortuga/pkg/turtle"
	"golang.org/x/sync/errgroup"
)

// Program is a named turtle script. Play aborts through the turtle handle on
// failure, like any script.
type Program struct {
	Name string
	Play func(t *turtle.Turtle)
}

// FromScript adapts a decoded script file.
func FromScript(s *script.Script) Program {
	return Program{Name: s.Title, Play: s.Play}
}

// Result describes how one program ended.
type Result struct {
	Name     string        `json:"name"`
	TurtleID uint64        `json:"turtle_id"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Report is the outcome of a run, one Result per program in input order.
type Report struct {
	Results     []Result      `json:"results"`
	Duration    time.Duration `json:"duration"`
	Interrupted bool          `json:"interrupted"`
}

// Failed returns the results whose program did not finish.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Runner runs programs against an engine: the engine loop plus one goroutine
// per program, each on its own turtle.
type Runner struct {
	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// HandleSignals makes Ctrl+C stop the engine and abort every program.
	HandleSignals bool

	// KeepOpen leaves the engine running after the last program finishes,
	// until a program says Bye or the context ends, like a window that stays
	// on screen.
	KeepOpen bool
}

// NewRunner creates a runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the engine, plays every program on a fresh turtle and waits for
// all of them. It returns the first program error, wrapped with the program
// name; a program cut short by the engine going away reports
// domain.ErrEngineGone.
func (r *Runner) Run(ctx context.Context, eng *tortuga.Engine, programs ...Program) (*Report, error) {
	start := time.Now()
	report := &Report{Results: make([]Result, len(programs))}

	if r.HandleSignals {
		signals := NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
		defer func() { report.Interrupted = signals.Interrupted() }()
	}

	turtles := make([]*turtle.Turtle, len(programs))
	for i := range programs {
		turtles[i] = eng.NewTurtle()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := eng.Run(gctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("engine: %w", err)
		}
		return nil
	})

	var scripts sync.WaitGroup
	for i, p := range programs {
		scripts.Add(1)
		g.Go(func() error {
			defer scripts.Done()
			t := turtles[i]
			defer t.Close()

			began := time.Now()
			r.Logger.Info("program started", "program", p.Name, "turtle_id", t.ID())
			err := turtle.Guard(func() { p.Play(t) })
			report.Results[i] = Result{Name: p.Name, TurtleID: t.ID(), Duration: time.Since(began), Err: err}

			if err != nil {
				r.Logger.Warn("program aborted", "program", p.Name, "turtle_id", t.ID(), "err", err)
				return fmt.Errorf("program %q: %w", p.Name, err)
			}
			r.Logger.Info("program finished", "program", p.Name, "turtle_id", t.ID(), "duration", time.Since(began))
			return nil
		})
	}

	go func() {
		scripts.Wait()
		if !r.KeepOpen {
			eng.Stop()
		}
	}()

	err := g.Wait()
	report.Duration = time.Since(start)
	if ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, err
}
