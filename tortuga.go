package tortuga

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/internal/runtime"
	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/ports"
	"github.com/aretw0/tortuga/pkg/turtle"
)

// Engine is the high-level entry point for the tortuga library.
// It wraps the internal runtime and hands out turtles to scripts.
type Engine struct {
	runtime     *runtime.Engine
	renderer    ports.Renderer
	dialog      ports.InputDialog
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	config      Config
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithConfig applies window and engine settings.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithRenderer sets the renderer that receives draw commands.
func WithRenderer(r ports.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithInputDialog sets the collaborator that answers NumInput and TextInput.
// Without one every prompt is cancelled.
func WithInputDialog(d ports.InputDialog) Option {
	return func(e *Engine) {
		e.dialog = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFrameRate overrides the tick interval derived from Config.FPS.
func WithFrameRate(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithFrameRate(d))
	}
}

// New initializes a new Engine. It starts with no turtles.
func New(opts ...Option) *Engine {
	eng := &Engine{config: DefaultConfig()}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.config.Title != "" {
		eng.logger = eng.logger.With("canvas", eng.config.Title)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithFrameRate(eng.config.FrameRate()),
		runtime.WithUndoLimit(eng.config.UndoLimit),
		runtime.WithInputDialog(eng.dialog),
	}
	if eng.renderer != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRenderer(eng.renderer))
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(runtimeOpts...)
	return eng
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// NewTurtle registers a turtle at the origin and returns its handle.
// The handle's Hatch creates siblings on this engine.
func (e *Engine) NewTurtle() *turtle.Turtle {
	return turtle.New(e.connect(), turtle.WithHatchery(e.connect))
}

func (e *Engine) connect() turtle.Conn {
	ch := e.runtime.NewTurtle()
	return turtle.Conn{
		TurtleID:  ch.TurtleID,
		Requests:  ch.Requests,
		Responses: ch.Responses,
		Done:      ch.Done,
	}
}

// Run drives the engine until ctx is cancelled, Stop is called, or a script
// says Bye. Turtles still waiting on the engine when it returns abort with
// domain.ErrEngineGone.
func (e *Engine) Run(ctx context.Context) error {
	if e.renderer != nil {
		if e.config.Title != "" {
			e.renderer.Screen(0, domain.Title{Text: e.config.Title})
		}
		if e.config.Background != "" {
			if bg, err := colors.Parse(e.config.Background); err != nil {
				e.logger.Warn("ignoring background", "err", err)
			} else {
				e.renderer.Screen(0, domain.Background{Color: bg})
			}
		}
	}
	return e.runtime.Run(ctx)
}

// Stop asks Run to return. Safe from any goroutine.
func (e *Engine) Stop() {
	e.runtime.Stop()
}

// Done is closed once the engine has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.runtime.Done()
}
