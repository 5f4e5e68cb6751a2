package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/aretw0/tortuga/pkg/ports"
)

const (
	// DefaultFrameRate is the tick interval of the engine loop (60 FPS).
	DefaultFrameRate = 16667 * time.Microsecond

	// MaxSpeed is the fastest animated speed. Speed 0 disables animation.
	MaxSpeed = 10

	// progressPerSpeed is the fraction of a command completed per second at
	// speed 1; speed 10 finishes a command in a thirtieth of a second.
	progressPerSpeed = 3.0
)

// Channels is the script side of a turtle's request/response pair.
type Channels struct {
	TurtleID  uint64
	Requests  chan<- domain.Request
	Responses <-chan domain.Response
	// Done is closed when the engine stops.
	Done <-chan struct{}
}

// Engine is the engine context. It owns every TurtleState and is driven by a
// single goroutine, either Run or a caller invoking Tick directly.
type Engine struct {
	renderer  ports.Renderer
	dialog    ports.InputDialog
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	frameRate time.Duration
	undoLimit int

	// mu guards registration only; turtle state belongs to the engine goroutine.
	mu      sync.Mutex
	nextID  uint64
	joining []*turtle

	turtles []*turtle
	quit    chan struct{}
	stop    sync.Once
	done    chan struct{}
	closed  bool
}

type turtle struct {
	id        uint64
	requests  chan domain.Request
	responses chan domain.Response

	state   domain.TurtleState
	history UndoBuffer
	speed   int
	shape   domain.Polygon
	fill    *fillRegion
	pending *work
	gone    bool
}

// work is a request whose response is not due yet: an animation still
// running, or a prompt waiting for a human.
type work struct {
	req     domain.DrawRequest
	cmd     draw.Command
	started time.Time

	// animation
	progress float64
	reverse  bool
	finish   func()

	// prompt
	prompt <-chan domain.Response
	kind   domain.PromptKind
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithRenderer sets the renderer that receives draw commands.
func WithRenderer(r ports.Renderer) EngineOption {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithInputDialog sets the collaborator answering number and text prompts.
func WithInputDialog(d ports.InputDialog) EngineOption {
	return func(e *Engine) {
		e.dialog = d
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithFrameRate sets the tick interval used by Run.
func WithFrameRate(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.frameRate = d
		}
	}
}

// WithUndoLimit caps every turtle's history; 0 means unbounded.
func WithUndoLimit(n int) EngineOption {
	return func(e *Engine) {
		e.undoLimit = n
	}
}

// NewEngine creates an engine with no turtles.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		renderer:  nopRenderer{},
		logger:    logging.NewNop(),
		frameRate: DefaultFrameRate,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTurtle registers a turtle and returns its script-side channels.
// It is safe to call from any goroutine; the engine adopts the turtle on its
// next tick.
func (e *Engine) NewTurtle() Channels {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	t := &turtle{
		id:        e.nextID,
		requests:  make(chan domain.Request),
		responses: make(chan domain.Response, 1),
		state:     domain.NewTurtleState(),
	}
	e.joining = append(e.joining, t)

	return Channels{
		TurtleID:  t.id,
		Requests:  t.requests,
		Responses: t.responses,
		Done:      e.done,
	}
}

// Done is closed once the engine has stopped.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Stop asks Run to return after the current tick. Safe from any goroutine.
func (e *Engine) Stop() {
	e.stop.Do(func() {
		close(e.quit)
	})
}

// Run drives the engine at its frame rate until ctx is cancelled, Stop is
// called or a script says Bye. On return every pending script call fails
// with domain.ErrEngineGone.
func (e *Engine) Run(ctx context.Context) error {
	defer e.Shutdown()

	ticker := time.NewTicker(e.frameRate)
	defer ticker.Stop()

	e.logger.Info("engine started", "frame_rate", e.frameRate)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("engine stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-e.quit:
			e.logger.Info("engine stopped", "reason", "stop requested")
			return nil
		case now := <-ticker.C:
			e.safeTick(ctx, now.Sub(last))
			last = now
		}
	}
}

func (e *Engine) safeTick(ctx context.Context, dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine tick panicked", "panic", r)
		}
	}()
	e.Tick(ctx, dt)
}

// Shutdown closes every response channel and the Done channel. It must run
// on the engine goroutine; Run calls it on return.
func (e *Engine) Shutdown() {
	if e.closed {
		return
	}
	e.closed = true
	e.Stop()
	e.adopt()
	for _, t := range e.turtles {
		close(t.responses)
	}
	close(e.done)
}

// Tick advances the engine by dt: it adopts new turtles, takes at most one
// request from each idle turtle, and progresses every pending command.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) {
	e.adopt()
	for _, t := range e.turtles {
		if t.gone {
			continue
		}
		if t.pending == nil {
			e.poll(ctx, t)
		}
		if t.pending != nil {
			e.advance(ctx, t, dt)
		}
	}
}

func (e *Engine) adopt() {
	e.mu.Lock()
	joining := e.joining
	e.joining = nil
	e.mu.Unlock()

	for _, t := range joining {
		e.renderer.NewTurtle(t.id)
		e.turtles = append(e.turtles, t)
		e.logger.Debug("turtle adopted", "turtle_id", t.id)
	}
}

func (e *Engine) poll(ctx context.Context, t *turtle) {
	select {
	case req, ok := <-t.requests:
		if !ok {
			t.gone = true
			e.logger.Debug("turtle released", "turtle_id", t.id)
			return
		}
		e.handle(ctx, t, req)
	default:
	}
}

func (e *Engine) reply(t *turtle, resp domain.Response) {
	t.responses <- resp
}

func (e *Engine) handle(ctx context.Context, t *turtle, req domain.Request) {
	if req.TurtleID != t.id {
		e.reply(t, domain.Failure{Err: fmt.Errorf("%w: request for %d on channel of %d", domain.ErrUnknownTurtle, req.TurtleID, t.id)})
		return
	}

	switch cmd := req.Cmd.(type) {
	case domain.Draw:
		e.handleDraw(ctx, t, cmd.Req)

	case domain.Screen:
		e.renderer.Screen(t.id, cmd.Op)
		e.reply(t, domain.Ack{})
		if _, ok := cmd.Op.(domain.Bye); ok {
			e.Stop()
		}

	case domain.Input:
		e.openPrompt(ctx, t, cmd.Prompt)

	case domain.Data:
		e.reply(t, e.query(t, cmd.Query))

	default:
		e.reply(t, domain.Failure{Err: fmt.Errorf("unsupported command %T", req.Cmd)})
	}
}

func (e *Engine) query(t *turtle, q domain.Query) domain.Response {
	switch q {
	case domain.QueryPosition:
		pos := t.state.Pos()
		return domain.Position{X: pos.X, Y: pos.Y}
	case domain.QueryHeading:
		return domain.Heading{Angle: t.state.Angle}
	case domain.QueryUndoCount:
		return domain.UndoCount{N: t.history.Len()}
	case domain.QueryPenDown:
		return domain.PenState{Down: t.state.PenDown}
	case domain.QueryState:
		return domain.StateSnapshot{State: t.state}
	}
	return domain.Failure{Err: fmt.Errorf("unsupported query %d", q)}
}

func (e *Engine) handleDraw(ctx context.Context, t *turtle, req domain.DrawRequest) {
	if _, ok := req.(domain.Undo); ok {
		e.undo(ctx, t)
		return
	}

	closingFill := false
	if f, ok := req.(domain.Fill); ok && len(f.Polygon) == 0 && t.fill != nil {
		req = domain.Fill{Polygon: t.fill.polygon()}
		closingFill = true
	}

	pre := t.state
	preFill, preFillLen := t.fill, t.fill.len()
	cmd, err := Apply(&t.state, req)
	if err != nil {
		e.logger.Warn("draw request rejected", "turtle_id", t.id, "request", domain.RequestKind(req), "err", err)
		e.emitApply(ctx, t, req, nil, 0, err)
		e.reply(t, domain.Failure{Err: err})
		return
	}

	switch r := req.(type) {
	case domain.Tracer:
		t.speed = clampSpeed(r.Speed)
	case domain.Shape:
		t.shape = slices.Clone(r.Polygon)
	case domain.Stamp:
		if len(t.shape) > 0 {
			cmd = draw.DrawPolyAt{Polygon: slices.Clone(t.shape), Pos: t.state.Pos(), Angle: t.state.Angle}
		}
	}

	finish := func() {
		if cmd != nil {
			e.renderer.AppendCommand(t.id, cmd)
		}
	}
	recorded := cmd

	switch {
	case closingFill:
		region := t.fill
		t.fill = nil
		polygon := cmd.(draw.DrawPolygon)
		recorded = draw.EndFill{Index: region.index}
		finish = func() {
			e.renderer.FillPolygon(t.id, polygon, region.index)
		}
	case t.fill != nil:
		t.fill.track(cmd)
	}
	if _, ok := cmd.(draw.Filler); ok {
		t.fill = newFillRegion(e.renderer.Position(t.id), pre.Pos())
	}

	if shouldRecord(req, pre, t.state, recorded) {
		t.history.push(Entry{Pre: pre, Request: req, Command: recorded, fill: preFill, fillLen: preFillLen})
		if e.undoLimit > 0 {
			t.history.Truncate(e.undoLimit)
		}
	}

	e.logger.Debug("draw request applied", "turtle_id", t.id, "request", domain.RequestKind(req), "command", draw.Kind(cmd))

	if t.speed > 0 && cmd != nil && domain.IsTimed(req) {
		t.pending = &work{req: req, cmd: cmd, started: time.Now(), finish: finish}
		e.renderer.CurrentCommand(t.id, cmd, 0)
		return
	}

	finish()
	e.emitApply(ctx, t, req, cmd, 0, nil)
	e.reply(t, domain.Ack{})
}

func (e *Engine) undo(ctx context.Context, t *turtle) {
	entry, ok := t.history.Undo(&t.state)
	if !ok {
		e.reply(t, domain.Ack{})
		return
	}

	// Reopens a region closed by an undone EndFill and forgets the vertices
	// of undone strokes.
	t.fill = entry.fill
	t.fill.rewind(entry.fillLen)

	if entry.Command != nil {
		e.renderer.Undo(t.id, entry.Command)
	}
	e.logger.Debug("undo", "turtle_id", t.id, "request", domain.RequestKind(entry.Request), "remaining", t.history.Len())
	if e.hooks.OnUndo != nil {
		e.hooks.OnUndo(ctx, &domain.UndoEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventUndo, TurtleID: t.id},
			Request:   domain.RequestKind(entry.Request),
			Command:   draw.Kind(entry.Command),
			Remaining: t.history.Len(),
		})
	}

	if t.speed > 0 && entry.Command != nil && domain.IsTimed(entry.Request) {
		t.pending = &work{
			req:      domain.Undo{},
			cmd:      entry.Command,
			started:  time.Now(),
			progress: 1,
			reverse:  true,
			finish:   func() {},
		}
		e.renderer.CurrentCommand(t.id, entry.Command, 1)
		return
	}
	e.reply(t, domain.Ack{})
}

func (e *Engine) openPrompt(ctx context.Context, t *turtle, prompt domain.Prompt) {
	prompt.TurtleID = t.id
	if e.dialog == nil {
		e.reply(t, cancelled(prompt.Kind))
		return
	}
	t.pending = &work{
		prompt:  e.dialog.Open(ctx, prompt),
		kind:    prompt.Kind,
		started: time.Now(),
	}
}

func (e *Engine) advance(ctx context.Context, t *turtle, dt time.Duration) {
	p := t.pending
	if p.prompt != nil {
		e.advancePrompt(ctx, t, p)
		return
	}

	step := dt.Seconds() * float64(t.speed) * progressPerSpeed
	if p.reverse {
		p.progress -= step
	} else {
		p.progress += step
	}

	complete := (!p.reverse && p.progress >= 1) || (p.reverse && p.progress <= 0)
	if !complete {
		e.renderer.CurrentCommand(t.id, p.cmd, p.progress)
		return
	}

	t.pending = nil
	e.renderer.CurrentCommand(t.id, nil, 0)
	p.finish()
	if !p.reverse {
		e.emitApply(ctx, t, p.req, p.cmd, time.Since(p.started), nil)
	}
	e.reply(t, domain.Ack{})
}

func (e *Engine) advancePrompt(ctx context.Context, t *turtle, p *work) {
	var resp domain.Response
	select {
	case r, ok := <-p.prompt:
		if !ok || r == nil {
			resp = cancelled(p.kind)
		} else {
			resp = r
		}
	default:
		return
	}

	t.pending = nil
	if e.hooks.OnInput != nil {
		e.hooks.OnInput(ctx, &domain.InputEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventInput, TurtleID: t.id},
			Kind:      p.kind,
			Cancelled: isCancelled(resp),
			Wait:      time.Since(p.started),
		})
	}
	e.reply(t, resp)
}

func (e *Engine) emitApply(ctx context.Context, t *turtle, req domain.DrawRequest, cmd draw.Command, d time.Duration, err error) {
	if e.hooks.OnApply == nil {
		return
	}
	e.hooks.OnApply(ctx, &domain.ApplyEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventApply, TurtleID: t.id},
		Request:   domain.RequestKind(req),
		Command:   draw.Kind(cmd),
		Duration:  d,
		Err:       err,
	})
}

func cancelled(kind domain.PromptKind) domain.Response {
	if kind == domain.PromptNumber {
		return domain.NumberValue{Cancelled: true}
	}
	return domain.TextValue{Cancelled: true}
}

func isCancelled(resp domain.Response) bool {
	switch r := resp.(type) {
	case domain.NumberValue:
		return r.Cancelled
	case domain.TextValue:
		return r.Cancelled
	}
	return false
}

func clampSpeed(speed int) int {
	switch {
	case speed < 0:
		return 0
	case speed > MaxSpeed:
		return MaxSpeed
	}
	return speed
}

// nopRenderer discards everything; it is used when no renderer is configured.
type nopRenderer struct{}

func (nopRenderer) NewTurtle(uint64)                             {}
func (nopRenderer) CurrentCommand(uint64, draw.Command, float64) {}
func (nopRenderer) AppendCommand(uint64, draw.Command)           {}
func (nopRenderer) Position(uint64) int                          { return 0 }
func (nopRenderer) FillPolygon(uint64, draw.DrawPolygon, int)    {}
func (nopRenderer) Undo(uint64, draw.Command)                    {}
func (nopRenderer) Screen(uint64, domain.ScreenOp)               {}
