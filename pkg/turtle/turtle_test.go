package turtle_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tortuga/internal/runtime"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/aretw0/tortuga/pkg/turtle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, opts ...runtime.EngineOption) (*turtle.Turtle, *memory.Canvas) {
	t.Helper()
	canvas := memory.NewCanvas()
	opts = append([]runtime.EngineOption{
		runtime.WithRenderer(canvas),
		runtime.WithFrameRate(time.Millisecond),
	}, opts...)
	e := runtime.NewEngine(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errc
	})

	conn := func() turtle.Conn {
		ch := e.NewTurtle()
		return turtle.Conn{TurtleID: ch.TurtleID, Requests: ch.Requests, Responses: ch.Responses, Done: ch.Done}
	}
	return turtle.New(conn(), turtle.WithHatchery(conn)), canvas
}

func TestTurtle_Square(t *testing.T) {
	tt, canvas := start(t)

	err := turtle.Guard(func() {
		for range 4 {
			tt.Forward(100)
			tt.Right(90)
		}
	})
	require.NoError(t, err)

	x, y := tt.Position()
	assert.InDelta(t, 0, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.Equal(t, 360.0, tt.Heading())
	assert.Equal(t, 8, tt.UndoBufferEntries())
	assert.Len(t, canvas.Drawing(tt.ID()).Commands, 8)
}

func TestTurtle_AnimatedUndo(t *testing.T) {
	tt, canvas := start(t)

	require.NoError(t, turtle.Guard(func() {
		tt.Speed(10)
		tt.Forward(50)
		tt.Left(45)
		for tt.UndoBufferEntries() > 0 {
			tt.Undo()
		}
	}))

	x, y := tt.Position()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Empty(t, canvas.Drawing(tt.ID()).Commands)
}

func TestTurtle_StepsAppliesToNextCircleOnly(t *testing.T) {
	tt, canvas := start(t)

	require.NoError(t, turtle.Guard(func() {
		tt.Teleport(0, 180)
		tt.Steps(3).Circle(180)
		tt.Circle(180)
	}))

	cmds := canvas.Drawing(tt.ID()).Commands
	require.Len(t, cmds, 3)
	assert.Len(t, cmds[1].(draw.Circle).Samples, 4)
	assert.Len(t, cmds[2].(draw.Circle).Samples, 43)
}

func TestTurtle_PenAndQueries(t *testing.T) {
	tt, _ := start(t)

	require.NoError(t, turtle.Guard(func() {
		assert.True(t, tt.IsDown())
		tt.PenUp()
		assert.False(t, tt.IsDown())
		tt.FillColor("red")
		tt.PenWidth(3)
		tt.SetHeading(90)
	}))

	state := tt.State()
	assert.False(t, state.PenDown)
	assert.Equal(t, 3.0, state.PenWidth)
	assert.Equal(t, domain.RGB(1, 0, 0), state.FillColor)
}

func TestTurtle_InvalidStepsAborts(t *testing.T) {
	tt, _ := start(t)

	reached := false
	err := turtle.Guard(func() {
		tt.CircleSteps(10, 360, 0)
		reached = true
	})

	assert.ErrorIs(t, err, domain.ErrInvalidSteps)
	assert.False(t, reached, "script must stop at the failing call")
}

func TestTurtle_MalformedColorAborts(t *testing.T) {
	tt, _ := start(t)

	err := turtle.Guard(func() { tt.PenColor("#12") })

	assert.ErrorIs(t, err, colors.ErrMalformedHex)
}

func TestTurtle_SharedRejectsWindowOps(t *testing.T) {
	tt, canvas := start(t)
	tt.Share()

	for name, op := range map[string]func(){
		"bye":        tt.Bye,
		"clear":      tt.ClearScreen,
		"title":      func() { tt.Title("mine") },
		"background": func() { tt.Background("red") },
	} {
		err := turtle.Guard(op)
		assert.ErrorIs(t, err, domain.ErrScreenForbidden, name)
	}
	assert.NotEqual(t, "mine", canvas.Title())

	// Drawing still works and the engine is still up.
	require.NoError(t, turtle.Guard(func() { tt.Forward(10) }))
	assert.Len(t, canvas.Drawing(tt.ID()).Commands, 1)
}

func TestTurtle_EngineGone(t *testing.T) {
	tt, canvas := start(t)

	require.NoError(t, turtle.Guard(tt.Bye))
	assert.True(t, canvas.Closed())

	err := turtle.Guard(func() { tt.Forward(10) })
	assert.ErrorIs(t, err, domain.ErrEngineGone)
}

func TestTurtle_CloseReleases(t *testing.T) {
	tt, _ := start(t)
	tt.Close()
	tt.Close()

	err := turtle.Guard(func() { tt.Forward(1) })
	assert.ErrorIs(t, err, domain.ErrEngineGone)
}

func TestTurtle_Input(t *testing.T) {
	dialog := memory.NewDialog(domain.NumberValue{Value: 3.5}, domain.TextValue{Value: "hi"})
	tt, _ := start(t, runtime.WithInputDialog(dialog))

	require.NoError(t, turtle.Guard(func() {
		n, ok := tt.NumInput("This is a request...", "Gimmie a floating point number")
		assert.True(t, ok)
		assert.Equal(t, 3.5, n)

		s, ok := tt.TextInput("Name", "Who?")
		assert.True(t, ok)
		assert.Equal(t, "hi", s)

		_, ok = tt.NumInput("Again", "Nothing left")
		assert.False(t, ok)
	}))
}

func TestTurtle_HatchDrawsConcurrently(t *testing.T) {
	first, canvas := start(t)
	second := first.Hatch()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, tt := range []*turtle.Turtle{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = turtle.Guard(func() {
				tt.Speed(10)
				for range 3 {
					tt.Forward(20)
					tt.Left(120)
				}
			})
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Len(t, canvas.Turtles(), 2)
	assert.Len(t, canvas.Drawing(first.ID()).Commands, 6)
	assert.Len(t, canvas.Drawing(second.ID()).Commands, 6)
}

func TestGuard_PropagatesOtherPanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		_ = turtle.Guard(func() { panic("boom") })
	})
}
