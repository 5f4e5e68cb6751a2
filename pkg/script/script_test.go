package script_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/aretw0/tortuga/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `
title: Square
speed: 10
steps:
  - pencolor: "#ff0000"
  - repeat:
      times: 4
      steps:
        - forward: 100
        - right: 90
  - penup
  - goto: [0, 50]
  - pendown
  - circle: {radius: 20, extent: 180, steps: 6}
  - dot: {size: 4, color: blue}
  - stamp
`

func play(t *testing.T, s *script.Script) (*memory.Canvas, uint64) {
	t.Helper()
	canvas := memory.NewCanvas()
	eng := tortuga.New(tortuga.WithRenderer(canvas), tortuga.WithFrameRate(time.Millisecond))
	tt := eng.NewTurtle()

	done := make(chan error, 1)
	go func() {
		defer eng.Stop()
		done <- s.Run(tt)
	}()
	require.NoError(t, eng.Run(context.Background()))
	require.NoError(t, <-done)
	return canvas, tt.ID()
}

func TestDecode_PlaysSteps(t *testing.T) {
	s, err := script.Decode([]byte(square))
	require.NoError(t, err)
	assert.Equal(t, "Square", s.Title)
	require.NotNil(t, s.Speed)
	assert.Equal(t, 10, *s.Speed)
	assert.Equal(t, 8, s.Len())

	canvas, id := play(t, s)
	cmds := canvas.Drawing(id).Commands

	// pencolor, 4x(line, heading), goto line, circle, dot, stamp
	require.Len(t, cmds, 13)
	assert.Equal(t, draw.SetPenColor{Color: domain.RGB(1, 0, 0)}, cmds[0])
	goTo := cmds[9].(draw.Line)
	assert.False(t, goTo.PenDown)
	assert.Equal(t, domain.Point{X: 0, Y: 50}, goTo.End)
	assert.Len(t, cmds[10].(draw.Circle).Samples, 7)
	dot := cmds[11].(draw.DrawDot)
	assert.Equal(t, 4.0, dot.Radius)
	assert.Equal(t, domain.RGB(0, 0, 1), dot.Color)
	assert.Equal(t, draw.StampTurtle{}, cmds[12])
}

func TestDecode_JSON(t *testing.T) {
	s, err := script.Decode([]byte(`{"steps": [{"fd": 10}, {"lt": 45}, "pu", {"undo": 2}]}`))
	require.NoError(t, err)

	canvas, id := play(t, s)
	assert.Len(t, canvas.Drawing(id).Commands, 1, "two undos retract the pen-up and the turn, keeping the line")
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"unknown step", "steps: [{jump: 3}]", script.ErrUnknownStep},
		{"malformed hex", `steps: [{pencolor: "#12"}]`, colors.ErrMalformedHex},
		{"negative steps", "steps: [{circle: {radius: 5, steps: -1}}]", domain.ErrInvalidSteps},
		{"nested unknown", "steps: [{repeat: {times: 2, steps: [{fly: 1}]}}]", script.ErrUnknownStep},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := script.Decode([]byte(tc.src))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := script.Decode([]byte("steps: [{forward: 1, right: 2}]"))
	assert.ErrorContains(t, err, "exactly one command")

	_, err = script.Decode([]byte("steps: [{forward: far}]"))
	assert.Error(t, err)

	_, err = script.Decode([]byte("steps: [{penup: 1}]"))
	assert.ErrorContains(t, err, "takes no argument")
}

func TestDecode_WithoutScreenOps(t *testing.T) {
	for _, src := range []string{
		"steps: [bye]",
		"steps: [clear]",
		"steps: [{title: mine}]",
		"steps: [{background: red}]",
		"steps: [{repeat: {times: 2, steps: [{forward: 1}, bye]}}]",
	} {
		_, err := script.Decode([]byte(src), script.WithoutScreenOps())
		assert.ErrorIs(t, err, domain.ErrScreenForbidden, src)

		_, err = script.Decode([]byte(src))
		assert.NoError(t, err, src)
	}
}

func TestDecode_Shape(t *testing.T) {
	s, err := script.Decode([]byte("steps: [{shape: [[0, 0], [-4, 2], [-4, -2]]}, stamp, {shape: null}, stamp]"))
	require.NoError(t, err)

	canvas, id := play(t, s)
	cmds := canvas.Drawing(id).Commands
	require.Len(t, cmds, 2)
	assert.Equal(t, draw.DrawPolyAt{Polygon: domain.Polygon{{X: 0, Y: 0}, {X: -4, Y: 2}, {X: -4, Y: -2}}}, cmds[0])
	assert.Equal(t, draw.StampTurtle{}, cmds[1])

	_, err = script.Decode([]byte("steps: [{shape: [[1, 2, 3]]}]"))
	assert.ErrorContains(t, err, "want [x, y]")
}

func TestDecode_ZeroStepsPicksDefault(t *testing.T) {
	s, err := script.Decode([]byte("steps: [{circle: {radius: 5, steps: 0}}, {circle: {radius: 5, extent: 90, steps: 0}}]"))
	require.NoError(t, err)

	// steps: 0 means "pick a default", so both circles succeed.
	canvas, id := play(t, s)
	assert.Len(t, canvas.Drawing(id).Commands, 2)
}

func TestLoad_UsesFileNameAsTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spiral.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: [{forward: 5}]"), 0644))

	s, err := script.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "spiral", s.Title)

	_, err = script.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
