package runtime_test

import (
	"testing"

	"github.com/aretw0/tortuga/internal/runtime"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUndoBuffer_RestoresExactSnapshots(t *testing.T) {
	var buf runtime.UndoBuffer
	state := domain.NewTurtleState()

	requests := []domain.DrawRequest{
		domain.Forward{Dist: 40},
		domain.Right{Deg: 120},
		domain.Teleport{X: -7, Y: 9},
		domain.SetHeading{Heading: 10},
		domain.PenUp{},
		domain.FillColor{Color: domain.RGB(0, 1, 0)},
	}
	var snapshots []domain.TurtleState
	for _, req := range requests {
		pre := state
		cmd, err := runtime.Apply(&state, req)
		require.NoError(t, err)
		buf.Record(pre, req, cmd)
		snapshots = append(snapshots, pre)
	}
	require.Equal(t, len(requests), buf.Len())

	for i := len(requests) - 1; i >= 0; i-- {
		entry, ok := buf.Undo(&state)
		require.True(t, ok)
		assert.Equal(t, requests[i], entry.Request)
		assert.Equal(t, snapshots[i], state, "undo %d must restore the pre-state exactly", i)
		assert.Equal(t, i, buf.Len())
	}
}

func TestUndoBuffer_EmptyIsNoOp(t *testing.T) {
	var buf runtime.UndoBuffer
	state := domain.NewTurtleState()
	state.Angle = 33

	_, ok := buf.Undo(&state)

	assert.False(t, ok)
	assert.Equal(t, 33.0, state.Angle)
	assert.Equal(t, 0, buf.Len())
}

func TestUndoBuffer_TruncateDropsOldest(t *testing.T) {
	var buf runtime.UndoBuffer
	for i := range 5 {
		buf.Record(domain.NewTurtleState(), domain.Forward{Dist: float64(i)}, nil)
	}

	dropped := buf.Truncate(2)

	assert.Equal(t, 3, dropped)
	assert.Equal(t, 2, buf.Len())

	state := domain.NewTurtleState()
	entry, ok := buf.Undo(&state)
	require.True(t, ok)
	assert.Equal(t, domain.Forward{Dist: 4}, entry.Request)
	entry, ok = buf.Undo(&state)
	require.True(t, ok)
	assert.Equal(t, domain.Forward{Dist: 3}, entry.Request)

	assert.Zero(t, buf.Truncate(10))
}
