package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewTurtleState()
		state.Transform = state.Transform.Trans(10, -4).RotDeg(30)
		state.Angle = 30
		state.PenDown = false
		state.FillColor = domain.RGB(1, 0, 0)

		snap := domain.Snapshot{State: state, UndoCount: 3, SavedAt: time.Now().UTC()}
		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.InDelta(t, 10.0, loaded.State.Transform[0][2], 1e-9)
		assert.InDelta(t, -4.0, loaded.State.Transform[1][2], 1e-9)
		assert.Equal(t, 30.0, loaded.State.Angle)
		assert.False(t, loaded.State.PenDown)
		assert.Equal(t, domain.RGB(1, 0, 0), loaded.State.FillColor)
		assert.Equal(t, 3, loaded.UndoCount)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.Snapshot{State: domain.NewTurtleState()})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.Snapshot{State: domain.NewTurtleState()})
		_ = store.Save(ctx, id2, domain.Snapshot{State: domain.NewTurtleState()})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
