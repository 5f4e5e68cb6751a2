package tortuga_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/turtle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade_Integration(t *testing.T) {
	canvas := memory.NewCanvas()
	var applied int
	eng := tortuga.New(
		tortuga.WithRenderer(canvas),
		tortuga.WithFrameRate(time.Millisecond),
		tortuga.WithConfig(tortuga.Config{Width: 400, Height: 400, Title: "a line", Background: "black"}),
		tortuga.WithLifecycleHooks(domain.LifecycleHooks{
			OnApply: func(context.Context, *domain.ApplyEvent) { applied++ },
		}),
	)
	tt := eng.NewTurtle()

	scriptErr := make(chan error, 1)
	go func() {
		scriptErr <- turtle.Guard(func() {
			tt.Forward(100)
			tt.Bye()
		})
	}()

	require.NoError(t, eng.Run(context.Background()))
	require.NoError(t, <-scriptErr)

	assert.Equal(t, "a line", canvas.Title())
	assert.Equal(t, domain.RGB(0, 0, 0), canvas.Background())
	assert.Len(t, canvas.Drawing(tt.ID()).Commands, 1)
	assert.Equal(t, 1, applied)
	<-eng.Done()
}

func TestFacade_StopAbortsWaitingScripts(t *testing.T) {
	eng := tortuga.New(tortuga.WithFrameRate(time.Millisecond))
	tt := eng.NewTurtle()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- eng.Run(ctx) }()

	dialogless := make(chan error, 1)
	go func() {
		dialogless <- turtle.Guard(func() {
			_, ok := tt.NumInput("n", "a number")
			assert.False(t, ok, "no dialog means the prompt is cancelled")
			for {
				tt.Forward(1)
			}
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-runErr, context.Canceled)
	assert.ErrorIs(t, <-dialogless, domain.ErrEngineGone)
}

func TestFacade_UndoLimitFromConfig(t *testing.T) {
	cfg := tortuga.DefaultConfig()
	cfg.UndoLimit = 3
	eng := tortuga.New(tortuga.WithConfig(cfg), tortuga.WithFrameRate(time.Millisecond))
	tt := eng.NewTurtle()

	got := make(chan int, 1)
	go func() {
		defer eng.Stop()
		_ = turtle.Guard(func() {
			for range 10 {
				tt.Right(10)
			}
			got <- tt.UndoBufferEntries()
		})
	}()
	require.NoError(t, eng.Run(context.Background()))
	assert.Equal(t, 3, <-got)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "tortuga.yaml")
		require.NoError(t, os.WriteFile(path, []byte("title: Circles\nfps: 30\nundo_limit: 50\n"), 0644))

		cfg, err := tortuga.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "Circles", cfg.Title)
		assert.Equal(t, 800, cfg.Width)
		assert.Equal(t, 50, cfg.UndoLimit)
		assert.Equal(t, time.Second/30, cfg.FrameRate())
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "tortuga.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"width": 400, "height": 300}`), 0644))

		cfg, err := tortuga.LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 400, cfg.Width)
		assert.Equal(t, 300, cfg.Height)
		assert.Equal(t, "Turtle", cfg.Title)
	})

	t.Run("Missing file yields defaults", func(t *testing.T) {
		cfg, err := tortuga.LoadConfig(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, tortuga.DefaultConfig(), cfg)
	})

	t.Run("Invalid size", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("width: -1\n"), 0644))

		_, err := tortuga.LoadConfig(path)
		assert.Error(t, err)
	})
}
