package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/tortuga"
	httpAdapter "github.com/aretw0/tortuga/pkg/adapters/http"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/observability"
	"github.com/aretw0/tortuga/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// backend is the headless engine and session manager behind serve and mcp.
type backend struct {
	engine   *tortuga.Engine
	canvas   *memory.Canvas
	sessions *session.Manager
	registry *prometheus.Registry
	close    func() error
}

func newBackend(ctx context.Context, configPath string, store StoreOptions, withMetrics bool, logger *slog.Logger) (*backend, error) {
	cfg, err := loadConfig(configPath, 0)
	if err != nil {
		return nil, err
	}
	snapshots, locker, closeStore, err := openStore(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	b := &backend{canvas: memory.NewCanvas(), close: closeStore}
	var metrics *observability.Metrics
	if withMetrics {
		b.registry = prometheus.NewRegistry()
		if metrics, err = observability.NewMetrics(b.registry); err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	b.engine = tortuga.New(
		tortuga.WithConfig(cfg),
		tortuga.WithRenderer(b.canvas),
		tortuga.WithLogger(logger),
		tortuga.WithLifecycleHooks(createHooks(logger, metrics)),
	)
	sessOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}
	b.sessions = session.NewManager(b.engine, snapshots, sessOpts...)
	return b, nil
}

// runEngine drives the engine until ctx ends. Cancellation is a clean stop.
func (b *backend) runEngine(ctx context.Context) error {
	if err := b.engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// Serve runs the HTTP session API until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger, err := createLogger(opts.LogOptions, opts.Stderr)
	if err != nil {
		return err
	}
	b, err := newBackend(ctx, opts.ConfigPath, opts.StoreOptions, opts.Metrics, logger)
	if err != nil {
		return err
	}
	defer b.close()

	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithDrawings(b.canvas),
		httpAdapter.WithLogger(logger),
	}
	if b.registry != nil {
		handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(b.registry))
	}

	ln := opts.Listener
	if ln == nil {
		if ln, err = net.Listen("tcp", opts.Addr); err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	}
	srv := &http.Server{
		Handler:           httpAdapter.NewHandler(b.sessions, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.runEngine(gctx) })
	g.Go(func() error {
		logger.Info("Starting tortuga server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("tortuga server stopped gracefully")
		return nil
	})
	return g.Wait()
}
