package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/adapters/file"
	"github.com/aretw0/tortuga/pkg/adapters/jsonl"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/adapters/redis"
	"github.com/aretw0/tortuga/pkg/adapters/terminal"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/observability"
	"github.com/aretw0/tortuga/pkg/persistence/middleware"
	"github.com/aretw0/tortuga/pkg/ports"
	"github.com/muesli/termenv"
)

// createLogger configures the application logger on w.
func createLogger(opts LogOptions, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithWriter(w, level, opts.LogJSON), nil
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(path string, fps int) (tortuga.Config, error) {
	cfg := tortuga.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = tortuga.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createOutput builds the renderer and input dialog for a run. Both share
// stdout so prompts and drawing interleave in order.
func createOutput(opts RunOptions) (ports.Renderer, ports.InputDialog, func() error, error) {
	switch opts.Output {
	case OutputJSONL:
		stream := jsonl.NewStream(opts.Stdout)
		return jsonl.NewRenderer(stream), jsonl.NewDialog(opts.Stdin, stream), stream.Err, nil
	case OutputTerminal, "":
		var rOpts []terminal.Option
		if opts.NoColor {
			rOpts = append(rOpts, terminal.WithProfile(termenv.Ascii))
		}
		return terminal.NewRenderer(opts.Stdout, rOpts...), terminal.NewDialog(opts.Stdin, opts.Stdout), func() error { return nil }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown output %q (want %s or %s)", opts.Output, OutputTerminal, OutputJSONL)
}

// createHooks logs every request at debug level and feeds metrics when
// enabled.
func createHooks(logger *slog.Logger, metrics *observability.Metrics) domain.LifecycleHooks {
	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if metrics != nil {
		hooks = append(hooks, metrics.Hooks())
	}
	return observability.Chain(hooks...)
}

// openStore picks the snapshot store for remote sessions, sealed when a
// session key is configured. The returned close func releases its
// connections.
func openStore(ctx context.Context, opts StoreOptions, logger *slog.Logger) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	if opts.SessionKey == "" {
		return openPlainStore(ctx, opts, logger)
	}
	key, err := middleware.ParseKey(opts.SessionKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid session key: %w", err)
	}
	store, locker, closeFn, err := openPlainStore(ctx, opts, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("session checkpoints are encrypted")
	return middleware.Wrap(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})), locker, closeFn, nil
}

func openPlainStore(ctx context.Context, opts StoreOptions, logger *slog.Logger) (ports.SnapshotStore, ports.DistributedLocker, func() error, error) {
	switch {
	case opts.RedisAddr != "":
		var rOpts []redis.Option
		if opts.SessionTTL > 0 {
			rOpts = append(rOpts, redis.WithTTL(opts.SessionTTL))
		}
		store := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, rOpts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		logger.Info("using redis session store", "addr", opts.RedisAddr, "ttl", opts.SessionTTL)
		return store, redis.NewLocker(store.Client(), store.Prefix()), store.Close, nil
	case opts.StoreDir != "":
		logger.Info("using file session store", "dir", opts.StoreDir)
		return file.New(opts.StoreDir), nil, func() error { return nil }, nil
	default:
		logger.Info("using in-memory session store")
		return memory.NewStore(), nil, func() error { return nil }, nil
	}
}
