package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/internal/presentation/tui"
	"github.com/aretw0/tortuga/pkg/observability"
	"github.com/aretw0/tortuga/pkg/runner"
	"github.com/aretw0/tortuga/pkg/script"
	"github.com/prometheus/client_golang/prometheus"
)

// Run plays script files, one turtle each, on a single engine.
func Run(ctx context.Context, opts RunOptions) (*runner.Report, error) {
	if len(opts.Scripts) == 0 {
		return nil, errors.New("no script given")
	}
	logger, err := createLogger(opts.LogOptions, opts.Stderr)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(opts.ConfigPath, opts.FPS)
	if err != nil {
		return nil, err
	}

	programs := make([]runner.Program, 0, len(opts.Scripts))
	for _, path := range opts.Scripts {
		s, err := script.Load(path)
		if err != nil {
			return nil, err
		}
		programs = append(programs, runner.FromScript(s))
	}

	renderer, dialog, flushErr, err := createOutput(opts)
	if err != nil {
		return nil, err
	}
	fancy := opts.Output != OutputJSONL && !opts.Quiet
	if fancy {
		tui.PrintBanner(opts.Stdout, tortuga.Version)
	}

	var metrics *observability.Metrics
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if metrics, err = observability.NewMetrics(reg); err != nil {
			return nil, err
		}
		stop, err := serveMetrics(opts.MetricsAddr, reg)
		if err != nil {
			return nil, err
		}
		defer stop()
		logger.Info("serving metrics", "addr", opts.MetricsAddr)
	}

	eng := tortuga.New(
		tortuga.WithConfig(cfg),
		tortuga.WithRenderer(renderer),
		tortuga.WithInputDialog(dialog),
		tortuga.WithLogger(logger),
		tortuga.WithLifecycleHooks(createHooks(logger, metrics)),
	)

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithSignals(opts.HandleSignals),
		runner.WithKeepOpen(opts.KeepOpen),
	)
	report, runErr := r.Run(ctx, eng, programs...)

	if fancy && report != nil {
		if err := printReport(opts, report); err != nil {
			logger.Warn("failed to render summary", "err", err)
		}
	}
	if err := flushErr(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write output: %w", err)
	}
	return report, runErr
}

func printReport(opts RunOptions, report *runner.Report) error {
	style := ""
	if opts.NoColor {
		style = "notty"
	}
	render, err := tui.NewRenderer(style)
	if err != nil {
		return err
	}
	out, err := render(tui.ReportMarkdown(report))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(opts.Stdout, out)
	return err
}

func serveMetrics(addr string, g prometheus.Gatherer) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(g))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
