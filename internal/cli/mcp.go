package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/tortuga/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// ServeMCP exposes turtle sessions to MCP clients over stdio or SSE.
func ServeMCP(ctx context.Context, opts MCPOptions) error {
	logger, err := createLogger(opts.LogOptions, opts.Stderr)
	if err != nil {
		return err
	}
	b, err := newBackend(ctx, opts.ConfigPath, opts.StoreOptions, false, logger)
	if err != nil {
		return err
	}
	defer b.close()

	srv := mcp.NewServer(b.sessions, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.runEngine(gctx) })
	g.Go(func() error {
		// The engine outlives the transport only until the transport ends.
		defer cancel()
		switch opts.Transport {
		case "stdio", "":
			logger.Info("Starting tortuga MCP server (stdio)")
			if err := srv.ServeStdio(gctx, opts.Stdin, opts.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp: %w", err)
			}
			return nil
		case "sse":
			logger.Info("Starting tortuga MCP server (SSE)", "port", opts.Port)
			if err := srv.ServeSSE(gctx, opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("mcp: %w", err)
			}
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", opts.Transport)
	})
	return g.Wait()
}
