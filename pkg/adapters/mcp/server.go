package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/script"
	"github.com/aretw0/tortuga/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const sessionURIPrefix = "tortuga://sessions/"

// SessionResult is the structured output of the session tools.
type SessionResult struct {
	SessionID string          `json:"session_id" jsonschema_description:"The session ID"`
	Snapshot  domain.Snapshot `json:"snapshot" jsonschema_description:"The turtle pose after the call"`
	Error     string          `json:"error,omitempty" jsonschema_description:"Why the script stopped early, if it did"`
}

// SessionArgs names a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// ScriptArgs carries a script for run_script.
type ScriptArgs struct {
	SessionID string `json:"session_id"`
	Script    string `json:"script"`
}

// ColorArgs carries the lookup_color argument.
type ColorArgs struct {
	Name string `json:"name"`
}

// ColorResult is the output of lookup_color.
type ColorResult struct {
	Name string `json:"name" jsonschema_description:"The colour as given"`
	Hex  string `json:"hex" jsonschema_description:"The colour as #rrggbb"`
}

// Server exposes turtle sessions as MCP tools.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("tortuga-mcp", strings.TrimSpace(tortuga.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process use.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves JSON-RPC on the given streams until ctx ends or in
// reaches EOF.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Hatch a new turtle at the origin, facing east with the pen down."),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("run_script",
		mcp.WithDescription("Run turtle steps on a session. The script is YAML or JSON, e.g. `steps: [{forward: 100}, {right: 90}]`."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID from start_session")),
		mcp.WithString("script", mcp.Required(), mcp.Description("Script document with a steps list")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleRun))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Read the last checkpoint of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGet))

	s.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Forget a session. Its drawing stays on the canvas."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleDelete)

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List live session IDs."),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("lookup_color",
		mcp.WithDescription("Resolve a colour name or #rrggbb string."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Colour name, e.g. 'dark olive green', or hex")),
		mcp.WithOutputSchema[ColorResult](),
	), mcp.NewStructuredToolHandler(s.handleColor))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (SessionResult, error) {
	id, snap, err := s.sessions.Start(ctx)
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{SessionID: id, Snapshot: snap}, nil
}

func (s *Server) handleRun(ctx context.Context, _ mcp.CallToolRequest, args ScriptArgs) (SessionResult, error) {
	sc, err := script.Decode([]byte(args.Script), script.WithoutScreenOps())
	if err != nil {
		return SessionResult{}, fmt.Errorf("invalid script: %w", err)
	}

	snap, err := s.sessions.Do(ctx, args.SessionID, sc.Play)
	if err != nil && snap.SavedAt.IsZero() {
		return SessionResult{}, err
	}
	res := SessionResult{SessionID: args.SessionID, Snapshot: snap}
	if err != nil {
		s.logger.Warn("MCP run_script: script aborted", "err", err, "session_id", args.SessionID)
		res.Error = err.Error()
	}
	return res, nil
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResult, error) {
	snap, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return SessionResult{}, err
	}
	return SessionResult{SessionID: args.SessionID, Snapshot: snap}, nil
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return mcp.NewToolResultErrorFromErr("delete failed", err), nil
	}
	return mcp.NewToolResultText("deleted " + id), nil
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("list failed", err), nil
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleColor(_ context.Context, _ mcp.CallToolRequest, args ColorArgs) (ColorResult, error) {
	c, err := colors.Parse(args.Name)
	if err != nil {
		return ColorResult{}, err
	}
	if c.IsCurrent() {
		return ColorResult{}, fmt.Errorf("unknown colour %q", args.Name)
	}
	return ColorResult{Name: args.Name, Hex: c.Hex()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("tortuga://colors", "Colour names",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(colors.Names())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tortuga://colors",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(sessionURIPrefix+"{id}", "Session checkpoint",
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, sessionURIPrefix)
		if id == "" || id == request.Params.URI {
			return nil, errors.New("missing session id")
		}
		snap, err := s.sessions.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		jsonBytes, _ := json.Marshal(snap)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
