package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tortuga"
	"github.com/aretw0/tortuga/internal/logging"
	"github.com/aretw0/tortuga/pkg/adapters/memory"
	"github.com/aretw0/tortuga/pkg/colors"
	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/aretw0/tortuga/pkg/draw"
	"github.com/aretw0/tortuga/pkg/observability"
	"github.com/aretw0/tortuga/pkg/script"
	"github.com/aretw0/tortuga/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMaxBodySize caps the size of a posted script.
const DefaultMaxBodySize = 1 << 20

// DrawingSource exposes what a turtle has drawn so far. *memory.Canvas
// satisfies it.
type DrawingSource interface {
	Drawing(id uint64) memory.Drawing
}

// Server serves remote turtle sessions over HTTP.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	drawings DrawingSource
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	maxBody  int64
}

// Option configures the Server.
type Option func(*Server)

// WithDrawings enables GET /sessions/{id}/drawing.
func WithDrawings(src DrawingSource) Option {
	return func(s *Server) { s.drawings = src }
}

// WithMetrics mounts /metrics for the given gatherer.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewServer creates a server over the session manager.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		maxBody:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the session manager.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(s.gatherer))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.StartSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/commands", s.RunCommands)
			r.Get("/drawing", s.GetDrawing)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionResponse is returned by the session endpoints.
type SessionResponse struct {
	ID       string          `json:"id"`
	Snapshot domain.Snapshot `json:"snapshot"`
	Error    string          `json:"error,omitempty"`
}

// DrawingResponse lists a turtle's finished commands.
type DrawingResponse struct {
	TurtleID uint64          `json:"turtle_id"`
	Commands []draw.Envelope `json:"commands"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tortuga-http",
		"version": strings.TrimSpace(tortuga.Version),
	})
}

// StartSession handles POST /sessions.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	id, snap, err := s.Sessions.Start(r.Context())
	if err != nil {
		s.fail(w, "StartSession", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SessionResponse{ID: id, Snapshot: snap})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{ID: id, Snapshot: snap})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// RunCommands handles POST /sessions/{id}/commands. The body is a script in
// YAML or JSON. A script that aborts halfway still moves the turtle; the
// response then carries both the checkpoint and the error.
func (s *Server) RunCommands(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, "Invalid request body", status)
		s.logger.Warn("RunCommands: body rejected", "err", err, "session_id", id)
		return
	}
	sc, err := script.Decode(body, script.WithoutScreenOps())
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrInvalidSteps) || errors.Is(err, colors.ErrMalformedHex) || errors.Is(err, domain.ErrScreenForbidden) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, fmt.Sprintf("Invalid script: %v", err), status)
		s.logger.Warn("RunCommands: invalid script", "err", err, "session_id", id)
		return
	}

	snap, err := s.Sessions.Do(r.Context(), id, sc.Play)
	if err != nil && snap.SavedAt.IsZero() {
		s.fail(w, "RunCommands", err)
		return
	}
	s.broadcast(id, snap)

	resp := SessionResponse{ID: id, Snapshot: snap}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = statusOf(err)
		s.logger.Warn("RunCommands: script aborted", "err", err, "session_id", id)
	}
	s.writeJSON(w, status, resp)
}

// GetDrawing handles GET /sessions/{id}/drawing. It only reads: a session
// whose turtle lives on another replica answers an empty drawing.
func (s *Server) GetDrawing(w http.ResponseWriter, r *http.Request) {
	if s.drawings == nil {
		http.Error(w, "Drawings not available", http.StatusNotImplemented)
		return
	}
	id := chi.URLParam(r, "id")
	tid, attached, err := s.Sessions.TurtleID(r.Context(), id)
	if err != nil {
		s.fail(w, "GetDrawing", err)
		return
	}
	resp := DrawingResponse{TurtleID: tid, Commands: []draw.Envelope{}}
	if !attached {
		// Resumed elsewhere or not touched since a restart: nothing drawn here.
		s.writeJSON(w, http.StatusOK, resp)
		return
	}

	cmds := s.drawings.Drawing(tid).Commands
	for _, cmd := range cmds {
		env, err := draw.Wrap(cmd)
		if err != nil {
			s.fail(w, "GetDrawing", err)
			return
		}
		resp.Commands = append(resp.Commands, env)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE). Every batch of
// commands run on the session pushes its new snapshot.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), id); err != nil {
		s.fail(w, "SubscribeEvents", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	s.logger.Info("SSE: Subscribing to session updates", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcast(id string, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("snapshot encode failed", "err", err, "session_id", id)
		return
	}
	s.Streams.Broadcast(id, string(data))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSteps), errors.Is(err, colors.ErrMalformedHex), errors.Is(err, domain.ErrScreenForbidden):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEngineGone):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
