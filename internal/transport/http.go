package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/learnerhours/internal/domain/hours"
)

// SessionService is the session API the HTTP layer serves.
type SessionService interface {
	List(ctx context.Context) ([]hours.Session, error)
	Get(ctx context.Context, id string) (hours.Session, error)
	Create(ctx context.Context, in hours.Input) (hours.Session, error)
	Update(ctx context.Context, id string, in hours.Input) (hours.Session, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) (hours.SearchResult, error)
	TotalDuration(ctx context.Context) (hours.Total, error)
}

// Options wires the router.
type Options struct {
	Sessions SessionService
	// Events streams list changes. Nil disables the events route.
	Events *Broker
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	// Offline serves every path no other route matches.
	Offline http.Handler
	// Auth guards /api when set.
	Auth   func(http.Handler) http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	sessions SessionService
	events   *Broker
	logger   *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{sessions: opts.Sessions, events: opts.Events, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	if opts.Offline != nil {
		r.NotFound(opts.Offline.ServeHTTP)
	}

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}

		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", srv.handleList)
			r.Post("/", srv.handleCreate)
			r.Get("/total", srv.handleTotal)
			if srv.events != nil {
				r.Get("/events", srv.handleEvents)
			}
			r.Get("/{id}", srv.handleGet)
			r.Put("/{id}", srv.handleUpdate)
			r.Delete("/{id}", srv.handleDelete)
		})
	})

	// The MCP server authenticates its own requests.
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	return r
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ListResponse is the body of GET /api/sessions.
type ListResponse struct {
	Sessions        []hours.Session `json:"sessions"`
	Total           int             `json:"total"`
	Query           string          `json:"query,omitempty"`
	NoResults       bool            `json:"no_results"`
	CollectionEmpty bool            `json:"collection_empty"`
}

// TotalResponse is the body of GET /api/sessions/total.
type TotalResponse struct {
	Hours    int    `json:"hours"`
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
	Text     string `json:"text"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
		result, err := s.sessions.Search(r.Context(), q)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, ListResponse{
			Sessions:        result.Sessions,
			Total:           len(result.Sessions),
			Query:           result.Query,
			NoResults:       result.NoResults(),
			CollectionEmpty: result.CollectionEmpty(),
		})
		return
	}

	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse{
		Sessions:        sessions,
		Total:           len(sessions),
		NoResults:       len(sessions) == 0,
		CollectionEmpty: len(sessions) == 0,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	sess, err := s.sessions.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.sessions.TotalDuration(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, TotalResponse{
		Hours:    total.Hours,
		Minutes:  total.Minutes,
		Sessions: total.Sessions,
		Text:     total.String(),
	})
}

func decodeInput(w http.ResponseWriter, r *http.Request) (hours.Input, bool) {
	var in hours.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, "invalid request body")
		return hours.Input{}, false
	}
	return in, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, field := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	respondJSON(w, status, ErrorBody{Code: code, Message: err.Error(), Field: field})
}
