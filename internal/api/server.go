// Package api serves hosted sessions over REST and WebSocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/vovakirdan/powers/internal/powers"
	"github.com/vovakirdan/powers/internal/session"
	"github.com/vovakirdan/powers/internal/storage"
	"github.com/vovakirdan/powers/internal/transport/websocket"
)

const (
	defaultSize     = 4
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 1 << 16
)

// MoveLog reads recorded moves, typically a *storage.Store.
type MoveLog interface {
	MovesForSession(ctx context.Context, sessionID string) ([]storage.MoveRecord, error)
}

// Option configures a Server.
type Option func(*Server)

// WithMoveLog enables GET /api/sessions/{id}/moves.
func WithMoveLog(l MoveLog) Option {
	return func(s *Server) {
		s.moves = l
	}
}

// WithDefaultSize sets the grid size used when a create request omits it.
func WithDefaultSize(size int) Option {
	return func(s *Server) {
		s.defaultSize = size
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server is the REST API server.
type Server struct {
	sessions    *session.Manager
	hub         *websocket.Hub
	moves       MoveLog
	router      *mux.Router
	logger      *log.Logger
	defaultSize int
}

// NewServer creates a server for the sessions of m. hub may be nil, which
// disables /ws.
func NewServer(m *session.Manager, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		sessions:    m,
		hub:         hub,
		router:      mux.NewRouter(),
		defaultSize: defaultSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/move", s.handleMove).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/moves", s.handleMoveLog).Methods(http.MethodGet)

	s.router.HandleFunc("/ws/{id}", s.handleWebSocket)
	s.router.Use(s.logRequests)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Stopping API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "took", time.Since(start))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondSessionError maps session errors to status codes.
func respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrGameOver):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidSize):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

type createRequest struct {
	Size *int  `json:"size,omitempty"`
	Seed int64 `json:"seed,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	size := s.defaultSize
	if req.Size != nil {
		size = *req.Size
	}

	sess, err := s.sessions.Create(r.Context(), size, req.Seed)
	if err != nil {
		respondSessionError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		respondSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dir, err := powers.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := s.sessions.Move(r.Context(), mux.Vars(r)["id"], dir)
	if err != nil {
		respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}

type moveLogEntry struct {
	MoveNumber int                  `json:"move_number"`
	Direction  string               `json:"direction"`
	Score      int                  `json:"score"`
	Shifts     []shiftEntry         `json:"shifts"`
	NewTile    *powers.TilePosition `json:"new_tile"`
	CreatedAt  time.Time            `json:"created_at"`
}

type shiftEntry struct {
	Seq   int  `json:"seq"`
	Line  int  `json:"line"`
	From  int  `json:"from"`
	With  *int `json:"with,omitempty"`
	To    int  `json:"to"`
	Value int  `json:"value"`
	Merge bool `json:"merge"`
}

func (s *Server) handleMoveLog(w http.ResponseWriter, r *http.Request) {
	if s.moves == nil {
		respondError(w, http.StatusNotImplemented, "move log is not enabled")
		return
	}

	id := mux.Vars(r)["id"]
	records, err := s.moves.MovesForSession(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	entries := make([]moveLogEntry, 0, len(records))
	for _, rec := range records {
		shifts := make([]shiftEntry, 0, len(rec.Shifts))
		for _, sh := range rec.Shifts {
			shifts = append(shifts, shiftEntry(sh))
		}
		entries = append(entries, moveLogEntry{
			MoveNumber: rec.MoveNumber,
			Direction:  rec.Direction,
			Score:      rec.Score,
			Shifts:     shifts,
			NewTile:    rec.NewTile,
			CreatedAt:  rec.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotImplemented, "websocket is not enabled")
		return
	}

	id := mux.Vars(r)["id"]
	if _, err := s.sessions.Get(id); err != nil {
		respondSessionError(w, err)
		return
	}
	s.hub.ServeWS(w, r, id)
}
