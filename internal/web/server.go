// Package web is the thin I/O surface over the breadth engine: a
// read-only snapshot endpoint for the display frontend and a watchlist
// endpoint that persists and applies configuration changes. All state
// lives in the engine; handlers only copy and translate.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"breadthwatch/internal/breadth/engine"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Snapshotter is the engine's read path.
type Snapshotter interface {
	Snapshot(now time.Time, zone *time.Location) engine.Snapshot
	Symbols() []string
}

// Reconfigurer applies a new symbol set; the collector implements it.
type Reconfigurer interface {
	Reconfigure(ctx context.Context, symbols []string) error
}

// WatchlistStore persists the configured basket across restarts.
type WatchlistStore interface {
	ReplaceWatchlist(ctx context.Context, symbols []string) error
	IsHealthy(ctx context.Context) bool
}

type Server struct {
	engine  Snapshotter
	worker  Reconfigurer
	store   WatchlistStore
	zone    *time.Location
	logger  *zap.Logger
	router  *mux.Router
	handler http.Handler
	nowFunc func() time.Time
}

func NewServer(eng Snapshotter, worker Reconfigurer, store WatchlistStore,
	zone *time.Location, logger *zap.Logger) *Server {
	s := &Server{
		engine:  eng,
		worker:  worker,
		store:   store,
		zone:    zone,
		logger:  logger,
		router:  mux.NewRouter(),
		nowFunc: time.Now,
	}
	s.routes()
	s.handler = cors.Default().Handler(s.router)
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/breadth", s.handleBreadth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/watchlist", s.handleGetWatchlist).Methods(http.MethodGet)
	s.router.HandleFunc("/api/watchlist", s.handlePutWatchlist).Methods(http.MethodPut)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleBreadth(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot(s.nowFunc(), s.zone)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"symbols": s.engine.Symbols(),
	})
}

func (s *Server) handlePutWatchlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	symbols, err := NormalizeSymbols(req.Symbols)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Persist first so the new basket survives a restart even if the
	// process dies before the engine picks it up.
	if err := s.store.ReplaceWatchlist(r.Context(), symbols); err != nil {
		s.logger.Error("failed to persist watchlist", zap.Error(err))
		http.Error(w, "failed to persist watchlist", http.StatusInternalServerError)
		return
	}

	if err := s.worker.Reconfigure(r.Context(), symbols); err != nil {
		s.logger.Error("failed to apply watchlist", zap.Error(err))
		http.Error(w, "failed to apply watchlist", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbols": symbols,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthy := s.store.IsHealthy(ctx)
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"db":   healthy,
		"time": s.nowFunc().In(s.zone),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
