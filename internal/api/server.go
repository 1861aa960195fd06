package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/netlure/decoy/internal/correlate"
	"github.com/netlure/decoy/internal/store"
)

type Server struct {
	router     *chi.Mux
	port       int
	store      *store.Store
	correlator *correlate.Correlator
}

func NewServer(port int, st *store.Store, corr *correlate.Correlator) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:     router,
		port:       port,
		store:      st,
		correlator: corr,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/decoy/status", s.status)
	router.Get("/api/v1/sessions/{id}", s.sessionResult)
	router.Get("/api/v1/actors", s.actors)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "decoy",
		"status": "engaging",
	})
}

// sessionResult returns the upward-facing result payload for a session:
// identifier set, confidence, transcript, terminal reason.
func (s *Server) sessionResult(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "store not configured"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return
	}

	sess, err := s.store.LoadSession(r.Context(), id)
	if errors.Is(err, store.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		slog.Error("failed to load session", "session_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, sess.ResultPayload())
}

// actors returns cross-session identifier clusters.
func (s *Server) actors(w http.ResponseWriter, r *http.Request) {
	if s.correlator == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "correlator not configured"})
		return
	}

	clusters, err := s.correlator.Clusters(r.Context())
	if err != nil {
		slog.Error("correlation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if clusters == nil {
		clusters = []correlate.ActorCluster{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"actors": clusters})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
