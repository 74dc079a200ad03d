package api

import (
	"encoding/json"
	"net/http"

	"keepwarm/internal/generator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Server exposes the generator's state over HTTP so operators can see
// what the daemon is doing without grepping logs.
type Server struct {
	logger *logrus.Logger
	gen    *generator.Generator
	router *mux.Router
}

// New creates the status API server.
func New(gen *generator.Generator, logger *logrus.Logger) *Server {
	server := &Server{
		logger: logger,
		gen:    gen,
		router: mux.NewRouter(),
	}
	server.setupRoutes()
	return server
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/resources", s.handleResources).Methods("GET")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	CyclesCompleted int               `json:"cycles_completed"`
	LastCycle       *generator.Report `json:"last_cycle,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	last, cycles := s.gen.Status()
	s.writeJSON(w, http.StatusOK, statusResponse{
		CyclesCompleted: cycles,
		LastCycle:       last,
	})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	snapshot, err := TakeSnapshot()
	if err != nil {
		s.logger.WithError(err).Error("Failed to collect resource snapshot")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
