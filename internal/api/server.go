package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docask/internal/agent"
	"github.com/dgallion1/docask/internal/config"
	"github.com/dgallion1/docask/internal/docstore"
	"github.com/dgallion1/docask/internal/ingest"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for docask.
type Server struct {
	router       chi.Router
	store        *docstore.Store
	ingester     *ingest.Service
	orchestrator *agent.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store *docstore.Store, ingester *ingest.Service, orch *agent.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:        store,
		ingester:     ingester,
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Post("/ingest", s.handleIngest)
	r.Post("/ask", s.handleAsk)
	r.Get("/document-info", s.handleDocumentInfo)
	r.Delete("/clear-document", s.handleClearDocument)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func jsonResponse(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
