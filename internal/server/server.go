// Package server assembles the libroteca HTTP API: it opens the
// stores, wires the feature packages onto one chi router and owns the
// listener lifecycle.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/libroteca/libroteca/internal/activity"
	"github.com/libroteca/libroteca/internal/agents"
	"github.com/libroteca/libroteca/internal/chat"
	"github.com/libroteca/libroteca/internal/config"
	"github.com/libroteca/libroteca/internal/embeddings"
	"github.com/libroteca/libroteca/internal/ingest"
	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/llm"
	"github.com/libroteca/libroteca/internal/taxonomy"
	"github.com/libroteca/libroteca/internal/vectordb"
)

// Server is the libroteca web server with all stores attached.
type Server struct {
	cfg        *config.Config
	taxonomy   *taxonomy.Store
	library    *library.Registry
	agents     *agents.Registry
	activityDB *activity.DB
	session    *agents.Session
	router     chi.Router
	httpServer *http.Server
}

// New opens every store under cfg.DataDir and builds the router.
func New(cfg *config.Config, embedder embeddings.Embedder, provider llm.Provider) (*Server, error) {
	tax, err := taxonomy.Open(filepath.Join(cfg.DataDir, "categories.json"))
	if err != nil {
		return nil, fmt.Errorf("opening taxonomy: %w", err)
	}

	lib, err := library.Open(filepath.Join(cfg.DataDir, "metadata.json"), tax)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}

	agentReg, err := agents.Open(filepath.Join(cfg.DataDir, "saved_agents.json"))
	if err != nil {
		return nil, fmt.Errorf("opening agents: %w", err)
	}

	activityDB, err := activity.Open(filepath.Join(cfg.DataDir, "library.db"))
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}

	transcripts, err := chat.NewTranscriptStore(filepath.Join(cfg.DataDir, "chat_history"))
	if err != nil {
		return nil, fmt.Errorf("opening transcripts: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		taxonomy:   tax,
		library:    lib,
		agents:     agentReg,
		activityDB: activityDB,
		session:    agents.NewSession(),
	}

	opener := func(path string) (vectordb.Index, error) {
		return vectordb.OpenChromemIndex(path, embedder)
	}

	events := activity.NewStore(activityDB)
	coordinator := ingest.NewCoordinator(lib, embedder, cfg.DataDir, cfg.ChunkSize, cfg.ChunkOverlap, events)
	chatService := chat.NewService(agentReg, lib, opener, provider, transcripts, events)

	s.router = s.buildRouter(coordinator, chatService, events, opener)
	return s, nil
}

func (s *Server) buildRouter(coordinator *ingest.Coordinator, chatService *chat.Service, events *activity.Store, opener agents.IndexOpener) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	library.RegisterRoutes(r, s.library, s.taxonomy)
	ingest.RegisterRoutes(r, coordinator, s.cfg.MaxUploadMB)
	agents.RegisterRoutes(r, s.agents, s.library, s.session, opener, events)
	chat.RegisterRoutes(r, chatService)
	activity.RegisterRoutes(r, events, s.library, s.taxonomy)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Library returns the document registry.
func (s *Server) Library() *library.Registry { return s.library }

// Agents returns the agent registry.
func (s *Server) Agents() *agents.Registry { return s.agents }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("libroteca server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.activityDB.Close()
}
