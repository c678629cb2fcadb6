// Package daemon serves the game state machine over a local JSON API so a
// presentation layer can drive it.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/matekkaland/internal/app"
	"github.com/felixgeelhaar/matekkaland/internal/catalog"
	"github.com/felixgeelhaar/matekkaland/internal/config"
	"github.com/felixgeelhaar/matekkaland/internal/domain"
	"github.com/felixgeelhaar/matekkaland/internal/llm"
	"github.com/felixgeelhaar/matekkaland/internal/progress"
)

// Version is reported by the status endpoint.
var Version = "0.1.0"

// maxIntentBytes bounds intent request bodies.
const maxIntentBytes = 1 << 20

// Machine is the part of the state machine the API drives.
type Machine interface {
	Snapshot() app.Snapshot
	Dispatch(in app.Intent) (app.Snapshot, bool)
}

// Server represents the daemon HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	machine Machine
	llm     llm.ProviderRegistry
	logger  *slog.Logger
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config    *config.LocalConfig
	Machine   Machine
	Providers llm.ProviderRegistry // optional
	Logger    *slog.Logger
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Machine == nil {
		return nil, errors.New("daemon: machine is required")
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultLocalConfig()
	}
	s := &Server{
		cfg:     cfg.Config,
		router:  http.NewServeMux(),
		machine: cfg.Machine,
		llm:     cfg.Providers,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.cfg.Daemon.Bind, s.cfg.Daemon.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	s.router.HandleFunc("GET /v1/state", s.handleState)
	s.router.HandleFunc("POST /v1/intents", s.handleIntent)

	s.router.HandleFunc("GET /v1/catalog", s.handleCatalog)
	s.router.HandleFunc("GET /v1/player", s.handlePlayer)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(s.logger, correlationIDMiddleware(loggingMiddleware(s.logger, s.router)))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting matek daemon", "addr", s.server.Addr, "llm_providers", s.providerNames())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down daemon...")
	return s.server.Shutdown(ctx)
}

func (s *Server) providerNames() []string {
	if s.llm == nil {
		return []string{}
	}
	return s.llm.List()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.machine.Snapshot()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":          "running",
		"version":         Version,
		"screen":          snap.Screen,
		"llm_providers":   s.providerNames(),
		"storage_backend": s.cfg.Storage.Backend,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.machine.Snapshot())
}

// IntentRequest is the envelope for POST /v1/intents.
type IntentRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IntentResponse reports the snapshot after dispatch.
type IntentResponse struct {
	Accepted bool         `json:"accepted"`
	Snapshot app.Snapshot `json:"snapshot"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxIntentBytes)).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Kind == "" {
		s.jsonError(w, http.StatusBadRequest, "kind is required", nil)
		return
	}

	intent, err := app.DecodeIntent(req.Kind, req.Payload)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid intent", err)
		return
	}

	snap, accepted := s.machine.Dispatch(intent)
	s.jsonResponse(w, http.StatusOK, IntentResponse{
		Accepted: accepted,
		Snapshot: snap,
	})
}

// CatalogResponse lists the compiled-in reference data.
type CatalogResponse struct {
	Stickers    []domain.Sticker          `json:"stickers"`
	AlbumThemes []domain.AlbumTheme       `json:"album_themes"`
	Adventures  []domain.AdventureTheme   `json:"adventures"`
	Avatars     []string                  `json:"avatars"`
	Topics      []domain.Topic            `json:"topics"`
	Designs     []domain.DesignAttributes `json:"designs"`
	Intents     []string                  `json:"intents"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, CatalogResponse{
		Stickers:    catalog.Stickers(),
		AlbumThemes: catalog.AlbumThemes(),
		Adventures:  catalog.Adventures(),
		Avatars:     catalog.Avatars(),
		Topics:      catalog.Topics(),
		Designs:     []domain.DesignAttributes{catalog.Design(domain.DesignBoy), catalog.Design(domain.DesignGirl)},
		Intents:     app.IntentKinds(),
	})
}

// PlayerResponse is the player profile with derived progress figures.
type PlayerResponse struct {
	Player  *domain.Player   `json:"player"`
	Summary progress.Summary `json:"summary"`
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	snap := s.machine.Snapshot()
	if snap.Player == nil {
		s.jsonError(w, http.StatusNotFound, "no player yet", nil)
		return
	}
	s.jsonResponse(w, http.StatusOK, PlayerResponse{
		Player:  snap.Player,
		Summary: progress.Summarize(snap.Player.Stats),
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
