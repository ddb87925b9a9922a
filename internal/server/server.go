package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/specsift/specsift/internal/api"
	"github.com/specsift/specsift/internal/backends"
	"github.com/specsift/specsift/internal/config"
	"github.com/specsift/specsift/internal/extract"
	"github.com/specsift/specsift/internal/home"
	"github.com/specsift/specsift/internal/keywords"
	"github.com/specsift/specsift/internal/server/endpoints"
	"github.com/specsift/specsift/internal/svcctx"
)

// Server is the main specsift HTTP server. It owns the extraction backends
// and rebuilds them when the configuration file changes.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	homeDir    *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment.
	// Swapped wholesale on config reload; readers go through services().
	svcMu sync.RWMutex
	svcs  *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the specsift home directory (uploads, config)
	Home *home.Dir
	// Logger is the structured logger to use
	Logger *slog.Logger
	// SwaggerSpecPath overrides the OpenAPI spec location
	SwaggerSpecPath string
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		homeDir:   cfg.Home,
		logger:    cfg.Logger,
	}

	s.svcs = s.buildServices(cfg.ConfigManager.Get())

	// Rebuild backends when the config file changes
	cfg.ConfigManager.OnChange(func(c *config.Config) {
		svcs := s.buildServices(c)
		s.svcMu.Lock()
		s.svcs = svcs
		s.svcMu.Unlock()
		cfg.Logger.Info("extraction backends reloaded from config")
	})

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:        cfg.ConfigManager.Get().ListenAddr(),
		Handler:     s.withCORS(s.withServices(mux)),
		ReadTimeout: 10 * time.Minute, // large uploads
		IdleTimeout: 120 * time.Second,
	}

	return s, nil
}

// buildServices constructs the service set from a config snapshot.
func (s *Server) buildServices(cfg *config.Config) *svcctx.Services {
	bank := keywords.DefaultBank().WithExtra(cfg.Keywords.Extra)

	svcs := &svcctx.Services{
		Bank:          bank,
		ConfigManager: s.configMgr,
		Logger:        s.logger,
		Home:          s.homeDir,
	}

	if cfg.Backends.Text.Enabled {
		tc := cfg.ToTextBackendConfig()
		tc.Logger = s.logger
		svcs.TextBackend = backends.NewTextClient(tc)
	}
	if cfg.Backends.Vision.Enabled {
		vc := cfg.ToVisionBackendConfig()
		vc.Logger = s.logger
		svcs.VisionBackend = backends.NewVisionClient(vc)
	}
	if svcs.TextBackend != nil && svcs.VisionBackend != nil {
		svcs.Orchestrator = extract.New(svcs.TextBackend, svcs.VisionBackend)
	}

	return svcs
}

// services returns the current service set (thread-safe).
func (s *Server) services() *svcctx.Services {
	s.svcMu.RLock()
	defer s.svcMu.RUnlock()
	return s.svcs
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svcs := s.services(); svcs != nil {
			ctx = svcctx.WithServices(ctx, svcs)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the extraction backends are ready.
// Returns 503 Service Unavailable until both backends are configured.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svcs := s.services()
		if svcs == nil || svcs.TextBackend == nil || svcs.VisionBackend == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"extraction backends not initialized"}`))
			return
		}
		next(w, r)
	}
}
