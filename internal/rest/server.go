// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gssname.
//
// go-gssname is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package rest exposes the name service over HTTP. Names imported through
// the API live in a server-side handle table keyed by opaque IDs; DELETE
// releases the provider handle.
package rest

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyhahn/go-gssname/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Server represents the REST API server.
type Server struct {
	server        *http.Server
	handlers      *HandlerContext
	port          int
	tlsConfig     *tls.Config
	authenticator Authenticator
	limiter       *rate.Limiter
	metricsPath   string
	logger        *logging.Logger
}

// Config holds the REST server configuration.
type Config struct {
	// Port is the HTTP port to listen on (default: 8080)
	Port int

	// Version is the API version string
	Version string

	// TLSConfig is the TLS configuration for HTTPS (optional)
	TLSConfig *tls.Config

	// Authenticator is the authentication adapter (optional, defaults to NoOp)
	Authenticator Authenticator

	// Logger is the logging adapter (optional)
	Logger *logging.Logger

	// RequestsPerMin enables rate limiting when positive
	RequestsPerMin int

	// MetricsPath exposes the Prometheus endpoint when non-empty
	MetricsPath string

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = NewNoOpAuthenticator()
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), cfg.RequestsPerMin)
	}

	server := &Server{
		handlers:      NewHandlerContext(cfg.Version),
		port:          cfg.Port,
		tlsConfig:     cfg.TLSConfig,
		authenticator: authenticator,
		limiter:       limiter,
		metricsPath:   cfg.MetricsPath,
		logger:        log,
	}

	router := server.setupRouter()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		TLSConfig:    cfg.TLSConfig,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(s.RecoveryMiddleware())
	r.Use(s.CorrelationMiddleware()) // Add correlation ID before logging
	r.Use(s.LoggingMiddleware())
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware)
	if s.limiter != nil {
		r.Use(s.RateLimitMiddleware(s.limiter))
	}

	// Legacy health endpoint (backwards compatibility)
	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)

	// Kubernetes-style health probes (no auth required)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	// Prometheus metrics (no auth required)
	if s.metricsPath != "" {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	// API v1 routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.AuthenticationMiddleware())

		// Provider endpoints
		r.Get("/providers", s.handlers.ListProvidersHandler)
		r.Get("/mechanisms", s.handlers.ListMechanismsHandler)

		// Name endpoints
		r.Post("/names", s.handlers.ImportNameHandler)
		r.Get("/names/{id}", s.handlers.GetNameHandler)
		r.Delete("/names/{id}", s.handlers.DeleteNameHandler)

		// Name operation endpoints
		r.Post("/names/{id}/compare", s.handlers.CompareNamesHandler)
		r.Post("/names/{id}/export", s.handlers.ExportNameHandler)
		r.Post("/names/{id}/canonicalize", s.handlers.CanonicalizeNameHandler)
		r.Post("/names/{id}/duplicate", s.handlers.DuplicateNameHandler)
	})

	return r
}

// Start starts the REST API server.
func (s *Server) Start() error {
	if s.tlsConfig != nil {
		s.logger.Info("Starting HTTPS server",
			"port", s.port,
			"auth", s.authenticator.Name())

		if err := s.server.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTPS server: %w", err)
		}
	} else {
		s.logger.Info("Starting HTTP server",
			"port", s.port,
			"auth", s.authenticator.Name())

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}

	return nil
}

// Stop gracefully stops the REST API server and releases every name handle
// remaining in the table.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown server: %v", err)
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.handlers.Store().ReleaseAll()

	s.logger.Info("Server stopped")
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Handlers returns the handler context, primarily for tests.
func (s *Server) Handlers() *HandlerContext {
	return s.handlers
}

// SetHealthChecker sets the health checker for the server.
func (s *Server) SetHealthChecker(checker HealthChecker) {
	s.handlers.SetHealthChecker(checker)
}
