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

// Package server composes the mechanism providers, health checker and REST
// transport into a single runnable name service.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-gssname/internal/config"
	"github.com/jeremyhahn/go-gssname/internal/rest"
	"github.com/jeremyhahn/go-gssname/pkg/health"
	"github.com/jeremyhahn/go-gssname/pkg/logging"
	"github.com/jeremyhahn/go-gssname/pkg/mech"
	"github.com/jeremyhahn/go-gssname/pkg/mech/software"
	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Server represents the name service with all its providers and transports.
type Server struct {
	config    *config.Config
	providers map[string]types.Provider
	logger    *slog.Logger

	restServer *rest.Server

	healthChecker *health.Checker

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	shutdownCh chan struct{}
}

// New creates a new server instance.
func New(cfg *config.Config) (*Server, error) {
	logger := setupLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:     cfg,
		providers:  make(map[string]types.Provider),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		shutdownCh: make(chan struct{}),
	}

	if err := s.initializeProviders(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	s.initializeHealth()

	return s, nil
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// getBuildVersion retrieves the version from build information
func getBuildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			if len(setting.Value) >= 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

// initializeProviders creates the enabled mechanism providers and registers
// them in the global registry.
func (s *Server) initializeProviders() error {
	s.logger.Info("Initializing mechanism providers...")

	if s.config.Providers.Software != nil && s.config.Providers.Software.Enabled {
		provider, err := software.NewProvider(&software.Config{
			Realm: s.config.Providers.Software.Realm,
		})
		if err != nil {
			return fmt.Errorf("failed to create software provider: %w", err)
		}

		if err := mech.Register(provider); err != nil {
			return fmt.Errorf("failed to register software provider: %w", err)
		}

		s.providers["software"] = provider
		s.logger.Info("Software provider initialized", "provider", "software")
	}

	if len(s.providers) == 0 {
		return fmt.Errorf("no providers initialized")
	}

	defaultProvider := string(s.config.Default)
	if _, ok := s.providers[defaultProvider]; !ok {
		for name := range s.providers {
			defaultProvider = name
			break
		}
	}
	if err := mech.SetDefault(defaultProvider); err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}

	s.logger.Info("Mechanism providers registered",
		"default_provider", defaultProvider,
		"providers", len(s.providers))

	return nil
}

// initializeHealth creates and configures the health checker with one
// readiness check per provider.
func (s *Server) initializeHealth() {
	s.logger.Info("Initializing health checker...")

	s.healthChecker = health.NewChecker()

	for name, provider := range s.providers {
		providerName := name // Capture for closure
		p := provider        // Capture for closure

		s.healthChecker.RegisterCheck(fmt.Sprintf("provider-%s", providerName), func(ctx context.Context) health.CheckResult {
			start := time.Now()

			_, st := p.Mechanisms()
			if !st.Ok() {
				return health.CheckResult{
					Name:    fmt.Sprintf("provider-%s", providerName),
					Status:  health.StatusUnhealthy,
					Message: fmt.Sprintf("Provider %s is not responding", providerName),
					Error:   fmt.Sprintf("mechanism inquiry failed with major %d", st.Major),
					Latency: time.Since(start),
				}
			}

			message := fmt.Sprintf("Provider %s is responding", providerName)
			if sp, ok := p.(*software.Provider); ok {
				message = fmt.Sprintf("Provider %s is responding (%d live handles)", providerName, sp.Live())
			}
			return health.CheckResult{
				Name:    fmt.Sprintf("provider-%s", providerName),
				Status:  health.StatusHealthy,
				Message: message,
				Latency: time.Since(start),
			}
		})
	}
}

// buildAuthenticator constructs the REST authenticator from configuration.
func (s *Server) buildAuthenticator() rest.Authenticator {
	if !s.config.Auth.Enabled {
		return rest.NewNoOpAuthenticator()
	}

	switch s.config.Auth.Type {
	case "apikey":
		keys := make(map[string]*rest.Identity, len(s.config.Auth.APIKeys))
		for key, identity := range s.config.Auth.APIKeys {
			keys[key] = &rest.Identity{
				Subject: identity.Subject,
				Roles:   identity.Roles,
			}
		}
		return rest.NewAPIKeyAuthenticator(keys)
	case "jwt":
		return rest.NewJWTAuthenticator(
			[]byte(s.config.Auth.JWT.Secret),
			s.config.Auth.JWT.Issuer,
			s.config.Auth.JWT.Audience)
	default:
		return rest.NewNoOpAuthenticator()
	}
}

// buildTLSConfig builds a crypto/tls.Config from the server configuration
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	if !s.config.TLS.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(s.config.TLS.CertFile, s.config.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Start starts the REST server and marks the service as started.
func (s *Server) Start() error {
	s.logger.Info("Starting name service...")

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return err
	}

	restConfig := &rest.Config{
		Port:          s.config.Server.Port,
		Version:       getBuildVersion(),
		TLSConfig:     tlsConfig,
		Authenticator: s.buildAuthenticator(),
		Logger:        logging.NewLogger(s.config.Logging.Level == "debug"),
	}
	if s.config.RateLimit.Enabled {
		restConfig.RequestsPerMin = s.config.RateLimit.RequestsPerMin
	}
	if s.config.Metrics.Enabled {
		restConfig.MetricsPath = s.config.Metrics.Path
	}

	s.restServer, err = rest.NewServer(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create REST server: %w", err)
	}

	if s.config.Health.Enabled {
		s.restServer.SetHealthChecker(s.healthChecker)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.restServer.Start(); err != nil {
			s.logger.Error("REST server error", slog.Any("error", err))
		}
	}()

	s.healthChecker.MarkStarted()
	s.logger.Info("Name service started", "port", s.config.Server.Port)

	return nil
}

// Shutdown gracefully shuts down the server and releases all live handles.
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down server...")

	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.restServer != nil {
		if err := s.restServer.Stop(shutdownCtx); err != nil {
			s.logger.Error("Error shutting down REST server", slog.Any("error", err))
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All servers stopped")
	case <-shutdownCtx.Done():
		s.logger.Warn("Shutdown timeout exceeded, forcing stop")
	}

	close(s.shutdownCh)
	s.logger.Info("Server shutdown complete")

	return nil
}

// WaitForShutdown blocks until the server is shut down
func (s *Server) WaitForShutdown() {
	<-s.shutdownCh
}

// RESTServer returns the REST server instance
func (s *Server) RESTServer() *rest.Server {
	return s.restServer
}

// HealthChecker returns the health checker instance
func (s *Server) HealthChecker() *health.Checker {
	return s.healthChecker
}

// SetupSignalHandler sets up signal handling for graceful shutdown
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	return ctx
}
