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

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	TLS       TLSConfig       `yaml:"tls"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Health    HealthConfig    `yaml:"health"`
	Default   DefaultConfig   `yaml:"default_provider"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TLSConfig controls TLS/SSL settings
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// AuthConfig controls authentication and authorization
type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"` // noop, apikey, jwt

	// API Key authentication
	APIKeys map[string]APIKeyConfig `yaml:"api_keys,omitempty"` // key -> config mapping

	// JWT authentication
	JWT *JWTConfig `yaml:"jwt,omitempty"`
}

// APIKeyConfig represents an API key and its associated identity
type APIKeyConfig struct {
	Subject string   `yaml:"subject"`
	Roles   []string `yaml:"roles,omitempty"`
}

// JWTConfig controls JWT authentication
type JWTConfig struct {
	Secret   string   `yaml:"secret"`
	Issuer   string   `yaml:"issuer"`
	Audience []string `yaml:"audience"`
}

// RateLimitConfig controls rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
}

// MetricsConfig controls the metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HealthConfig controls the health check endpoints
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig names the default mechanism provider for name operations
type DefaultConfig string

// ProvidersConfig contains configuration for all mechanism providers
type ProvidersConfig struct {
	Software *SoftwareConfig `yaml:"software,omitempty"`
}

// SoftwareConfig contains software provider settings
type SoftwareConfig struct {
	Enabled bool   `yaml:"enabled"`
	Realm   string `yaml:"realm"`
}

// Default returns a configuration populated with sane defaults: the
// in-memory software provider on localhost with auth disabled.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			Enabled: false,
			Type:    "noop",
		},
		RateLimit: RateLimitConfig{
			Enabled:        false,
			RequestsPerMin: 600,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Health: HealthConfig{
			Enabled: true,
			Path:    "/health",
		},
		Default: "software",
		Providers: ProvidersConfig{
			Software: &SoftwareConfig{
				Enabled: true,
			},
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable
// overrides. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("GSSNAME_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if restPort := os.Getenv("GSSNAME_PORT"); restPort != "" {
		port, err := strconv.Atoi(restPort)
		if err != nil {
			log.Printf("Warning: invalid GSSNAME_PORT value %q, using default %d: %v",
				restPort, cfg.Server.Port, err)
		} else if port < 1 || port > 65535 {
			log.Printf("Warning: invalid GSSNAME_PORT value %q (out of range 1-65535), using default %d",
				restPort, cfg.Server.Port)
		} else {
			cfg.Server.Port = port
		}
	}

	if level := os.Getenv("GSSNAME_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("GSSNAME_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if realm := os.Getenv("GSSNAME_REALM"); realm != "" && cfg.Providers.Software != nil {
		cfg.Providers.Software.Realm = realm
	}

	if secret := os.Getenv("GSSNAME_JWT_SECRET"); secret != "" && cfg.Auth.JWT != nil {
		cfg.Auth.JWT.Secret = secret
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.TLS.Enabled {
		if c.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert_file is required when TLS is enabled")
		}
		if c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key_file is required when TLS is enabled")
		}
	}

	if c.Auth.Enabled {
		switch strings.ToLower(c.Auth.Type) {
		case "noop":
		case "apikey":
			if len(c.Auth.APIKeys) == 0 {
				return fmt.Errorf("auth type apikey requires at least one api_keys entry")
			}
		case "jwt":
			if c.Auth.JWT == nil || c.Auth.JWT.Secret == "" {
				return fmt.Errorf("auth type jwt requires a jwt secret")
			}
		default:
			return fmt.Errorf("invalid auth type: %s (must be noop, apikey, or jwt)", c.Auth.Type)
		}
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin < 1 {
		return fmt.Errorf("ratelimit requests_per_min must be positive")
	}

	if string(c.Default) == "" {
		return fmt.Errorf("default_provider must be specified")
	}

	if len(c.EnabledProviders()) == 0 {
		return fmt.Errorf("at least one provider must be enabled")
	}

	return nil
}

// EnabledProviders returns a list of enabled mechanism provider names
func (c *Config) EnabledProviders() []string {
	var providers []string
	if c.Providers.Software != nil && c.Providers.Software.Enabled {
		providers = append(providers, "software")
	}
	return providers
}
