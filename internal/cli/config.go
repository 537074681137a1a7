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

package cli

import (
	"fmt"

	"github.com/jeremyhahn/go-gssname/pkg/mech/software"
	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Config holds global CLI configuration
type Config struct {
	// Provider is the mechanism provider name to use
	Provider string

	// Realm is the default realm applied during canonicalization
	Realm string

	// OutputFormat controls output formatting (json, text)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Provider:     "software",
		OutputFormat: "text",
	}
}

// CreateProvider creates a mechanism provider instance based on the
// configuration. CLI invocations are single-shot, so the provider is always
// constructed fresh.
func (c *Config) CreateProvider() (types.Provider, error) {
	switch c.Provider {
	case "software":
		return software.NewProvider(&software.Config{Realm: c.Realm})
	default:
		return nil, fmt.Errorf("unknown provider: %s", c.Provider)
	}
}
