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

package software

import (
	"errors"
	"strings"
)

// DefaultRealm is used when no realm is configured.
const DefaultRealm = "EXAMPLE.COM"

// ErrInvalidRealm is returned when the configured realm is malformed.
var ErrInvalidRealm = errors.New("software: invalid realm")

// Config holds the software provider configuration.
type Config struct {
	// Realm is appended to realm-less principals during canonicalization.
	// Defaults to DefaultRealm.
	Realm string
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.Realm == "" {
		c.Realm = DefaultRealm
	}
	if strings.ContainsAny(c.Realm, "@/\x00") {
		return ErrInvalidRealm
	}
	return nil
}
