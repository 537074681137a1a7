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

// Package mech maintains the process-wide registry of mechanism providers.
// Applications register providers at startup and resolve them by name;
// services use the registry instead of threading provider instances through
// every layer.
package mech

import (
	"errors"
	"sort"
	"sync"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

var (
	// ErrProviderRequired is returned when a nil provider is registered.
	ErrProviderRequired = errors.New("mech: provider is required")

	// ErrProviderNotFound is returned when no provider is registered under
	// the requested name.
	ErrProviderNotFound = errors.New("mech: provider not found")

	// ErrAlreadyRegistered is returned when a provider name is reused.
	ErrAlreadyRegistered = errors.New("mech: provider already registered")
)

var (
	mu        sync.RWMutex
	providers = make(map[string]types.Provider)
	defName   string
)

// Register adds a provider to the registry under its own Name. The first
// registered provider becomes the default until SetDefault overrides it.
func Register(p types.Provider) error {
	if p == nil {
		return ErrProviderRequired
	}

	mu.Lock()
	defer mu.Unlock()

	if _, ok := providers[p.Name()]; ok {
		return ErrAlreadyRegistered
	}
	providers[p.Name()] = p
	if defName == "" {
		defName = p.Name()
	}
	return nil
}

// SetDefault selects the provider returned by Default.
func SetDefault(name string) error {
	mu.Lock()
	defer mu.Unlock()

	if _, ok := providers[name]; !ok {
		return ErrProviderNotFound
	}
	defName = name
	return nil
}

// Get resolves a provider by registry name.
func Get(name string) (types.Provider, error) {
	mu.RLock()
	defer mu.RUnlock()

	p, ok := providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// Default returns the default provider.
func Default() (types.Provider, error) {
	mu.RLock()
	defer mu.RUnlock()

	if defName == "" {
		return nil, ErrProviderNotFound
	}
	return providers[defName], nil
}

// Providers lists the registered provider names in stable order.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the registry. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	providers = make(map[string]types.Provider)
	defName = ""
}
