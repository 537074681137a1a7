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

// Package name wraps the opaque principal-name handles issued by a security
// mechanism provider in a single-owner lifecycle.
//
// A Name owns at most one live provider handle. Ownership moves, it is never
// copied: Adopt transfers a handle between wrappers, and every populated
// Name came from exactly one successful provider call (import, canonicalize
// or duplicate). Release is idempotent and resets the wrapper to its
// sentinel state even when the provider reports a failure, so a handle is
// released at most once and never leaked in a retryable state.
//
// Go has no destructors, so release is explicit: callers must arrange
// Release on every exit path, typically with defer. A released or
// zero-value Name is safe to Release again; the call is a no-op.
//
// A Name is not safe for concurrent use. Callers must serialize access to a
// single instance; distinct instances are independent.
package name

import (
	"errors"

	"github.com/jeremyhahn/go-gssname/pkg/status"
	"github.com/jeremyhahn/go-gssname/pkg/types"
)

var (
	// ErrNilName is returned when an operation requires a populated Name
	// but received a nil or sentinel-state wrapper.
	ErrNilName = errors.New("name: nil or empty name")

	// ErrProviderRequired is returned when a constructor is called without
	// a mechanism provider.
	ErrProviderRequired = errors.New("name: provider is required")
)

// Name is a move-only wrapper around a provider name handle. The zero value
// is unusable; construct instances with New, Import, Adopt or the
// handle-producing operations.
type Name struct {
	provider types.Provider
	handle   types.NameHandle
}

// New returns an empty Name bound to p, holding the sentinel handle.
func New(p types.Provider) *Name {
	return &Name{provider: p, handle: types.NoName}
}

// Import converts a raw byte sequence plus an optional name-type OID into a
// populated Name. A nil nameType selects the provider's unspecified
// default; it is passed through as the provider's absent sentinel, never as
// an empty value.
func Import(p types.Provider, raw []byte, nameType types.OID) (*Name, error) {
	if p == nil {
		return nil, ErrProviderRequired
	}

	h, st := p.ImportName(raw, nameType)
	if !st.Ok() {
		return nil, status.New("import_name", p, st, nil)
	}
	return &Name{provider: p, handle: h}, nil
}

// Adopt constructs a new Name that takes ownership of other's handle. The
// source is left in the sentinel state and performs no release when it is
// later released itself. The handle is never duplicated; at most one
// wrapper owns it at any time. Adopt fails only on an invalid source, never
// with a provider error.
func Adopt(other *Name) (*Name, error) {
	if other == nil || other.provider == nil {
		return nil, ErrNilName
	}

	n := &Name{provider: other.provider, handle: other.handle}
	other.handle = types.NoName
	return n, nil
}

// Valid reports whether the Name currently owns a live handle.
func (n *Name) Valid() bool {
	return n != nil && n.handle != types.NoName
}

// Provider returns the mechanism provider the Name is bound to.
func (n *Name) Provider() types.Provider {
	if n == nil {
		return nil
	}
	return n.provider
}

// Display converts the name back to its textual form. When wantType is
// false the provider is not asked for a name type and the result's NameType
// is always nil. A provider that reports success but declines to supply a
// type yields a nil NameType rather than an error.
func (n *Name) Display(wantType bool) (types.DisplayResult, error) {
	if !n.Valid() {
		return types.DisplayResult{}, ErrNilName
	}

	raw, nt, st := n.provider.DisplayName(n.handle, wantType)
	if !st.Ok() {
		return types.DisplayResult{}, status.New("display_name", n.provider, st, nil)
	}
	if !wantType {
		nt = nil
	}
	return types.DisplayResult{Name: raw, NameType: nt}, nil
}

// Compare reports whether two names refer to the same identity. Two absent
// names (nil wrapper or sentinel handle) are vacuously equal; an absent
// name never equals a present one. The provider is only consulted when both
// names are present.
func Compare(a, b *Name) (bool, error) {
	switch {
	case !a.Valid() && !b.Valid():
		return true, nil
	case !a.Valid() || !b.Valid():
		return false, nil
	}

	eq, st := a.provider.CompareName(a.handle, b.handle)
	if !st.Ok() {
		return false, status.New("compare_name", a.provider, st, nil)
	}
	return eq, nil
}

// Export produces the canonical, directly-comparable byte form of the name.
// The name must be a mechanism name, i.e. previously produced by
// Canonicalize or imported from an exported blob; passing a generic name
// fails with a status.ErrMechanismNameRequired class report from the
// provider. The precondition is the caller's responsibility and is not
// checked here.
func (n *Name) Export() ([]byte, error) {
	if !n.Valid() {
		return nil, ErrNilName
	}

	blob, st := n.provider.ExportName(n.handle)
	if !st.Ok() {
		return nil, status.New("export_name", n.provider, st, nil)
	}
	return blob, nil
}

// Canonicalize binds the name to one mechanism, producing a new,
// independent Name. The result is a distinct handle, never an alias of the
// source; both must be released.
func (n *Name) Canonicalize(mech types.OID) (*Name, error) {
	if !n.Valid() {
		return nil, ErrNilName
	}

	h, st := n.provider.CanonicalizeName(n.handle, mech)
	if !st.Ok() {
		return nil, status.New("canonicalize_name", n.provider, st, mech)
	}
	return &Name{provider: n.provider, handle: h}, nil
}

// Duplicate produces an independent Name referencing an equivalent
// identity. The two names are never ownership-aliased.
func (n *Name) Duplicate() (*Name, error) {
	if !n.Valid() {
		return nil, ErrNilName
	}

	h, st := n.provider.DuplicateName(n.handle)
	if !st.Ok() {
		return nil, status.New("duplicate_name", n.provider, st, nil)
	}
	return &Name{provider: n.provider, handle: h}, nil
}

// Release frees the provider resources behind the handle. The wrapper is
// reset to the sentinel state unconditionally: a provider failure is
// surfaced as a decoded report but the resource is considered gone either
// way, so release is never retried and the handle can never double-free.
// Releasing a sentinel or nil Name is a no-op.
func (n *Name) Release() error {
	if !n.Valid() {
		return nil
	}

	h := n.handle
	n.handle = types.NoName

	if st := n.provider.ReleaseName(h); !st.Ok() {
		return status.New("release_name", n.provider, st, nil)
	}
	return nil
}
