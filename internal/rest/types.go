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

package rest

// ImportNameRequest is the request body for POST /api/v1/names.
type ImportNameRequest struct {
	// Name is the printable name to import (e.g. "alice@EXAMPLE.COM")
	Name string `json:"name"`
	// NameType is the dotted-decimal name type OID (optional)
	NameType string `json:"name_type,omitempty"`
	// Provider selects the mechanism provider (optional, uses the default)
	Provider string `json:"provider,omitempty"`
}

// NameResponse describes an imported name handle.
type NameResponse struct {
	// ID is the server-assigned identifier for the name handle
	ID string `json:"id"`
	// Name is the printable form of the name
	Name string `json:"name"`
	// NameType is the dotted-decimal name type OID, empty if unspecified
	NameType string `json:"name_type,omitempty"`
	// Provider is the mechanism provider that owns the handle
	Provider string `json:"provider"`
}

// CompareNamesRequest is the request body for POST /api/v1/names/{id}/compare.
type CompareNamesRequest struct {
	// OtherID is the identifier of the name to compare against
	OtherID string `json:"other_id"`
}

// CompareNamesResponse reports whether two names refer to the same entity.
type CompareNamesResponse struct {
	Equal bool `json:"equal"`
}

// ExportNameResponse carries the mechanism-name export token.
type ExportNameResponse struct {
	// Token is the base64-encoded contiguous export token
	Token string `json:"token"`
}

// CanonicalizeNameRequest is the request body for POST /api/v1/names/{id}/canonicalize.
type CanonicalizeNameRequest struct {
	// Mechanism is the dotted-decimal mechanism OID (optional, defaults to
	// the provider's preferred mechanism)
	Mechanism string `json:"mechanism,omitempty"`
}

// MechanismsResponse lists the mechanism OIDs a provider supports.
type MechanismsResponse struct {
	Provider   string   `json:"provider"`
	Mechanisms []string `json:"mechanisms"`
}

// ListProvidersResponse lists the registered mechanism providers.
type ListProvidersResponse struct {
	Providers []string `json:"providers"`
	Default   string   `json:"default,omitempty"`
}

// HealthResponse represents the legacy health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`

	// Major and Minor carry the mechanism status codes when the failure
	// originated in a name operation.
	Major uint32 `json:"major,omitempty"`
	Minor uint32 `json:"minor,omitempty"`
	// Details contains the decoded status message chains
	Details []string `json:"details,omitempty"`
}
