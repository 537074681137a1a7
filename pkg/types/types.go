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

// Package types contains shared type definitions used across go-gssname,
// including object identifiers, name handles, raw status pairs and the
// mechanism provider interface. This package has no dependencies on
// pkg/name, pkg/status or pkg/mech to prevent import cycles.
package types

// NameHandle is an opaque, provider-defined reference to a principal name.
// The value is an uninterpreted token; only the provider that issued it may
// interpret it. NoName is the designated "no resource" sentinel and is never
// a valid live handle.
type NameHandle uint64

// NoName is the sentinel NameHandle denoting the absence of a name.
const NoName NameHandle = 0

// StatusKind selects which half of a status pair a message lookup refers to.
type StatusKind int

const (
	// GSSCode requests messages for a major (outcome class) status code.
	GSSCode StatusKind = iota

	// MechCode requests messages for a minor (mechanism-specific) status code.
	MechCode
)

// String returns a human-readable label for the status kind.
func (k StatusKind) String() string {
	switch k {
	case GSSCode:
		return "major"
	case MechCode:
		return "minor"
	default:
		return "unknown"
	}
}

// Status is the raw two-part status pair reported by every provider
// primitive. Major indicates the outcome class, Minor carries the
// mechanism-specific refinement. Neither value has inherent structure
// beyond provider interpretation, although providers conforming to the
// RFC 2744 layout encode calling and routine errors in the major code.
type Status struct {
	Major uint32
	Minor uint32
}

// Ok reports whether the status indicates success.
func (s Status) Ok() bool {
	return s.Major == StatusComplete
}

// Major status code layout (RFC 2744 section 3.9.1). The major code packs a
// calling error, a routine error and supplementary information bits into a
// single 32-bit value.
const (
	// StatusComplete is the successful major status code (GSS_S_COMPLETE).
	StatusComplete uint32 = 0

	// CallingErrorShift positions the calling-error field.
	CallingErrorShift = 24

	// RoutineErrorShift positions the routine-error field.
	RoutineErrorShift = 16

	// CallingErrorMask extracts the calling-error field.
	CallingErrorMask uint32 = 0xFF << CallingErrorShift

	// RoutineErrorMask extracts the routine-error field.
	RoutineErrorMask uint32 = 0xFF << RoutineErrorShift

	// SupplementaryMask extracts the supplementary-information bits.
	SupplementaryMask uint32 = 0xFFFF
)

// Routine error values (unshifted) for the major status code.
const (
	RoutineBadMech uint32 = iota + 1
	RoutineBadName
	RoutineBadNameType
	RoutineBadBindings
	RoutineBadStatus
	RoutineBadMIC
	RoutineNoCred
	RoutineNoContext
	RoutineDefectiveToken
	RoutineDefectiveCredential
	RoutineCredentialsExpired
	RoutineContextExpired
	RoutineFailure
	RoutineBadQOP
	RoutineUnauthorized
	RoutineUnavailable
	RoutineDuplicateElement
	RoutineNameNotMN
)

// Pre-shifted major status codes for the routine errors providers report
// most often on name operations.
const (
	StatusBadMech     = RoutineBadMech << RoutineErrorShift
	StatusBadName     = RoutineBadName << RoutineErrorShift
	StatusBadNameType = RoutineBadNameType << RoutineErrorShift
	StatusFailure     = RoutineFailure << RoutineErrorShift
	StatusUnavailable = RoutineUnavailable << RoutineErrorShift
	StatusNameNotMN   = RoutineNameNotMN << RoutineErrorShift
)

// RoutineError extracts the routine-error field from a major status code.
func RoutineError(major uint32) uint32 {
	return (major & RoutineErrorMask) >> RoutineErrorShift
}

// CallingError extracts the calling-error field from a major status code.
func CallingError(major uint32) uint32 {
	return (major & CallingErrorMask) >> CallingErrorShift
}

// DisplayResult holds the decoded textual form of a name. Name is an opaque
// byte sequence with no assumed text encoding. NameType is nil when a type
// was not requested or when the provider declined to report one.
type DisplayResult struct {
	Name     []byte
	NameType OID
}

// Provider is the set of primitives a security mechanism provider must
// implement. All calls are synchronous and blocking; there are no
// cancellation or timeout semantics. Every primitive reports a raw Status
// pair which callers translate into a decoded error via pkg/status.
//
// Byte sequences exchanged with the provider are uninterpreted; callers are
// responsible for any text-encoding decisions. A nil OID is the explicit
// "absent" sentinel, distinct from a present empty value.
type Provider interface {
	// Name returns the registry identifier for this provider.
	Name() string

	// ImportName converts a byte sequence plus an optional name-type OID
	// (nil for the provider's unspecified default) into a name handle.
	ImportName(name []byte, nameType OID) (NameHandle, Status)

	// DisplayName converts a handle back to its textual form. When wantType
	// is false the provider must not produce a type OID. A provider may
	// return a nil type even when one was requested.
	DisplayName(h NameHandle, wantType bool) ([]byte, OID, Status)

	// CompareName reports provider-defined equality of two live handles.
	CompareName(a, b NameHandle) (bool, Status)

	// ExportName produces the canonical, directly-comparable byte form of a
	// mechanism name. Generic names fail with a NameNotMN routine error.
	ExportName(h NameHandle) ([]byte, Status)

	// CanonicalizeName binds a generic name to one mechanism, producing a
	// new, independent handle.
	CanonicalizeName(h NameHandle, mech OID) (NameHandle, Status)

	// DuplicateName produces an independent handle referencing an
	// equivalent identity.
	DuplicateName(h NameHandle) (NameHandle, Status)

	// ReleaseName releases the resources behind a live handle. Providers
	// must tolerate exactly one release per issued handle.
	ReleaseName(h NameHandle) Status

	// DisplayStatus retrieves one human-readable message for a status code.
	// msgContext is the continuation cursor, zero on the first call. The
	// returned nextContext and more flag indicate whether further messages
	// exist for the same code.
	DisplayStatus(code uint32, kind StatusKind, mech OID, msgContext uint32) (msg []byte, nextContext uint32, more bool, st Status)

	// Mechanisms lists the mechanism OIDs this provider supports. The
	// result is a stateless snapshot; callers must not cache it.
	Mechanisms() ([]OID, Status)
}
