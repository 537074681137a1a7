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

package status

import (
	"errors"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Failure classes. Every decoded Error unwraps to exactly one of these
// sentinels, derived from the routine-error field of its major code, so
// callers can classify failures with errors.Is.
var (
	// ErrBadName indicates a malformed or invalid name.
	ErrBadName = errors.New("gssname: bad name")

	// ErrBadNameType indicates an unsupported or invalid name-type OID.
	ErrBadNameType = errors.New("gssname: bad name type")

	// ErrBadMech indicates an unsupported or invalid mechanism OID.
	ErrBadMech = errors.New("gssname: bad mechanism")

	// ErrMechanismNameRequired indicates an operation required a
	// mechanism-bound name but received a generic one.
	ErrMechanismNameRequired = errors.New("gssname: mechanism name required")

	// ErrUnavailable indicates the provider cannot perform the operation.
	ErrUnavailable = errors.New("gssname: operation unavailable")

	// ErrProvider is the generic class for any other non-success status.
	ErrProvider = errors.New("gssname: provider error")
)

// classify maps a major status code to its failure class. The class is
// derived from the code value, never stored separately.
func classify(major uint32) error {
	switch types.RoutineError(major) {
	case types.RoutineBadName:
		return ErrBadName
	case types.RoutineBadNameType:
		return ErrBadNameType
	case types.RoutineBadMech:
		return ErrBadMech
	case types.RoutineNameNotMN:
		return ErrMechanismNameRequired
	case types.RoutineUnavailable:
		return ErrUnavailable
	default:
		return ErrProvider
	}
}
