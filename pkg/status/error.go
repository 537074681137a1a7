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
	"fmt"
	"strings"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Error is the decoded report for a failed provider operation. It carries
// both raw codes plus every human-readable message decoded for each. The
// message lists are populated eagerly at construction, so the report stays
// self-contained even if the provider state changes afterwards.
type Error struct {
	// Op is the operation that failed, e.g. "import_name".
	Op string

	// Major and Minor are the raw status codes as reported by the provider.
	Major uint32
	Minor uint32

	// MajorMessages and MinorMessages hold the full decoded message lists.
	// Each list contains at least one entry; decode failures appear as
	// placeholder text rather than truncating the list.
	MajorMessages []string
	MinorMessages []string

	class error
}

// New builds an Error for a non-success status pair reported by op. Both
// code halves are decoded immediately, each with an independent decoder
// starting at message context zero. mech may be nil when no mechanism
// applies to the failure.
func New(op string, p types.Provider, st types.Status, mech types.OID) *Error {
	return &Error{
		Op:            op,
		Major:         st.Major,
		Minor:         st.Minor,
		MajorMessages: NewMessageDecoder(p, st.Major, types.GSSCode, nil).All(),
		MinorMessages: NewMessageDecoder(p, st.Minor, types.MechCode, mech).All(),
		class:         classify(st.Major),
	}
}

// Error formats the report with both codes and both full message lists.
func (e *Error) Error() string {
	return fmt.Sprintf("gssname: %s: Major (%d): %s, Minor (%d): %s",
		e.Op,
		e.Major, strings.Join(e.MajorMessages, "; "),
		e.Minor, strings.Join(e.MinorMessages, "; "))
}

// Unwrap returns the failure class sentinel so errors.Is can classify the
// report by its major code category.
func (e *Error) Unwrap() error {
	return e.class
}

// Status returns the raw status pair the report was built from.
func (e *Error) Status() types.Status {
	return types.Status{Major: e.Major, Minor: e.Minor}
}
