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
	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// Minor status codes reported by the software provider.
const (
	minorEmptyName uint32 = iota + 1
	minorEmbeddedNul
	minorBadHostBased
	minorUnknownNameType
	minorUnknownHandle
	minorUnknownMech
	minorNotMechName
	minorMalformedToken
)

// minorMessages maps each minor code to its ordered message chain. Several
// codes carry more than one message to exercise the continuation protocol
// the way real mechanisms do.
var minorMessages = map[uint32][]string{
	0:                    {"No error"},
	minorEmptyName:       {"Principal name is empty"},
	minorEmbeddedNul:     {"Principal name contains an embedded NUL octet"},
	minorBadHostBased:    {"Host-based service name is missing the @ separator", "Expected the form service@hostname"},
	minorUnknownNameType: {"Name type OID is not supported by this mechanism"},
	minorUnknownHandle:   {"Name handle is not live", "The handle was never issued or has already been released"},
	minorUnknownMech:     {"Mechanism OID is not supported by this provider"},
	minorNotMechName:     {"Name has not been canonicalized for a mechanism"},
	minorMalformedToken:  {"Exported name token is malformed"},
}

// callingMessages covers the calling-error field of a major code.
var callingMessages = map[uint32]string{
	1: "A required input parameter could not be read",
	2: "A required output parameter could not be written",
	3: "A parameter was malformed",
}

// routineMessages covers the routine-error field of a major code.
var routineMessages = map[uint32]string{
	types.RoutineBadMech:             "An unsupported mechanism was requested",
	types.RoutineBadName:             "An invalid name was supplied",
	types.RoutineBadNameType:         "A supplied name was of an unsupported type",
	types.RoutineBadBindings:         "Incorrect channel bindings were supplied",
	types.RoutineBadStatus:           "An invalid status code was supplied",
	types.RoutineBadMIC:              "A token had an invalid MIC",
	types.RoutineNoCred:              "No credentials were supplied",
	types.RoutineNoContext:           "No context has been established",
	types.RoutineDefectiveToken:      "A token was invalid",
	types.RoutineDefectiveCredential: "A credential was invalid",
	types.RoutineCredentialsExpired:  "The referenced credentials have expired",
	types.RoutineContextExpired:      "The context has expired",
	types.RoutineFailure:             "Unspecified GSS failure",
	types.RoutineBadQOP:              "The quality-of-protection requested could not be provided",
	types.RoutineUnauthorized:        "The operation is forbidden",
	types.RoutineUnavailable:         "The operation or option is unavailable",
	types.RoutineDuplicateElement:    "The requested credential element already exists",
	types.RoutineNameNotMN:           "The provided name was not a mechanism name",
}

// supplementaryMessages covers the supplementary-information bits, lowest
// bit first.
var supplementaryMessages = []string{
	"The routine must be called again to complete its function",
	"The token was a duplicate of an earlier token",
	"The token's validity period has expired",
	"A later token has already been processed",
	"An expected per-message token was not received",
}

// DisplayStatus retrieves one message for a status code, driving the
// continuation cursor across the code's full message chain. Major codes
// decompose into calling, routine and supplementary parts, each with its
// own message, matching how native mechanisms enumerate them. Unknown codes
// report a BadStatus failure so callers degrade to placeholder text.
func (p *Provider) DisplayStatus(code uint32, kind types.StatusKind, mech types.OID, msgContext uint32) ([]byte, uint32, bool, types.Status) {
	var chain []string
	switch kind {
	case types.GSSCode:
		chain = majorChain(code)
	case types.MechCode:
		chain = minorMessages[code]
	default:
		return nil, 0, false, types.Status{
			Major: types.RoutineBadStatus << types.RoutineErrorShift,
			Minor: 0,
		}
	}

	if chain == nil || int(msgContext) >= len(chain) {
		return nil, 0, false, types.Status{
			Major: types.RoutineBadStatus << types.RoutineErrorShift,
			Minor: 0,
		}
	}

	msg := []byte(chain[msgContext])
	if int(msgContext) == len(chain)-1 {
		return msg, 0, false, types.Status{}
	}
	return msg, msgContext + 1, true, types.Status{}
}

// majorChain decomposes a major code into its ordered message chain, or nil
// when any component is unknown.
func majorChain(code uint32) []string {
	if code == types.StatusComplete {
		return []string{"The routine completed successfully"}
	}

	var chain []string
	if c := types.CallingError(code); c != 0 {
		msg, ok := callingMessages[c]
		if !ok {
			return nil
		}
		chain = append(chain, msg)
	}
	if r := types.RoutineError(code); r != 0 {
		msg, ok := routineMessages[r]
		if !ok {
			return nil
		}
		chain = append(chain, msg)
	}
	supp := code & types.SupplementaryMask
	for bit, msg := range supplementaryMessages {
		if supp&(1<<bit) != 0 {
			chain = append(chain, msg)
			supp &^= 1 << bit
		}
	}
	if supp != 0 || chain == nil {
		return nil
	}
	return chain
}
