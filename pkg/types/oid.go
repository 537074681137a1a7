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

package types

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OID is a DER-encoded object identifier (contents octets only, no tag or
// length). OIDs identify name types and security mechanisms and are passed
// through to the provider unmodified. A nil OID is the explicit "absent"
// sentinel; it is distinct from a present empty value and maps to the
// provider's own no-OID sentinel at the call boundary.
type OID []byte

var (
	// ErrInvalidOID is returned when a dotted OID string or DER encoding
	// cannot be parsed.
	ErrInvalidOID = errors.New("types: invalid object identifier")
)

// ParseOID converts a dotted-decimal string such as "1.2.840.113554.1.2.2"
// into its DER encoding.
func ParseOID(dotted string) (OID, error) {
	parts := strings.Split(dotted, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, dotted)
	}

	arcs := make([]uint64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, dotted)
		}
		arcs[i] = v
	}

	if arcs[0] > 2 || (arcs[0] < 2 && arcs[1] >= 40) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, dotted)
	}

	var buf bytes.Buffer
	writeBase128(&buf, arcs[0]*40+arcs[1])
	for _, arc := range arcs[2:] {
		writeBase128(&buf, arc)
	}
	return OID(buf.Bytes()), nil
}

// MustOID is like ParseOID but panics on malformed input. It is intended for
// package-level OID constants.
func MustOID(dotted string) OID {
	oid, err := ParseOID(dotted)
	if err != nil {
		panic(err)
	}
	return oid
}

// DotString renders the OID in dotted-decimal notation. The absent (nil)
// OID renders as the empty string. Malformed encodings render as the empty
// string rather than a partial value.
func (o OID) DotString() string {
	if len(o) == 0 {
		return ""
	}

	arcs, err := o.arcs()
	if err != nil {
		return ""
	}

	parts := make([]string, len(arcs))
	for i, arc := range arcs {
		parts[i] = strconv.FormatUint(arc, 10)
	}
	return strings.Join(parts, ".")
}

// Equal reports whether two OIDs have identical encodings. Two absent OIDs
// are equal; an absent OID never equals a present one.
func (o OID) Equal(other OID) bool {
	if o == nil || other == nil {
		return o == nil && other == nil
	}
	return bytes.Equal(o, other)
}

// IsAbsent reports whether the OID is the absent sentinel.
func (o OID) IsAbsent() bool {
	return o == nil
}

func (o OID) arcs() ([]uint64, error) {
	arcs := make([]uint64, 0, 8)
	var cur uint64
	var mid bool
	for _, b := range o {
		cur = cur<<7 | uint64(b&0x7F)
		if b&0x80 != 0 {
			mid = true
			continue
		}
		arcs = append(arcs, cur)
		cur = 0
		mid = false
	}
	if mid || len(arcs) == 0 {
		return nil, ErrInvalidOID
	}

	first := arcs[0]
	switch {
	case first < 40:
		arcs = append([]uint64{0, first}, arcs[1:]...)
	case first < 80:
		arcs = append([]uint64{1, first - 40}, arcs[1:]...)
	default:
		arcs = append([]uint64{2, first - 80}, arcs[1:]...)
	}
	return arcs, nil
}

func writeBase128(buf *bytes.Buffer, v uint64) {
	if v == 0 {
		buf.WriteByte(0)
		return
	}

	var tmp [10]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte(v & 0x7F)
		v >>= 7
	}
	for ; i < len(tmp)-1; i++ {
		buf.WriteByte(tmp[i] | 0x80)
	}
	buf.WriteByte(tmp[len(tmp)-1])
}

// Well-known name-type and mechanism OIDs (RFC 2744 appendix A, RFC 1964).
var (
	// NTUserName identifies a local username (GSS_C_NT_USER_NAME).
	NTUserName = MustOID("1.2.840.113554.1.2.1.1")

	// NTMachineUIDName identifies a numeric user identity
	// (GSS_C_NT_MACHINE_UID_NAME).
	NTMachineUIDName = MustOID("1.2.840.113554.1.2.1.2")

	// NTStringUIDName identifies a string form numeric user identity
	// (GSS_C_NT_STRING_UID_NAME).
	NTStringUIDName = MustOID("1.2.840.113554.1.2.1.3")

	// NTHostBasedService identifies a service@host style name
	// (GSS_C_NT_HOSTBASED_SERVICE).
	NTHostBasedService = MustOID("1.2.840.113554.1.2.1.4")

	// NTAnonymous identifies an anonymous principal (GSS_C_NT_ANONYMOUS).
	NTAnonymous = MustOID("1.3.6.1.5.6.3")

	// NTExportName identifies a previously exported canonical name blob
	// (GSS_C_NT_EXPORT_NAME).
	NTExportName = MustOID("1.3.6.1.5.6.4")

	// NTKrb5Principal identifies a Kerberos v5 principal name
	// (GSS_KRB5_NT_PRINCIPAL_NAME).
	NTKrb5Principal = MustOID("1.2.840.113554.1.2.2.1")

	// MechKrb5 is the Kerberos v5 mechanism OID.
	MechKrb5 = MustOID("1.2.840.113554.1.2.2")
)
