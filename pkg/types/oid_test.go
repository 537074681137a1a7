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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOIDRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		dotted string
	}{
		{"krb5 mechanism", "1.2.840.113554.1.2.2"},
		{"hostbased service", "1.2.840.113554.1.2.1.4"},
		{"export name", "1.3.6.1.5.6.4"},
		{"anonymous", "1.3.6.1.5.6.3"},
		{"joint arc", "2.16.840.1.113730.3.4.9"},
		{"minimal", "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oid, err := ParseOID(tt.dotted)
			require.NoError(t, err)
			assert.Equal(t, tt.dotted, oid.DotString())
		})
	}
}

func TestParseOIDKnownEncoding(t *testing.T) {
	// The Kerberos v5 mechanism OID has a well-known DER encoding.
	oid, err := ParseOID("1.2.840.113554.1.2.2")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x12, 0x01, 0x02, 0x02}, []byte(oid))
}

func TestParseOIDInvalid(t *testing.T) {
	tests := []struct {
		name   string
		dotted string
	}{
		{"empty", ""},
		{"single arc", "1"},
		{"non numeric", "1.two.3"},
		{"first arc too large", "3.1"},
		{"second arc out of range", "1.40"},
		{"trailing dot", "1.2."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOID(tt.dotted)
			assert.ErrorIs(t, err, ErrInvalidOID)
		})
	}
}

func TestMustOIDPanics(t *testing.T) {
	assert.Panics(t, func() { MustOID("not-an-oid") })
}

func TestOIDEqual(t *testing.T) {
	krb5 := MustOID("1.2.840.113554.1.2.2")
	other := MustOID("1.2.840.113554.1.2.1.1")

	assert.True(t, krb5.Equal(MustOID("1.2.840.113554.1.2.2")))
	assert.False(t, krb5.Equal(other))

	// Absent OIDs equal each other but never a present value.
	var absent OID
	assert.True(t, absent.Equal(nil))
	assert.False(t, absent.Equal(krb5))
	assert.False(t, krb5.Equal(nil))

	// An empty-but-present OID is not the absent sentinel.
	empty := OID{}
	assert.False(t, empty.IsAbsent())
	assert.True(t, absent.IsAbsent())
}

func TestDotStringMalformed(t *testing.T) {
	// Truncated base-128 arc (continuation bit set on the final byte).
	bad := OID{0x2a, 0x86}
	assert.Equal(t, "", bad.DotString())
	assert.Equal(t, "", OID(nil).DotString())
}

func TestRoutineErrorExtraction(t *testing.T) {
	assert.Equal(t, RoutineBadName, RoutineError(StatusBadName))
	assert.Equal(t, RoutineNameNotMN, RoutineError(StatusNameNotMN))
	assert.Equal(t, uint32(0), RoutineError(13)) // supplementary bits only
	assert.Equal(t, uint32(1), CallingError(1<<CallingErrorShift))
}

func TestStatusOk(t *testing.T) {
	assert.True(t, Status{}.Ok())
	assert.False(t, Status{Major: StatusFailure}.Ok())
	assert.False(t, Status{Major: 13}.Ok())
}

func TestStatusKindString(t *testing.T) {
	assert.Equal(t, "major", GSSCode.String())
	assert.Equal(t, "minor", MechCode.String())
	assert.Equal(t, "unknown", StatusKind(42).String())
}
