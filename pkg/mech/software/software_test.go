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
	"testing"

	"github.com/jeremyhahn/go-gssname/pkg/name"
	"github.com/jeremyhahn/go-gssname/pkg/status"
	"github.com/jeremyhahn/go-gssname/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(nil)
	require.NoError(t, err)
	return p
}

func TestNewProviderConfig(t *testing.T) {
	p, err := NewProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRealm, p.config.Realm)
	assert.Equal(t, ProviderName, p.Name())

	_, err = NewProvider(&Config{Realm: "bad/realm"})
	assert.ErrorIs(t, err, ErrInvalidRealm)
}

func TestImportDisplayRoundTrip(t *testing.T) {
	p := newTestProvider(t)

	tests := []struct {
		name     string
		raw      string
		nameType types.OID
	}{
		{"user name", "alice@EXAMPLE.COM", types.NTUserName},
		{"hostbased service", "host@server.example.com", types.NTHostBasedService},
		{"krb5 principal", "alice/admin@EXAMPLE.COM", types.NTKrb5Principal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := p.ImportName([]byte(tt.raw), tt.nameType)
			require.True(t, st.Ok())
			defer p.ReleaseName(h)

			raw, nt, st := p.DisplayName(h, true)
			require.True(t, st.Ok())
			assert.Equal(t, []byte(tt.raw), raw)
			assert.True(t, nt.Equal(tt.nameType))
		})
	}
}

func TestImportRejectsBadNames(t *testing.T) {
	p := newTestProvider(t)

	tests := []struct {
		name     string
		raw      string
		nameType types.OID
		major    uint32
		minor    uint32
	}{
		{"empty name", "", nil, types.StatusBadName, minorEmptyName},
		{"embedded nul", "ali\x00ce", nil, types.StatusBadName, minorEmbeddedNul},
		{"hostbased without separator", "justahost", types.NTHostBasedService, types.StatusBadName, minorBadHostBased},
		{"unknown name type", "alice", types.MustOID("1.2.3.4"), types.StatusBadNameType, minorUnknownNameType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := p.ImportName([]byte(tt.raw), tt.nameType)
			assert.Equal(t, types.NoName, h)
			assert.Equal(t, tt.major, st.Major)
			assert.Equal(t, tt.minor, st.Minor)
		})
	}
}

func TestImportAnonymousAllowsEmpty(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName(nil, types.NTAnonymous)
	require.True(t, st.Ok())
	defer p.ReleaseName(h)

	raw, nt, st := p.DisplayName(h, true)
	require.True(t, st.Ok())
	assert.Empty(t, raw)
	assert.True(t, nt.Equal(types.NTAnonymous))
}

func TestDisplayUnspecifiedTypeIsAbsent(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName([]byte("alice"), nil)
	require.True(t, st.Ok())
	defer p.ReleaseName(h)

	// The provider declines to report a type for names imported with the
	// unspecified default, even when one is requested.
	_, nt, st := p.DisplayName(h, true)
	require.True(t, st.Ok())
	assert.Nil(t, nt)
}

func TestCanonicalizeQualifiesRealm(t *testing.T) {
	p, err := NewProvider(&Config{Realm: "ATHENA.MIT.EDU"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		raw      string
		nameType types.OID
		want     string
	}{
		{"bare user", "alice", types.NTUserName, "alice@ATHENA.MIT.EDU"},
		{"realm already present", "alice@EXAMPLE.COM", types.NTUserName, "alice@EXAMPLE.COM"},
		{"hostbased service", "host@www.mit.edu", types.NTHostBasedService, "host/www.mit.edu@ATHENA.MIT.EDU"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := p.ImportName([]byte(tt.raw), tt.nameType)
			require.True(t, st.Ok())
			defer p.ReleaseName(h)

			mn, st := p.CanonicalizeName(h, types.MechKrb5)
			require.True(t, st.Ok())
			defer p.ReleaseName(mn)

			raw, nt, st := p.DisplayName(mn, true)
			require.True(t, st.Ok())
			assert.Equal(t, tt.want, string(raw))
			assert.True(t, nt.Equal(types.NTKrb5Principal))
		})
	}
}

func TestCanonicalizeUnknownMech(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName([]byte("alice"), nil)
	require.True(t, st.Ok())
	defer p.ReleaseName(h)

	_, st = p.CanonicalizeName(h, types.MustOID("1.3.6.1.5.5.2"))
	assert.Equal(t, types.StatusBadMech, st.Major)
	assert.Equal(t, minorUnknownMech, st.Minor)
}

func TestExportTokenRoundTrip(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName([]byte("alice"), types.NTUserName)
	require.True(t, st.Ok())
	defer p.ReleaseName(h)

	mn, st := p.CanonicalizeName(h, types.MechKrb5)
	require.True(t, st.Ok())
	defer p.ReleaseName(mn)

	token, st := p.ExportName(mn)
	require.True(t, st.Ok())

	// The token re-imports as a mechanism name equal to the original.
	h2, st := p.ImportName(token, types.NTExportName)
	require.True(t, st.Ok())
	defer p.ReleaseName(h2)

	eq, st := p.CompareName(mn, h2)
	require.True(t, st.Ok())
	assert.True(t, eq)

	// Exported names are directly comparable as bytes.
	token2, st := p.ExportName(h2)
	require.True(t, st.Ok())
	assert.Equal(t, token, token2)
}

func TestExportGenericNameFails(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName([]byte("alice"), types.NTUserName)
	require.True(t, st.Ok())
	defer p.ReleaseName(h)

	_, st = p.ExportName(h)
	assert.Equal(t, types.StatusNameNotMN, st.Major)
	assert.Equal(t, minorNotMechName, st.Minor)
}

func TestParseExportTokenRejectsGarbage(t *testing.T) {
	tests := []struct {
		name  string
		token []byte
	}{
		{"empty", nil},
		{"short", []byte{0x04, 0x01, 0x00}},
		{"wrong id", []byte{0x05, 0x01, 0, 2, 0x06, 0, 0, 0, 0, 0}},
		{"truncated name", append(buildExportToken([]byte("alice"), types.MechKrb5)[:10], 0xFF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := parseExportToken(tt.token)
			assert.False(t, ok)
		})
	}
}

func TestCompareSemantics(t *testing.T) {
	p := newTestProvider(t)

	alice, st := p.ImportName([]byte("alice"), types.NTUserName)
	require.True(t, st.Ok())
	defer p.ReleaseName(alice)

	bob, st := p.ImportName([]byte("bob"), types.NTUserName)
	require.True(t, st.Ok())
	defer p.ReleaseName(bob)

	untyped, st := p.ImportName([]byte("alice"), nil)
	require.True(t, st.Ok())
	defer p.ReleaseName(untyped)

	eq, st := p.CompareName(alice, bob)
	require.True(t, st.Ok())
	assert.False(t, eq)

	// An unspecified type matches any type with equal principal bytes.
	eq, st = p.CompareName(alice, untyped)
	require.True(t, st.Ok())
	assert.True(t, eq)

	_, st = p.CompareName(alice, types.NameHandle(9999))
	assert.Equal(t, types.StatusBadName, st.Major)
}

func TestDuplicateIsIndependent(t *testing.T) {
	p := newTestProvider(t)

	h, st := p.ImportName([]byte("alice"), types.NTUserName)
	require.True(t, st.Ok())

	dup, st := p.DuplicateName(h)
	require.True(t, st.Ok())
	assert.NotEqual(t, h, dup)

	st = p.ReleaseName(h)
	require.True(t, st.Ok())

	// The duplicate survives release of the original.
	raw, _, st := p.DisplayName(dup, false)
	require.True(t, st.Ok())
	assert.Equal(t, []byte("alice"), raw)

	st = p.ReleaseName(dup)
	require.True(t, st.Ok())
	assert.Equal(t, 0, p.Live())
}

func TestReleaseUnknownHandle(t *testing.T) {
	p := newTestProvider(t)

	st := p.ReleaseName(types.NameHandle(42))
	assert.Equal(t, types.StatusBadName, st.Major)
	assert.Equal(t, minorUnknownHandle, st.Minor)
}

func TestDisplayStatusMajorChains(t *testing.T) {
	p := newTestProvider(t)

	// Success decodes to a single message.
	msg, next, more, st := p.DisplayStatus(types.StatusComplete, types.GSSCode, nil, 0)
	require.True(t, st.Ok())
	assert.Equal(t, "The routine completed successfully", string(msg))
	assert.Zero(t, next)
	assert.False(t, more)

	// A routine error with supplementary bits yields a message chain.
	code := types.StatusBadName | 0x1
	msg, next, more, st = p.DisplayStatus(code, types.GSSCode, nil, 0)
	require.True(t, st.Ok())
	assert.Equal(t, "An invalid name was supplied", string(msg))
	assert.True(t, more)
	require.NotZero(t, next)

	msg, next, more, st = p.DisplayStatus(code, types.GSSCode, nil, next)
	require.True(t, st.Ok())
	assert.Equal(t, "The routine must be called again to complete its function", string(msg))
	assert.False(t, more)
	assert.Zero(t, next)
}

func TestDisplayStatusUnknownCode(t *testing.T) {
	p := newTestProvider(t)

	// Unknown routine value: decoding must fail so callers substitute the
	// placeholder message.
	_, _, _, st := p.DisplayStatus(0xFF<<types.RoutineErrorShift, types.GSSCode, nil, 0)
	assert.False(t, st.Ok())

	_, _, _, st = p.DisplayStatus(777, types.MechCode, types.MechKrb5, 0)
	assert.False(t, st.Ok())
}

func TestDisplayStatusMinorChain(t *testing.T) {
	p := newTestProvider(t)

	msg, next, more, st := p.DisplayStatus(minorUnknownHandle, types.MechCode, types.MechKrb5, 0)
	require.True(t, st.Ok())
	assert.Equal(t, "Name handle is not live", string(msg))
	require.True(t, more)

	msg, next, more, st = p.DisplayStatus(minorUnknownHandle, types.MechCode, types.MechKrb5, next)
	require.True(t, st.Ok())
	assert.Equal(t, "The handle was never issued or has already been released", string(msg))
	assert.False(t, more)
	assert.Zero(t, next)
}

func TestMechanisms(t *testing.T) {
	p := newTestProvider(t)

	mechs, st := p.Mechanisms()
	require.True(t, st.Ok())
	require.Len(t, mechs, 1)
	assert.True(t, mechs[0].Equal(types.MechKrb5))
}

// TestNameLifecycleThroughWrapper drives a full import, display, compare
// and release flow through the pkg/name wrapper against the software
// provider.
func TestNameLifecycleThroughWrapper(t *testing.T) {
	p := newTestProvider(t)

	n, err := name.Import(p, []byte("alice@EXAMPLE.COM"), nil)
	require.NoError(t, err)
	defer n.Release()

	res, err := n.Display(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice@EXAMPLE.COM"), res.Name)
	assert.Nil(t, res.NameType)

	dup, err := n.Duplicate()
	require.NoError(t, err)
	defer dup.Release()

	eq, err := name.Compare(n, dup)
	require.NoError(t, err)
	assert.True(t, eq)

	_, err = n.Export()
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrMechanismNameRequired)

	// The decoded report carries both codes and full message lists.
	var report *status.Error
	require.ErrorAs(t, err, &report)
	assert.Contains(t, report.Error(), "Major (")
	assert.Contains(t, report.Error(), "Minor (")
	assert.Contains(t, report.Error(), "The provided name was not a mechanism name")
	assert.Contains(t, report.Error(), "Name has not been canonicalized for a mechanism")
}
