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

package mech

import (
	"testing"

	"github.com/jeremyhahn/go-gssname/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider satisfies types.Provider with a fixed name; registry tests
// never touch the primitives.
type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ImportName([]byte, types.OID) (types.NameHandle, types.Status) {
	return types.NoName, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) DisplayName(types.NameHandle, bool) ([]byte, types.OID, types.Status) {
	return nil, nil, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) CompareName(types.NameHandle, types.NameHandle) (bool, types.Status) {
	return false, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) ExportName(types.NameHandle) ([]byte, types.Status) {
	return nil, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) CanonicalizeName(types.NameHandle, types.OID) (types.NameHandle, types.Status) {
	return types.NoName, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) DuplicateName(types.NameHandle) (types.NameHandle, types.Status) {
	return types.NoName, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) ReleaseName(types.NameHandle) types.Status {
	return types.Status{}
}

func (s *stubProvider) DisplayStatus(uint32, types.StatusKind, types.OID, uint32) ([]byte, uint32, bool, types.Status) {
	return nil, 0, false, types.Status{Major: types.StatusUnavailable}
}

func (s *stubProvider) Mechanisms() ([]types.OID, types.Status) {
	return nil, types.Status{}
}

func TestRegisterAndGet(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	p := &stubProvider{name: "software"}
	require.NoError(t, Register(p))

	got, err := Get("software")
	require.NoError(t, err)
	assert.Same(t, types.Provider(p), got)

	_, err = Get("missing")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestRegisterValidation(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	assert.ErrorIs(t, Register(nil), ErrProviderRequired)

	require.NoError(t, Register(&stubProvider{name: "software"}))
	assert.ErrorIs(t, Register(&stubProvider{name: "software"}), ErrAlreadyRegistered)
}

func TestDefaultProvider(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	_, err := Default()
	assert.ErrorIs(t, err, ErrProviderNotFound)

	first := &stubProvider{name: "first"}
	second := &stubProvider{name: "second"}
	require.NoError(t, Register(first))
	require.NoError(t, Register(second))

	// First registration wins until overridden.
	got, err := Default()
	require.NoError(t, err)
	assert.Same(t, types.Provider(first), got)

	require.NoError(t, SetDefault("second"))
	got, err = Default()
	require.NoError(t, err)
	assert.Same(t, types.Provider(second), got)

	assert.ErrorIs(t, SetDefault("missing"), ErrProviderNotFound)
}

func TestProvidersSorted(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, Register(&stubProvider{name: "zeta"}))
	require.NoError(t, Register(&stubProvider{name: "alpha"}))

	assert.Equal(t, []string{"alpha", "zeta"}, Providers())
}
