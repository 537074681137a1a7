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

package name

import (
	"testing"

	"github.com/jeremyhahn/go-gssname/pkg/status"
	"github.com/jeremyhahn/go-gssname/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntry is one live name inside the fake provider.
type fakeEntry struct {
	raw      []byte
	nameType types.OID
	mech     types.OID // non-nil once canonicalized
}

// fakeProvider is a hand-rolled in-memory provider that tracks handle
// lifetimes so tests can assert exactly-once release semantics.
type fakeProvider struct {
	names    map[types.NameHandle]*fakeEntry
	nextID   types.NameHandle
	releases map[types.NameHandle]int

	failRelease bool
	failImport  bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		names:    make(map[types.NameHandle]*fakeEntry),
		releases: make(map[types.NameHandle]int),
		nextID:   1,
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) insert(e *fakeEntry) types.NameHandle {
	h := f.nextID
	f.nextID++
	f.names[h] = e
	return h
}

func (f *fakeProvider) ImportName(raw []byte, nameType types.OID) (types.NameHandle, types.Status) {
	if f.failImport {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: 2}
	}
	if len(raw) == 0 {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: 1}
	}
	return f.insert(&fakeEntry{raw: append([]byte(nil), raw...), nameType: nameType}), types.Status{}
}

func (f *fakeProvider) DisplayName(h types.NameHandle, wantType bool) ([]byte, types.OID, types.Status) {
	e, ok := f.names[h]
	if !ok {
		return nil, nil, types.Status{Major: types.StatusBadName}
	}
	if !wantType {
		return e.raw, nil, types.Status{}
	}
	return e.raw, e.nameType, types.Status{}
}

func (f *fakeProvider) CompareName(a, b types.NameHandle) (bool, types.Status) {
	ea, ok := f.names[a]
	if !ok {
		return false, types.Status{Major: types.StatusBadName}
	}
	eb, ok := f.names[b]
	if !ok {
		return false, types.Status{Major: types.StatusBadName}
	}
	return string(ea.raw) == string(eb.raw), types.Status{}
}

func (f *fakeProvider) ExportName(h types.NameHandle) ([]byte, types.Status) {
	e, ok := f.names[h]
	if !ok {
		return nil, types.Status{Major: types.StatusBadName}
	}
	if e.mech == nil {
		return nil, types.Status{Major: types.StatusNameNotMN}
	}
	return append([]byte("canonical:"), e.raw...), types.Status{}
}

func (f *fakeProvider) CanonicalizeName(h types.NameHandle, mech types.OID) (types.NameHandle, types.Status) {
	e, ok := f.names[h]
	if !ok {
		return types.NoName, types.Status{Major: types.StatusBadName}
	}
	if mech == nil {
		return types.NoName, types.Status{Major: types.StatusBadMech}
	}
	clone := &fakeEntry{raw: append([]byte(nil), e.raw...), nameType: e.nameType, mech: mech}
	return f.insert(clone), types.Status{}
}

func (f *fakeProvider) DuplicateName(h types.NameHandle) (types.NameHandle, types.Status) {
	e, ok := f.names[h]
	if !ok {
		return types.NoName, types.Status{Major: types.StatusBadName}
	}
	clone := &fakeEntry{raw: append([]byte(nil), e.raw...), nameType: e.nameType, mech: e.mech}
	return f.insert(clone), types.Status{}
}

func (f *fakeProvider) ReleaseName(h types.NameHandle) types.Status {
	f.releases[h]++
	if _, ok := f.names[h]; !ok {
		return types.Status{Major: types.StatusBadName}
	}
	delete(f.names, h)
	if f.failRelease {
		return types.Status{Major: types.StatusFailure, Minor: 5}
	}
	return types.Status{}
}

func (f *fakeProvider) DisplayStatus(code uint32, kind types.StatusKind, mech types.OID, msgContext uint32) ([]byte, uint32, bool, types.Status) {
	return []byte("fake status message"), 0, false, types.Status{}
}

func (f *fakeProvider) Mechanisms() ([]types.OID, types.Status) {
	return []types.OID{types.MechKrb5}, types.Status{}
}

func TestImportDisplayRoundTrip(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), types.NTUserName)
	require.NoError(t, err)
	defer n.Release()

	res, err := n.Display(true)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice@EXAMPLE.COM"), res.Name)
	assert.True(t, res.NameType.Equal(types.NTUserName))
}

func TestImportWithAbsentNameType(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), nil)
	require.NoError(t, err)
	defer n.Release()

	res, err := n.Display(true)
	require.NoError(t, err)
	// The provider echoes the absent type back; absence is not an error.
	assert.Nil(t, res.NameType)
}

func TestImportFailureClassified(t *testing.T) {
	p := newFakeProvider()

	_, err := Import(p, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrBadName)

	var report *status.Error
	require.ErrorAs(t, err, &report)
	assert.Equal(t, "import_name", report.Op)
}

func TestImportRequiresProvider(t *testing.T) {
	_, err := Import(nil, []byte("x"), nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestDisplayWithoutType(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), types.NTUserName)
	require.NoError(t, err)
	defer n.Release()

	res, err := n.Display(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice@EXAMPLE.COM"), res.Name)
	assert.Nil(t, res.NameType)
}

func TestCompareAbsentSemantics(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice"), nil)
	require.NoError(t, err)
	defer n.Release()

	eq, err := Compare(nil, nil)
	require.NoError(t, err)
	assert.True(t, eq, "two absent names are vacuously equal")

	eq, err = Compare(n, nil)
	require.NoError(t, err)
	assert.False(t, eq)

	eq, err = Compare(nil, n)
	require.NoError(t, err)
	assert.False(t, eq)

	// A sentinel-state wrapper counts as absent too.
	empty := New(p)
	eq, err = Compare(empty, New(p))
	require.NoError(t, err)
	assert.True(t, eq)

	eq, err = Compare(empty, n)
	require.NoError(t, err)
	assert.False(t, eq)
}

func TestCompareWithDuplicate(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), nil)
	require.NoError(t, err)
	defer n.Release()

	dup, err := n.Duplicate()
	require.NoError(t, err)
	defer dup.Release()

	eq, err := Compare(n, dup)
	require.NoError(t, err)
	assert.True(t, eq)

	// Independent handles, not aliases.
	require.NoError(t, dup.Release())
	assert.True(t, n.Valid())

	res, err := n.Display(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice@EXAMPLE.COM"), res.Name)
}

func TestAdoptTransfersOwnership(t *testing.T) {
	p := newFakeProvider()

	src, err := Import(p, []byte("alice"), nil)
	require.NoError(t, err)

	moved, err := Adopt(src)
	require.NoError(t, err)

	assert.False(t, src.Valid(), "source must be sentinel after transfer")
	assert.True(t, moved.Valid())

	// The destination behaves exactly as the source did before the move.
	res, err := moved.Display(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice"), res.Name)

	// Releasing the drained source must not touch the provider.
	require.NoError(t, src.Release())
	assert.Empty(t, p.releases)

	require.NoError(t, moved.Release())
	total := 0
	for _, c := range p.releases {
		total += c
	}
	assert.Equal(t, 1, total, "exactly one provider release across both wrappers")
}

func TestAdoptInvalidSource(t *testing.T) {
	_, err := Adopt(nil)
	assert.ErrorIs(t, err, ErrNilName)

	_, err = Adopt(&Name{})
	assert.ErrorIs(t, err, ErrNilName)
}

func TestReleaseIdempotent(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice"), nil)
	require.NoError(t, err)
	h := n.handle

	require.NoError(t, n.Release())
	assert.False(t, n.Valid())
	assert.Equal(t, 1, p.releases[h])

	// Second release is a no-op and must not reach the provider.
	require.NoError(t, n.Release())
	assert.Equal(t, 1, p.releases[h])
}

func TestReleaseFailureStillResets(t *testing.T) {
	p := newFakeProvider()
	p.failRelease = true

	n, err := Import(p, []byte("alice"), nil)
	require.NoError(t, err)
	h := n.handle

	err = n.Release()
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrProvider)

	// The failure is diagnostic only: the handle is gone and a second
	// release performs no provider call.
	assert.False(t, n.Valid())
	require.NoError(t, n.Release())
	assert.Equal(t, 1, p.releases[h])
}

func TestExportRequiresMechanismName(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), nil)
	require.NoError(t, err)
	defer n.Release()

	_, err = n.Export()
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrMechanismNameRequired)

	mn, err := n.Canonicalize(types.MechKrb5)
	require.NoError(t, err)
	defer mn.Release()

	blob, err := mn.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, blob)

	// Canonicalization produced a distinct handle; the source is intact
	// and still generic.
	assert.True(t, n.Valid())
	_, err = n.Export()
	assert.ErrorIs(t, err, status.ErrMechanismNameRequired)
}

func TestCanonicalizeBadMech(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice"), nil)
	require.NoError(t, err)
	defer n.Release()

	_, err = n.Canonicalize(nil)
	assert.ErrorIs(t, err, status.ErrBadMech)
}

func TestOperationsOnEmptyName(t *testing.T) {
	p := newFakeProvider()
	empty := New(p)

	_, err := empty.Display(true)
	assert.ErrorIs(t, err, ErrNilName)

	_, err = empty.Export()
	assert.ErrorIs(t, err, ErrNilName)

	_, err = empty.Canonicalize(types.MechKrb5)
	assert.ErrorIs(t, err, ErrNilName)

	_, err = empty.Duplicate()
	assert.ErrorIs(t, err, ErrNilName)

	assert.NoError(t, empty.Release())
	assert.Empty(t, p.releases)
}

func TestScenarioAliceLifecycle(t *testing.T) {
	p := newFakeProvider()

	n, err := Import(p, []byte("alice@EXAMPLE.COM"), nil)
	require.NoError(t, err)
	defer n.Release()

	res, err := n.Display(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("alice@EXAMPLE.COM"), res.Name)
	assert.Nil(t, res.NameType)

	dup, err := n.Duplicate()
	require.NoError(t, err)
	defer dup.Release()

	eq, err := Compare(n, dup)
	require.NoError(t, err)
	assert.True(t, eq)

	_, err = n.Export()
	assert.ErrorIs(t, err, status.ErrMechanismNameRequired)
}
