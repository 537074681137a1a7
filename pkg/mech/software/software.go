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

// Package software provides an in-process mechanism provider with
// Kerberos-style naming. It implements the full provider contract (import,
// display, compare, export, canonicalize, duplicate, release and
// multi-message status lookup) without any native library, serving the same
// role the software keystore plays next to hardware backends: a default for
// development, tests and deployments without a platform GSSAPI.
//
// Thread-safe: yes, the handle table is guarded by a read-write mutex.
// Individual handles still follow the package name ownership rules; the
// provider only guarantees its own table stays consistent.
package software

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// ProviderName is the registry identifier for the software provider.
const ProviderName = "software"

// entry is one live name in the handle table.
type entry struct {
	value    []byte    // principal bytes as imported or canonicalized
	nameType types.OID // nil when imported with the unspecified default
	mech     types.OID // non-nil once mechanism-bound
}

// Provider is the in-process software mechanism provider.
type Provider struct {
	config *Config

	mu     sync.RWMutex
	names  map[types.NameHandle]*entry
	nextID types.NameHandle
}

// NewProvider creates a software provider with the given configuration.
// A nil config selects the defaults.
func NewProvider(config *Config) (*Provider, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("software: invalid config: %w", err)
	}

	return &Provider{
		config: config,
		names:  make(map[types.NameHandle]*entry),
		nextID: 1,
	}, nil
}

// Name returns the registry identifier.
func (p *Provider) Name() string { return ProviderName }

// Mechanisms lists the supported mechanism OIDs.
func (p *Provider) Mechanisms() ([]types.OID, types.Status) {
	return []types.OID{types.MechKrb5}, types.Status{}
}

// insert stores an entry and returns its fresh handle.
func (p *Provider) insert(e *entry) types.NameHandle {
	h := p.nextID
	p.nextID++
	p.names[h] = e
	return h
}

// lookup returns the entry behind a handle.
func (p *Provider) lookup(h types.NameHandle) (*entry, bool) {
	e, ok := p.names[h]
	return e, ok
}

// supportedNameType reports whether the provider understands a name type.
// The absent (nil) OID selects the unspecified default and is always
// accepted.
func supportedNameType(nt types.OID) bool {
	if nt.IsAbsent() {
		return true
	}
	for _, known := range []types.OID{
		types.NTUserName,
		types.NTHostBasedService,
		types.NTKrb5Principal,
		types.NTExportName,
		types.NTAnonymous,
	} {
		if nt.Equal(known) {
			return true
		}
	}
	return false
}

// ImportName converts raw bytes plus an optional name-type OID into a live
// handle. Exported-name blobs (NTExportName) re-import as mechanism names.
func (p *Provider) ImportName(raw []byte, nameType types.OID) (types.NameHandle, types.Status) {
	if !supportedNameType(nameType) {
		return types.NoName, types.Status{Major: types.StatusBadNameType, Minor: minorUnknownNameType}
	}

	if nameType.Equal(types.NTExportName) {
		value, mech, ok := parseExportToken(raw)
		if !ok {
			return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorMalformedToken}
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		h := p.insert(&entry{value: value, nameType: types.NTKrb5Principal, mech: mech})
		return h, types.Status{}
	}

	if len(raw) == 0 && !nameType.Equal(types.NTAnonymous) {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorEmptyName}
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorEmbeddedNul}
	}
	if nameType.Equal(types.NTHostBasedService) && !strings.Contains(string(raw), "@") {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorBadHostBased}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	h := p.insert(&entry{
		value:    append([]byte(nil), raw...),
		nameType: append(types.OID(nil), nameType...),
	})
	return h, types.Status{}
}

// DisplayName returns the textual form of the name. The type OID is only
// produced when requested; names imported with the unspecified default have
// no type to report and yield a nil OID even when one was asked for.
func (p *Provider) DisplayName(h types.NameHandle, wantType bool) ([]byte, types.OID, types.Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.lookup(h)
	if !ok {
		return nil, nil, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}

	value := append([]byte(nil), e.value...)
	if !wantType || e.nameType == nil {
		return value, nil, types.Status{}
	}
	return value, append(types.OID(nil), e.nameType...), types.Status{}
}

// CompareName reports equality of two live names. Names are equal when
// their principal bytes match and their types are compatible; a name with
// the unspecified default type matches any type.
func (p *Provider) CompareName(a, b types.NameHandle) (bool, types.Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ea, ok := p.lookup(a)
	if !ok {
		return false, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}
	eb, ok := p.lookup(b)
	if !ok {
		return false, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}

	if !bytes.Equal(ea.value, eb.value) {
		return false, types.Status{}
	}
	if ea.nameType == nil || eb.nameType == nil {
		return true, types.Status{}
	}
	return ea.nameType.Equal(eb.nameType), types.Status{}
}

// CanonicalizeName binds a name to the requested mechanism, producing a new
// handle holding the realm-qualified principal.
func (p *Provider) CanonicalizeName(h types.NameHandle, mech types.OID) (types.NameHandle, types.Status) {
	if !mech.Equal(types.MechKrb5) {
		return types.NoName, types.Status{Major: types.StatusBadMech, Minor: minorUnknownMech}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.lookup(h)
	if !ok {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}

	canonical := p.canonicalValue(e)
	nh := p.insert(&entry{
		value:    canonical,
		nameType: append(types.OID(nil), types.NTKrb5Principal...),
		mech:     append(types.OID(nil), mech...),
	})
	return nh, types.Status{}
}

// canonicalValue realm-qualifies a principal. Host-based service names
// (service@host) become service/host principals before the realm is
// attached.
func (p *Provider) canonicalValue(e *entry) []byte {
	value := string(e.value)
	if e.nameType.Equal(types.NTHostBasedService) {
		value = strings.Replace(value, "@", "/", 1)
	}
	if !strings.Contains(value, "@") {
		value = value + "@" + p.config.Realm
	}
	return []byte(value)
}

// ExportName produces the canonical exported-name token for a mechanism
// name. Generic names fail with a NameNotMN routine error.
func (p *Provider) ExportName(h types.NameHandle) ([]byte, types.Status) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.lookup(h)
	if !ok {
		return nil, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}
	if e.mech == nil {
		return nil, types.Status{Major: types.StatusNameNotMN, Minor: minorNotMechName}
	}
	return buildExportToken(e.value, e.mech), types.Status{}
}

// DuplicateName produces an independent handle referencing an equivalent
// identity. The copy shares nothing with the source.
func (p *Provider) DuplicateName(h types.NameHandle) (types.NameHandle, types.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.lookup(h)
	if !ok {
		return types.NoName, types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}

	nh := p.insert(&entry{
		value:    append([]byte(nil), e.value...),
		nameType: append(types.OID(nil), e.nameType...),
		mech:     append(types.OID(nil), e.mech...),
	})
	return nh, types.Status{}
}

// ReleaseName frees the entry behind a handle. Unknown handles report a
// BadName routine error; the provider never issues a handle twice, so a
// second release of the same handle is always a caller bug surfaced as a
// status rather than a crash.
func (p *Provider) ReleaseName(h types.NameHandle) types.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.lookup(h); !ok {
		return types.Status{Major: types.StatusBadName, Minor: minorUnknownHandle}
	}
	delete(p.names, h)
	return types.Status{}
}

// Live returns the number of live handles. Used by health checks and tests
// to detect leaks.
func (p *Provider) Live() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.names)
}
