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

package rest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jeremyhahn/go-gssname/pkg/health"
	"github.com/jeremyhahn/go-gssname/pkg/mech"
	"github.com/jeremyhahn/go-gssname/pkg/metrics"
	"github.com/jeremyhahn/go-gssname/pkg/name"
	"github.com/jeremyhahn/go-gssname/pkg/status"
	"github.com/jeremyhahn/go-gssname/pkg/types"
)

// HandlerContext holds dependencies for REST handlers.
type HandlerContext struct {
	// Version is the API version
	Version string
	// HealthChecker manages health check probes
	HealthChecker HealthChecker

	store *NameStore
}

// HealthChecker defines the interface for health checking.
type HealthChecker interface {
	Live(ctx context.Context) health.CheckResult
	Ready(ctx context.Context) []health.CheckResult
	Startup(ctx context.Context) health.CheckResult
}

// NewHandlerContext creates a new handler context. The handlers resolve
// mechanism providers through the global mech registry.
func NewHandlerContext(version string) *HandlerContext {
	return &HandlerContext{
		Version: version,
		store:   NewNameStore(),
	}
}

// SetHealthChecker sets the health checker for the handler context.
func (h *HandlerContext) SetHealthChecker(checker HealthChecker) {
	h.HealthChecker = checker
}

// Store returns the server-side name handle table.
func (h *HandlerContext) Store() *NameStore {
	return h.store
}

// NameStore maps server-assigned IDs to live name wrappers. The map lock
// guards membership only; each entry carries its own lock, held across
// every provider call on the wrapped name, since individual Names are not
// safe for concurrent use. Operations therefore execute through the store
// (Do, DoPair, Release) instead of on handed-out wrappers.
type NameStore struct {
	mu    sync.RWMutex
	names map[string]*storedName
}

// storedName pairs a name wrapper with the lock serializing operations
// on it.
type storedName struct {
	mu sync.Mutex
	n  *name.Name
}

// NewNameStore creates an empty name handle table.
func NewNameStore() *NameStore {
	return &NameStore{names: make(map[string]*storedName)}
}

// Put stores a name and returns its server-assigned ID.
func (s *NameStore) Put(n *name.Name) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.names[id] = &storedName{n: n}
	s.mu.Unlock()
	return id
}

// Do runs fn against the name registered under id, holding the entry lock
// for the duration. Returns false when no such name exists. An entry whose
// handle was released by a concurrent Release reads as missing, since only
// Release invalidates a stored name.
func (s *NameStore) Do(id string, fn func(n *name.Name) error) (bool, error) {
	s.mu.RLock()
	e, ok := s.names[id]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.n.Valid() {
		return false, nil
	}
	return true, fn(e.n)
}

// DoPair runs fn against two registered names with both entry locks held.
// Locks are acquired in ID order so concurrent pairs cannot deadlock.
func (s *NameStore) DoPair(idA, idB string, fn func(a, b *name.Name) error) (bool, error) {
	s.mu.RLock()
	ea, okA := s.names[idA]
	eb, okB := s.names[idB]
	s.mu.RUnlock()
	if !okA || !okB {
		return false, nil
	}
	if ea == eb {
		ea.mu.Lock()
		defer ea.mu.Unlock()
		if !ea.n.Valid() {
			return false, nil
		}
		return true, fn(ea.n, eb.n)
	}
	first, second := ea, eb
	if idB < idA {
		first, second = eb, ea
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	if !ea.n.Valid() || !eb.n.Valid() {
		return false, nil
	}
	return true, fn(ea.n, eb.n)
}

// Release unregisters the name and releases its provider handle under the
// entry lock, so an in-flight operation on the same entry finishes first.
// The provider is returned for instrumentation even when release fails.
func (s *NameStore) Release(id string) (types.Provider, bool, error) {
	s.mu.Lock()
	e, ok := s.names[id]
	if ok {
		delete(s.names, id)
	}
	s.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.n.Provider(), true, e.n.Release()
}

// Len returns the number of live names in the table.
func (s *NameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// ReleaseAll releases every stored name and empties the table. Used during
// shutdown; release failures are ignored since the process is exiting.
func (s *NameStore) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.names {
		e.mu.Lock()
		_ = e.n.Release()
		e.mu.Unlock()
		delete(s.names, id)
	}
}

// resolveProvider returns the named provider, or the registry default when
// name is empty.
func resolveProvider(providerName string) (types.Provider, error) {
	if providerName == "" {
		return mech.Default()
	}
	return mech.Get(providerName)
}

// parseOptionalOID parses a dotted-decimal OID, mapping "" to the absent
// sentinel.
func parseOptionalOID(s string) (types.OID, error) {
	if s == "" {
		return nil, nil
	}
	return types.ParseOID(s)
}

// nameResponse renders a stored name, asking the provider for its textual
// form and name type.
func (h *HandlerContext) nameResponse(id string, n *name.Name) (NameResponse, error) {
	display, err := n.Display(true)
	if err != nil {
		return NameResponse{}, err
	}
	return NameResponse{
		ID:       id,
		Name:     string(display.Name),
		NameType: display.NameType.DotString(),
		Provider: n.Provider().Name(),
	}, nil
}

// recordLiveHandles refreshes the live-handle gauge for a provider.
func (h *HandlerContext) recordLiveHandles(p types.Provider) {
	metrics.SetLiveHandles(p.Name(), h.store.Len())
}

// recordOutcome records duration, outcome and failure class for a
// completed provider operation.
func recordOutcome(op string, p types.Provider, start time.Time, err error) {
	metrics.ObserveOperation(op, p.Name(), start)
	metrics.RecordOperation(op, p.Name(), err == nil)
	if err != nil {
		metrics.RecordError(op, p.Name(), errorClass(err))
	}
}

// defaultMechanism returns the provider's preferred mechanism, used when a
// canonicalize request omits one. Returns the absent sentinel when the
// provider reports none, leaving rejection to the provider.
func defaultMechanism(p types.Provider) types.OID {
	oids, st := p.Mechanisms()
	if !st.Ok() || len(oids) == 0 {
		return nil
	}
	return oids[0]
}

// HealthHandler handles GET /health requests.
func (h *HandlerContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "healthy",
		Version: h.Version,
	}
	writeJSON(w, resp, http.StatusOK)
}

// ListProvidersHandler handles GET /api/v1/providers requests.
func (h *HandlerContext) ListProvidersHandler(w http.ResponseWriter, r *http.Request) {
	resp := ListProvidersResponse{
		Providers: mech.Providers(),
	}
	if p, err := mech.Default(); err == nil {
		resp.Default = p.Name()
	}
	writeJSON(w, resp, http.StatusOK)
}

// ListMechanismsHandler handles GET /api/v1/mechanisms requests. The
// provider query parameter selects a provider; the default is used
// otherwise.
func (h *HandlerContext) ListMechanismsHandler(w http.ResponseWriter, r *http.Request) {
	provider, err := resolveProvider(r.URL.Query().Get("provider"))
	if err != nil {
		handleError(w, err)
		return
	}

	start := time.Now()
	oids, st := provider.Mechanisms()
	if !st.Ok() {
		err := status.New("mechanisms", provider, st, nil)
		recordOutcome(metrics.OpMechanisms, provider, start, err)
		handleError(w, err)
		return
	}
	recordOutcome(metrics.OpMechanisms, provider, start, nil)

	mechs := make([]string, 0, len(oids))
	for _, oid := range oids {
		mechs = append(mechs, oid.DotString())
	}

	writeJSON(w, MechanismsResponse{
		Provider:   provider.Name(),
		Mechanisms: mechs,
	}, http.StatusOK)
}

// ImportNameHandler handles POST /api/v1/names requests.
func (h *HandlerContext) ImportNameHandler(w http.ResponseWriter, r *http.Request) {
	var req ImportNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, ErrMissingName, http.StatusBadRequest)
		return
	}

	nt, err := parseOptionalOID(req.NameType)
	if err != nil {
		writeError(w, ErrInvalidNameType, http.StatusBadRequest)
		return
	}

	provider, err := resolveProvider(req.Provider)
	if err != nil {
		handleError(w, err)
		return
	}

	start := time.Now()
	n, err := name.Import(provider, []byte(req.Name), nt)
	recordOutcome(metrics.OpImport, provider, start, err)
	if err != nil {
		handleError(w, err)
		return
	}

	id := h.store.Put(n)
	h.recordLiveHandles(provider)

	resp, err := h.nameResponse(id, n)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, resp, http.StatusCreated)
}

// GetNameHandler handles GET /api/v1/names/{id} requests, returning the
// display form of the name.
func (h *HandlerContext) GetNameHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var resp NameResponse
	ok, err := h.store.Do(id, func(n *name.Name) error {
		start := time.Now()
		var derr error
		resp, derr = h.nameResponse(id, n)
		recordOutcome(metrics.OpDisplay, n.Provider(), start, derr)
		return derr
	})
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, resp, http.StatusOK)
}

// DeleteNameHandler handles DELETE /api/v1/names/{id} requests, releasing
// the underlying provider handle.
func (h *HandlerContext) DeleteNameHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	provider, ok, err := h.store.Release(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}

	recordOutcome(metrics.OpRelease, provider, start, err)
	h.recordLiveHandles(provider)
	if err != nil {
		// The handle is gone either way; report the provider failure.
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CompareNamesHandler handles POST /api/v1/names/{id}/compare requests.
func (h *HandlerContext) CompareNamesHandler(w http.ResponseWriter, r *http.Request) {
	var req CompareNamesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.OtherID == "" {
		writeError(w, ErrMissingOtherID, http.StatusBadRequest)
		return
	}

	var equal bool
	ok, err := h.store.DoPair(chi.URLParam(r, "id"), req.OtherID, func(a, b *name.Name) error {
		start := time.Now()
		var cerr error
		equal, cerr = name.Compare(a, b)
		recordOutcome(metrics.OpCompare, a.Provider(), start, cerr)
		return cerr
	})
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, CompareNamesResponse{Equal: equal}, http.StatusOK)
}

// ExportNameHandler handles POST /api/v1/names/{id}/export requests. The
// name must be a mechanism name; exporting a generic name returns 409.
func (h *HandlerContext) ExportNameHandler(w http.ResponseWriter, r *http.Request) {
	var token []byte
	ok, err := h.store.Do(chi.URLParam(r, "id"), func(n *name.Name) error {
		start := time.Now()
		var xerr error
		token, xerr = n.Export()
		recordOutcome(metrics.OpExport, n.Provider(), start, xerr)
		return xerr
	})
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, ExportNameResponse{
		Token: base64.StdEncoding.EncodeToString(token),
	}, http.StatusOK)
}

// CanonicalizeNameHandler handles POST /api/v1/names/{id}/canonicalize
// requests, producing a new mechanism-name handle.
func (h *HandlerContext) CanonicalizeNameHandler(w http.ResponseWriter, r *http.Request) {
	var req CanonicalizeNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}

	mechOID, err := parseOptionalOID(req.Mechanism)
	if err != nil {
		writeError(w, ErrInvalidMechanism, http.StatusBadRequest)
		return
	}

	var canonical *name.Name
	var provider types.Provider
	ok, err := h.store.Do(chi.URLParam(r, "id"), func(n *name.Name) error {
		provider = n.Provider()
		oid := mechOID
		if oid.IsAbsent() {
			oid = defaultMechanism(provider)
		}
		start := time.Now()
		var cerr error
		canonical, cerr = n.Canonicalize(oid)
		recordOutcome(metrics.OpCanonicalize, provider, start, cerr)
		return cerr
	})
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	id := h.store.Put(canonical)
	h.recordLiveHandles(provider)

	resp, err := h.nameResponse(id, canonical)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, resp, http.StatusCreated)
}

// DuplicateNameHandler handles POST /api/v1/names/{id}/duplicate requests,
// producing an independent handle for the same identity.
func (h *HandlerContext) DuplicateNameHandler(w http.ResponseWriter, r *http.Request) {
	var dup *name.Name
	var provider types.Provider
	ok, err := h.store.Do(chi.URLParam(r, "id"), func(n *name.Name) error {
		provider = n.Provider()
		start := time.Now()
		var derr error
		dup, derr = n.Duplicate()
		recordOutcome(metrics.OpDuplicate, provider, start, derr)
		return derr
	})
	if !ok {
		writeError(w, ErrNameNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}

	id := h.store.Put(dup)
	h.recordLiveHandles(provider)

	resp, err := h.nameResponse(id, dup)
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, resp, http.StatusCreated)
}
