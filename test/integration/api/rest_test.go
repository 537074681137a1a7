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

//go:build integration

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/jeremyhahn/go-gssname/internal/config"
	"github.com/jeremyhahn/go-gssname/internal/rest"
	"github.com/jeremyhahn/go-gssname/internal/server"
	"github.com/jeremyhahn/go-gssname/pkg/mech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer boots the full composed service on a free port and waits for
// the startup probe to pass.
func startServer(t *testing.T) string {
	t.Helper()

	mech.Reset()
	t.Cleanup(mech.Reset)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())

	cfg := config.Default()
	cfg.Server.Port = port

	srv, err := server.New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Shutdown() })

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health/startup")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return baseURL
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
	return ""
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestNameLifecycleOverREST(t *testing.T) {
	baseURL := startServer(t)

	// Import.
	resp := postJSON(t, baseURL+"/api/v1/names", rest.ImportNameRequest{
		Name:     "alice@EXAMPLE.COM",
		NameType: "1.2.840.113554.1.2.1.1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	alice := decodeBody[rest.NameResponse](t, resp)
	assert.Equal(t, "alice@EXAMPLE.COM", alice.Name)

	// Canonicalize.
	resp = postJSON(t, baseURL+"/api/v1/names/"+alice.ID+"/canonicalize",
		rest.CanonicalizeNameRequest{Mechanism: "1.2.840.113554.1.2.2"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	canonical := decodeBody[rest.NameResponse](t, resp)

	// Export.
	resp = postJSON(t, baseURL+"/api/v1/names/"+canonical.ID+"/export", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	exported := decodeBody[rest.ExportNameResponse](t, resp)
	assert.NotEmpty(t, exported.Token)

	// Release.
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/v1/names/"+alice.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = delResp.Body.Close()
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)

	// Health and metrics are live.
	healthResp, err := http.Get(baseURL + "/health/ready")
	require.NoError(t, err)
	_ = healthResp.Body.Close()
	assert.Equal(t, http.StatusOK, healthResp.StatusCode)

	metricsResp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	_ = metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}
