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

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveAlwaysHealthy(t *testing.T) {
	c := NewChecker()

	result := c.Live(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, "liveness", result.Name)
	assert.Equal(t, "Service is alive", result.Message)
}

func TestReadyNoChecks(t *testing.T) {
	c := NewChecker()

	results := c.Ready(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, "default", results[0].Name)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestReadyRunsRegisteredChecks(t *testing.T) {
	c := NewChecker()

	c.RegisterCheck("provider", func(ctx context.Context) CheckResult {
		return CheckResult{Name: "provider", Status: StatusHealthy, Message: "0 live handles"}
	})
	c.RegisterCheck("store", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "connection refused"}
	})

	results := c.Ready(context.Background())
	require.Len(t, results, 2)

	byName := map[string]CheckResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, StatusHealthy, byName["provider"].Status)
	// Name is filled in from the registration key when the check omits it.
	assert.Equal(t, StatusUnhealthy, byName["store"].Status)
	assert.Equal(t, "connection refused", byName["store"].Error)
}

func TestRegisterCheckReplacesAndIgnoresNil(t *testing.T) {
	c := NewChecker()

	c.RegisterCheck("provider", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy}
	})
	c.RegisterCheck("provider", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})
	c.RegisterCheck("nil", nil)

	results := c.Ready(context.Background())
	require.Len(t, results, 1)
	assert.Equal(t, StatusHealthy, results[0].Status)
}

func TestStartupTransitions(t *testing.T) {
	c := NewChecker()

	result := c.Startup(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.False(t, c.IsStarted())

	c.MarkStarted()

	result = c.Startup(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Contains(t, result.Message, "uptime")
	assert.True(t, c.IsStarted())
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		expected Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []CheckResult{{Status: StatusHealthy}, {Status: StatusHealthy}}, StatusHealthy},
		{"one degraded", []CheckResult{{Status: StatusHealthy}, {Status: StatusDegraded}}, StatusDegraded},
		{"unhealthy wins", []CheckResult{{Status: StatusDegraded}, {Status: StatusUnhealthy}}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AggregateStatus(tt.results))
		})
	}
}
