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

// Package metrics provides Prometheus instrumentation for go-gssname
// operations. It exposes operation counters, latency histograms, error
// counters by failure class and a live-handle gauge to enable monitoring
// of name-service health and handle leaks.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all gssname metrics
	Namespace = "gssname"

	// Label names
	LabelOperation  = "operation"
	LabelProvider   = "provider"
	LabelStatus     = "status"
	LabelClass      = "class"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpImport       = "import_name"
	OpDisplay      = "display_name"
	OpCompare      = "compare_name"
	OpExport       = "export_name"
	OpCanonicalize = "canonicalize_name"
	OpDuplicate    = "duplicate_name"
	OpRelease      = "release_name"
	OpMechanisms   = "mechanisms"
)

var (
	// OperationsTotal tracks the total number of name operations by type,
	// provider, and status. Use RecordOperation to increment this counter
	// with the appropriate labels.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of name operations by type, provider, and status",
		},
		[]string{LabelOperation, LabelProvider, LabelStatus},
	)

	// OperationDuration tracks the duration of name operations in seconds.
	// Buckets are optimized for in-process and local-library call latencies.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of name operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation, LabelProvider},
	)

	// ErrorsTotal tracks the total number of errors by operation, provider,
	// and failure class (bad_name, bad_name_type, bad_mech, name_not_mn,
	// unavailable, provider).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, provider, and failure class",
		},
		[]string{LabelOperation, LabelProvider, LabelClass},
	)

	// LiveHandles tracks the number of live name handles by provider.
	LiveHandles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "live_handles",
			Help:      "Number of live name handles by provider",
		},
		[]string{LabelProvider},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method
	// and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)
)

// RecordOperation increments the operation counter with the given labels.
func RecordOperation(operation, provider string, success bool) {
	st := StatusSuccess
	if !success {
		st = StatusError
	}
	OperationsTotal.WithLabelValues(operation, provider, st).Inc()
}

// RecordError increments the error counter for a failure class.
func RecordError(operation, provider, class string) {
	ErrorsTotal.WithLabelValues(operation, provider, class).Inc()
}

// ObserveOperation records the duration of a completed operation.
func ObserveOperation(operation, provider string, start time.Time) {
	OperationDuration.WithLabelValues(operation, provider).Observe(time.Since(start).Seconds())
}

// SetLiveHandles updates the live-handle gauge for a provider.
func SetLiveHandles(provider string, n int) {
	LiveHandles.WithLabelValues(provider).Set(float64(n))
}
