/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see LICENSE file for details.                                       *
 ******************************************************************************/

package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records Graph request metrics on a Prometheus registry
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	rewrites  *prometheus.CounterVec
	toolCalls *prometheus.CounterVec
}

// NewMetrics registers the Graph metrics on registry. A nil registry gets a
// fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcpgraph",
			Subsystem: "graph",
			Name:      "requests_total",
			Help:      "Graph requests by service, endpoint and status class",
		}, []string{"service", "endpoint", "status"}),
		latency: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mcpgraph",
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Graph request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "endpoint"}),
		rewrites: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcpgraph",
			Subsystem: "graph",
			Name:      "path_rewrites_total",
			Help:      "Request paths qualified by an identifier parameter",
		}, []string{"parameter"}),
		toolCalls: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcpgraph",
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "Tool calls by outcome",
		}, []string{"tool", "outcome"}),
	}
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one Graph request. statusCode is 0 when no response
// was received.
func (m *Metrics) ObserveRequest(service, endpoint string, statusCode int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(service, endpoint, statusClass(statusCode)).Inc()
	m.latency.WithLabelValues(service, endpoint).Observe(elapsed.Seconds())
}

// ObserveRewrites records the identifier parameters that qualified a path
func (m *Metrics) ObserveRewrites(applied []string) {
	if m == nil {
		return
	}
	for _, param := range applied {
		m.rewrites.WithLabelValues(param).Inc()
	}
}

// ObserveToolCall records the outcome of a tool call
func (m *Metrics) ObserveToolCall(tool string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = errorOutcome(err)
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func statusClass(statusCode int) string {
	if statusCode <= 0 {
		return "error"
	}
	return fmt.Sprintf("%dxx", statusCode/100)
}

func errorOutcome(err error) string {
	if _, ok := AsValidationError(err); ok {
		return "invalid"
	}
	if apiErr, ok := AsAPIError(err); ok {
		return string(apiErr.Category)
	}
	if netErr, ok := AsNetworkError(err); ok {
		return string(netErr.Category)
	}
	if _, ok := AsAuthenticationError(err); ok {
		return string(ErrorCategoryAuth)
	}
	return "error"
}

// NewCorrelationID returns a new request correlation ID
func NewCorrelationID() string {
	return uuid.NewString()
}
