// Showlog - Personal Media Tracker
// Copyright 2026 Showlog Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/showlog/showlog

// Package metrics provides Prometheus instrumentation for Showlog:
// library engine query performance, aggregate consistency, and HTTP
// endpoint latency and throughput. Metrics are exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Library Engine Metrics
	EngineQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "library_query_duration_seconds",
			Help:    "Duration of library engine operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "list_items", "item_details", "calendar"
	)

	EngineQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_query_errors_total",
			Help: "Total number of failed library engine operations",
		},
		[]string{"operation"},
	)

	// InconsistentAggregates counts seen-episode counts exceeding aired
	// counts. The engine clamps the derived unseen count to zero; this
	// counter surfaces that the underlying facts disagree.
	InconsistentAggregates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "library_inconsistent_aggregates_total",
			Help: "Total number of clamped unseen-episode computations",
		},
		[]string{"granularity"}, // "show", "season"
	)

	EngineItemsResolved = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "library_items_resolved",
			Help:    "Number of views assembled per listing query",
			Buckets: []float64{1, 5, 15, 50, 100, 250, 500, 1000},
		},
	)

	// HTTP Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordEngineQuery records one engine operation's duration and outcome.
func RecordEngineQuery(operation string, duration time.Duration, err error) {
	EngineQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		EngineQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordInconsistentAggregate records one clamped unseen computation.
func RecordInconsistentAggregate(granularity string) {
	InconsistentAggregates.WithLabelValues(granularity).Inc()
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
