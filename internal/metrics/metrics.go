// Weddingbook - Wedding Service Booking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/weddingbook

// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
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

	// Email queue
	EmailJobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_queue_jobs_enqueued_total",
			Help: "Jobs added to the email queue",
		},
		[]string{"type"},
	)

	EmailJobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_queue_jobs_finished_total",
			Help: "Jobs that left the queue, by outcome (completed, failed)",
		},
		[]string{"type", "outcome"},
	)

	EmailJobRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_queue_job_retries_total",
			Help: "Failed attempts that were scheduled for retry",
		},
		[]string{"type"},
	)

	EmailQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "email_queue_depth",
			Help: "Jobs currently waiting in the email queue",
		},
	)

	EmailSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "Time spent in the mail transport per message",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"transport"},
	)

	// Recommendations
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_package_duration_seconds",
			Help:    "Time to build a wedding package recommendation",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendEmptyCategories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_empty_categories_total",
			Help: "Recommendations that returned no venue or no studio",
		},
		[]string{"category"},
	)

	// Payments and orders
	PaymentSessionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_sessions_created_total",
			Help: "Checkout sessions created with the payment processor",
		},
		[]string{"amount"},
	)

	OrdersFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_finalized_total",
			Help: "Order payment finalizations by source (webhook, poll, cash) and whether state changed",
		},
		[]string{"source", "changed"},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Object store
	ImageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_store_operations_total",
			Help: "Image uploads and deletes by result",
		},
		[]string{"operation", "result"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordOrderFinalized counts a finalize call from source.
func RecordOrderFinalized(source string, changed bool) {
	c := "false"
	if changed {
		c = "true"
	}
	OrdersFinalized.WithLabelValues(source, c).Inc()
}

// RecordImageOperation counts an object store call.
func RecordImageOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ImageOperations.WithLabelValues(operation, result).Inc()
}
