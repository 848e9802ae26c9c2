// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package metrics holds the Prometheus collectors for Innledger. All of them
// register with the default registry and are served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record store
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "innledger_store_operation_duration_seconds",
			Help:    "Duration of record store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "collection"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_store_operation_errors_total",
			Help: "Total number of failed record store operations",
		},
		[]string{"operation", "collection"},
	)

	// Reports
	ReportQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "innledger_report_query_duration_seconds",
			Help:    "Duration of date-range report queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "kind"}, // kind: range, items, totals
	)

	ReportRecordsMatched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "innledger_report_records_matched",
			Help:    "Number of records matched by a report query",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"collection"},
	)

	// Backup pipeline
	BackupRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_backup_runs_total",
			Help: "Total number of backup pipeline runs",
		},
		[]string{"trigger", "status"},
	)

	BackupRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "innledger_backup_run_duration_seconds",
			Help:    "Duration of backup pipeline runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
		},
	)

	BackupInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innledger_backup_in_progress",
			Help: "1 while a backup pipeline run holds the run lock",
		},
	)

	BackupLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innledger_backup_last_success_timestamp_seconds",
			Help: "Unix time of the last run whose archive was delivered",
		},
	)

	BackupArchiveBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innledger_backup_archive_bytes",
			Help: "Size of the most recent backup archive",
		},
	)

	BackupCollectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_backup_collection_failures_total",
			Help: "Collections skipped during export because of a read or write failure",
		},
		[]string{"collection", "stage"}, // stage: read, write, name
	)

	BackupNextRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innledger_backup_next_run_timestamp_seconds",
			Help: "Unix time of the next scheduled backup run",
		},
	)

	// Mail delivery
	MailDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_mail_deliveries_total",
			Help: "Backup mail delivery attempts by result code",
		},
		[]string{"result"},
	)

	MailDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "innledger_mail_delivery_duration_seconds",
			Help:    "Duration of backup mail deliveries in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "innledger_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "innledger_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "innledger_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "innledger_api_active_requests",
			Help: "Number of requests currently being served",
		},
	)
)

// RecordStoreOperation observes one store call.
func RecordStoreOperation(operation, collection string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation, collection).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation, collection).Inc()
	}
}

// RecordReportQuery observes one report query and its match count.
func RecordReportQuery(collection, kind string, duration time.Duration, matched int) {
	ReportQueryDuration.WithLabelValues(collection, kind).Observe(duration.Seconds())
	ReportRecordsMatched.WithLabelValues(collection).Observe(float64(matched))
}

// RecordBackupRun records a finished pipeline run.
func RecordBackupRun(trigger, status string, duration time.Duration, delivered bool) {
	BackupRunsTotal.WithLabelValues(trigger, status).Inc()
	BackupRunDuration.Observe(duration.Seconds())
	if delivered {
		BackupLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordCollectionFailure counts a collection skipped during export.
func RecordCollectionFailure(collection, stage string) {
	BackupCollectionFailures.WithLabelValues(collection, stage).Inc()
}

// RecordMailDelivery records a delivery attempt. result is "sent" or an error code.
func RecordMailDelivery(result string, duration time.Duration) {
	MailDeliveriesTotal.WithLabelValues(result).Inc()
	MailDeliveryDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
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
