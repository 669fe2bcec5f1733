// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConsentUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekit_consent_updates_total",
		Help: "Consent changes applied, by kind (bulk_accept, bulk_deny, selective).",
	}, []string{"kind"})

	ConsentKeysReportedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekit_consent_keys_reported_total",
		Help: "Tracking keys reported to the analytics consent API, by value.",
	}, []string{"value"})

	ReportsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitekit_consent_reports_recorded_total",
		Help: "Consent report rows successfully written to the database.",
	})

	ReportsRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitekit_consent_reports_record_errors_total",
		Help: "Consent report insert failures.",
	})

	ReportsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitekit_consent_reports_dropped_total",
		Help: "Consent reports dropped because the writer queue was full.",
	})

	StorageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekit_storage_errors_total",
		Help: "Visitor storage failures, by operation.",
	}, []string{"op"})

	PagerRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekit_pager_renders_total",
		Help: "Paginator computations, by outcome (rendered, empty).",
	}, []string{"outcome"})

	PagerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitekit_pager_duration_seconds",
		Help:    "Time to compute and render a paginator.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})

	ThemeChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sitekit_theme_changes_total",
		Help: "Theme preference changes, by theme.",
	}, []string{"theme"})
)
