// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sei"

// Recalculation outcomes used as the "result" label.
const (
	ResultChanged   = "changed"
	ResultUnchanged = "unchanged"
	ResultSkipped   = "skipped"
	ResultError     = "error"
	ResultOK        = "ok"
)

var (
	CheckinsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkins_ingested_total",
		Help:      "Weekly check-ins stored.",
	})

	Recalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "risk_recalculations_total",
		Help:      "Risk index recalculations by outcome.",
	}, []string{"result"})

	RescanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "risk_rescan_duration_seconds",
		Help:      "Duration of full risk re-scans.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})

	QueueBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recalculation_queue_batches_total",
		Help:      "Batches drained from the recalculation queue by outcome.",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
