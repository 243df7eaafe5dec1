package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ModerationRequestsTotal counts moderation attempts by outcome.
	// "ok" means the external service answered, "failed" means the call
	// errored or timed out, "skipped" means the historical context could
	// not be fetched so no call was made.
	ModerationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusapp",
		Subsystem: "ingest",
		Name:      "moderation_requests_total",
		Help:      "Total number of moderation attempts made by the ingestion pipeline, labeled by outcome.",
	}, []string{"outcome"})

	// ModerationDurationSeconds is the latency of the external moderation call.
	ModerationDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "campusapp",
		Subsystem: "ingest",
		Name:      "moderation_duration_seconds",
		Help:      "Latency of calls to the external moderation service.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// IncidentsCreatedTotal counts successfully persisted incidents.
	IncidentsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusapp",
		Subsystem: "ingest",
		Name:      "incidents_created_total",
		Help:      "Total number of incidents persisted by the ingestion pipeline.",
	})

	// AttachmentWritesDroppedTotal counts image rows lost to insert failures.
	AttachmentWritesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "campusapp",
		Subsystem: "ingest",
		Name:      "attachment_writes_dropped_total",
		Help:      "Total number of incident image rows dropped because their insert failed.",
	})
)

// Register registers all ingestion collectors with the default
// registry. Safe to call more than once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ModerationRequestsTotal,
			ModerationDurationSeconds,
			IncidentsCreatedTotal,
			AttachmentWritesDroppedTotal,
		)
	})
}
