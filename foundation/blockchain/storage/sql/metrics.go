package sql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "storage_sql",
		Name:      "block_writes_total",
		Help:      "Number of blocks appended to relational storage",
	})

	replacesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "storage_sql",
		Name:      "chain_replaces_total",
		Help:      "Number of whole chain replacements written to relational storage",
	})

	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "utxochain",
		Subsystem: "storage_sql",
		Name:      "operation_duration_seconds",
		Help:      "Duration of relational storage operations",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"operation"})
)

func observeDuration(operation string, start time.Time) {
	duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
