package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mined = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "worker",
		Name:      "mining_runs_total",
		Help:      "Number of mining runs by outcome",
	}, []string{"outcome"})

	miningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "utxochain",
		Subsystem: "worker",
		Name:      "mining_duration_seconds",
		Help:      "Duration of mining runs",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	})

	syncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "worker",
		Name:      "peer_chains_total",
		Help:      "Number of longer peer chains considered by outcome",
	}, []string{"outcome"})
)

func observeMining(d time.Duration, err error) {
	miningDuration.Observe(d.Seconds())

	outcome := "mined"
	if err != nil {
		outcome = "failed"
	}
	mined.WithLabelValues(outcome).Inc()
}
