package shardqueue

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queueDepth is only written from the owning worker goroutine.
var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "writequeue",
			Name:      "submissions_total",
			Help:      "Timeline writes accepted for execution.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "writequeue",
			Name:      "queue_full_total",
			Help:      "Enqueue attempts that timed out because the shard queue was full.",
		},
		[]string{"shard"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal",
			Subsystem: "writequeue",
			Name:      "retries_total",
			Help:      "Job attempts that failed with a recoverable error and were retried.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "journal",
			Subsystem: "writequeue",
			Name:      "run_duration_seconds",
			Help:      "Per-attempt job latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "journal",
			Subsystem: "writequeue",
			Name:      "queue_depth",
			Help:      "Current depth of each shard queue.",
		},
		[]string{"shard"},
	)
)

func labelFor(i int) string { return strconv.Itoa(i) }
