package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mycelian/mycelian-journal/internal/media"
)

var (
	entryWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal_client",
			Name:      "entry_writes_total",
			Help:      "Timeline writes confirmed by the backend.",
		},
		[]string{"shard", "op"},
	)

	entryWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal_client",
			Name:      "entry_write_failures_total",
			Help:      "Timeline writes rejected by the backend or never sent.",
		},
		[]string{"shard", "op"},
	)

	refreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal_client",
			Name:      "refreshes_total",
			Help:      "Timeline refreshes by result (applied, superseded, failed).",
		},
		[]string{"result"},
	)

	mediaResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "journal_client",
			Name:      "media_resolutions_total",
			Help:      "Media references by outcome (uploaded, skipped, degraded).",
		},
		[]string{"outcome"},
	)
)

func observeMediaOutcome(o media.Outcome) {
	mediaResolutionsTotal.WithLabelValues(string(o)).Inc()
}
