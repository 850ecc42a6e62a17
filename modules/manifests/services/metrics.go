package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	batchResultOK     = "ok"
	batchResultFailed = "failed"
	batchResultDryRun = "dry_run"

	recordOutcomeInserted = "inserted"
	recordOutcomeUpdated  = "updated"
	recordOutcomeFailed   = "failed"
)

type metrics struct {
	runsTotal    *prometheus.CounterVec
	batchesTotal *prometheus.CounterVec
	recordsTotal *prometheus.CounterVec

	batchLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manifest_import",
			Name:      "runs_total",
			Help:      "Total number of import runs by outcome.",
		}, []string{"result"}),
		batchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manifest_import",
			Name:      "batches_total",
			Help:      "Total number of processed batches.",
		}, []string{"result"}),
		recordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manifest_import",
			Name:      "records_total",
			Help:      "Total number of records written, by outcome.",
		}, []string{"outcome"}),
		batchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "manifest_import",
			Name:      "batch_duration_seconds",
			Help:      "Latency distribution for batch upserts.",
			Buckets: []float64{
				0.005, 0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30,
			},
		}, []string{"result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
