package collection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bggBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgg_batches_total",
		Help: "Detail batches fetched and folded",
	})

	bggItemsFoldedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bgg_items_folded_total",
		Help: "Item detail records folded into aggregates",
	})

	bggFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bgg_fetch_duration_seconds",
		Help:    "Duration of a full collection fetch by outcome",
		Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})
)
