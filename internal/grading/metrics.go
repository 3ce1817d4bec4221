package grading

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "quiz",
		Subsystem: "grading",
		Name:      "queue_depth",
		Help:      "Number of submissions waiting to be graded",
	})

	queueEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "grading",
		Name:      "enqueued_total",
		Help:      "Number of snapshots added to the grading queue",
	}, []string{"priority"})

	gradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "grading",
		Name:      "graded_total",
		Help:      "Number of submissions graded successfully",
	})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "grading",
		Name:      "retries_total",
		Help:      "Number of grading attempts requeued after failure",
	})

	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "grading",
		Name:      "dropped_total",
		Help:      "Number of grading results discarded without retry",
	}, []string{"reason"})
)
