package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "balance_reporter"

var (
	// RemoteReadsTotal counts remote reads by operation and outcome.
	RemoteReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_reads_total",
		Help:      "Remote reads issued, by operation and status.",
	}, []string{"operation", "status"})

	// RemoteReadDuration observes remote read latency by operation.
	RemoteReadDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_read_duration_seconds",
		Help:      "Latency of remote reads.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// LastRunFailedCells is the number of sentinel cells in the most recent run.
	LastRunFailedCells = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_failed_cells",
		Help:      "Read failures recorded by the most recent aggregation run.",
	})

	// LastRunDuration is the wall time of the most recent aggregation run.
	LastRunDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_duration_seconds",
		Help:      "Wall time of the most recent aggregation run.",
	})

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RemoteReadsTotal, RemoteReadDuration, LastRunFailedCells, LastRunDuration)
	})
}

// ObserveRead records the outcome of one remote read started at start.
func ObserveRead(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RemoteReadsTotal.WithLabelValues(operation, status).Inc()
	RemoteReadDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveRun records the summary of one aggregation run.
func ObserveRun(start time.Time, failedCells int) {
	LastRunDuration.Set(time.Since(start).Seconds())
	LastRunFailedCells.Set(float64(failedCells))
}
