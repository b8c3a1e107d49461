package livestore

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricLiveQueries       = "live_queries"
	MetricTrackedIDs        = "tracked_identifiers"
	MetricExecutions        = "executions_total"
	MetricExecutionErrors   = "execution_errors_total"
	MetricDiscardedCommits  = "discarded_commits_total"
	MetricInvalidations     = "invalidations_total"
	MetricExecutionDuration = "execution_duration_seconds"
)

// metrics are owned by one Store so that several stores can share a
// process, each registering with its own Registerer.
type metrics struct {
	liveQueries       prometheus.Gauge
	trackedIDs        prometheus.Gauge
	executions        prometheus.Counter
	executionErrors   prometheus.Counter
	discardedCommits  prometheus.Counter
	invalidations     prometheus.Counter
	executionDuration prometheus.Histogram
}

func newMetrics(namespace string, reg prometheus.Registerer) *metrics {
	m := &metrics{
		liveQueries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricLiveQueries,
			Help:      "Number of registered live queries.",
		}),
		trackedIDs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricTrackedIDs,
			Help:      "Number of resource identifiers with at least one live query.",
		}),
		executions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricExecutions,
			Help:      "Live query executions, including the first one.",
		}),
		executionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricExecutionErrors,
			Help:      "Live query executions where the executor failed.",
		}),
		discardedCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricDiscardedCommits,
			Help:      "Executions whose dependency set was discarded as stale or unregistered.",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricInvalidations,
			Help:      "Calls to Invalidate.",
		}),
		executionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      MetricExecutionDuration,
			Help:      "Duration of live query executions.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.liveQueries,
			m.trackedIDs,
			m.executions,
			m.executionErrors,
			m.discardedCommits,
			m.invalidations,
			m.executionDuration,
		)
	}
	return m
}
