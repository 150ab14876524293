// # internal/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intmap_phase_seconds",
		Help:    "Time spent in one analysis phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	FilesAnalyzed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_files_analyzed",
		Help: "Files analyzed in the last run.",
	})

	FilesFailed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_files_failed",
		Help: "Files that failed to parse in the last run.",
	})

	Components = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_components_total",
		Help: "Components registered in the last run.",
	})

	Edges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_edges_total",
		Help: "Integration edges extracted in the last run.",
	})

	UnresolvedEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_edges_unresolved",
		Help: "Edges targeting the unresolved sentinel in the last run.",
	})

	Crossroads = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intmap_crossroads_total",
		Help: "Module-boundary crossroads detected in the last run.",
	})

	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intmap_runs_total",
		Help: "Completed analysis runs since process start.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intmap_watcher_events_total",
		Help: "File system events received by the watcher.",
	})
)
