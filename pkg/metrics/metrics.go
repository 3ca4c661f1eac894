package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for community detection runs
type Registry struct {
	DetectionRunsTotal *prometheus.CounterVec
	DetectionDuration  *prometheus.HistogramVec

	PassesTotal  *prometheus.CounterVec
	PassDuration *prometheus.HistogramVec
	MovesTotal   *prometheus.CounterVec

	LevelsTotal      *prometheus.CounterVec
	LevelDuration    *prometheus.HistogramVec
	ClustersDetected *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.DetectionRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_detection_runs_total",
			Help: "Total number of completed detection runs",
		},
		[]string{"strategy", "status"},
	)

	r.DetectionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_detection_duration_seconds",
			Help:    "End-to-end detection run duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0},
		},
		[]string{"strategy"},
	)

	r.PassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_local_moving_passes_total",
			Help: "Total number of local-moving passes executed",
		},
		[]string{"strategy"},
	)

	r.PassDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_local_moving_pass_duration_seconds",
			Help:    "Duration of one local-moving pass in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"strategy"},
	)

	r.MovesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_node_moves_total",
			Help: "Total number of applied node moves",
		},
		[]string{"strategy"},
	)

	r.LevelsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "communities_hierarchy_levels_total",
			Help: "Total number of hierarchy levels processed",
		},
		[]string{"strategy"},
	)

	r.LevelDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "communities_hierarchy_level_duration_seconds",
			Help:    "Duration of one hierarchy level in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		},
		[]string{"strategy"},
	)

	r.ClustersDetected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "communities_clusters_detected",
			Help: "Number of clusters found by the most recent run",
		},
		[]string{"strategy"},
	)

	return r
}

// Prometheus returns the underlying registry for exposition
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// RecordPass records one completed local-moving pass
func (r *Registry) RecordPass(strategy string, moves uint64, duration time.Duration) {
	r.PassesTotal.WithLabelValues(strategy).Inc()
	r.PassDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	r.MovesTotal.WithLabelValues(strategy).Add(float64(moves))
}

// RecordLevel records one completed hierarchy level
func (r *Registry) RecordLevel(strategy string, duration time.Duration) {
	r.LevelsTotal.WithLabelValues(strategy).Inc()
	r.LevelDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordRun records a finished detection run
func (r *Registry) RecordRun(strategy, status string, clusters uint64, duration time.Duration) {
	r.DetectionRunsTotal.WithLabelValues(strategy, status).Inc()
	r.DetectionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	r.ClustersDetected.WithLabelValues(strategy).Set(float64(clusters))
}
