// Package metrics exposes run and API counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements run.Recorder using Prometheus.
type Recorder struct {
	registry *prometheus.Registry

	steps       prometheus.Counter
	results     *prometheus.GaugeVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry so several recorders can
// coexist in one process.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "tsobjective_steps_total",
			Help: "Total number of run steps performed",
		}),
		results: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tsobjective_metric_value",
			Help: "Last computed objective metric per geometry",
		}, []string{"objective", "algorithm", "geometry"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tsobjective_evaluations_total",
			Help: "Total number of evaluations by final status",
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tsobjective_evaluation_duration_seconds",
			Help:    "Duration of evaluations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}
}

// Registry is what the /metrics handler serves.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) RecordStep() { r.steps.Inc() }

func (r *Recorder) RecordResult(objective, algorithm, geometry string, value float64) {
	r.results.WithLabelValues(objective, algorithm, geometry).Set(value)
}

// RecordEvaluation counts a finished evaluation and its duration.
func (r *Recorder) RecordEvaluation(status string, d time.Duration) {
	r.evaluations.WithLabelValues(status).Inc()
	r.duration.WithLabelValues(status).Observe(d.Seconds())
}
