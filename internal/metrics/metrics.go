// Package metrics collects per-run counters and stage timings in a private
// Prometheus registry and writes them in textfile-collector format.
package metrics

import (
	"time"

	"finprobe/domain/report"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "finprobe"

// Recorder holds the run's collectors
type Recorder struct {
	registry *prometheus.Registry

	sheets          *prometheus.CounterVec
	findings        *prometheus.CounterVec
	correlations    prometheus.Counter
	recommendations prometheus.Counter
	stageDuration   *prometheus.HistogramVec
	stageFailures   *prometheus.CounterVec
}

// NewRecorder creates a recorder backed by its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		sheets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_total",
			Help:      "Sheets seen in the workbook, by load outcome.",
		}, []string{"outcome"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Risk and opportunity findings, by kind.",
		}, []string{"kind"}),
		correlations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlations_total",
			Help:      "Strongly correlated column pairs found.",
		}),
		recommendations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Recommendations synthesized.",
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Stages that aborted the run.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.sheets, r.findings, r.correlations, r.recommendations, r.stageDuration, r.stageFailures)
	return r
}

// Registry exposes the underlying registry as a gatherer
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStage records how long a stage took
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// StageFailed counts a stage that aborted the run
func (r *Recorder) StageFailed(stage string) {
	r.stageFailures.WithLabelValues(stage).Inc()
}

// RecordReport counts the outcome of a finished run
func (r *Recorder) RecordReport(rep *report.Report) {
	r.sheets.WithLabelValues("loaded").Add(float64(len(rep.Tables)))
	r.sheets.WithLabelValues("skipped").Add(float64(len(rep.Skipped)))
	for _, t := range rep.Tables {
		for _, f := range t.Risk.Risks {
			r.findings.WithLabelValues(string(f.Kind)).Inc()
		}
		for _, f := range t.Risk.Opportunities {
			r.findings.WithLabelValues(string(f.Kind)).Inc()
		}
		r.correlations.Add(float64(len(t.Trend.Correlations)))
	}
	r.recommendations.Add(float64(len(rep.Recommendations)))
}

// WriteTextfile writes every collected metric to path
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
