// Package observability provides Prometheus metrics for the answer
// pipeline. Metrics are registered once via Init and exposed at
// /metrics; all operations are thread-safe via Prometheus's own
// locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "lawguide"
	pipelineSubsystem = "pipeline"
)

// PipelineMetrics holds the counters and histograms for one process.
type PipelineMetrics struct {
	// RunsTotal counts pipeline runs by terminal outcome.
	// Labels: status (answer, refusal), error_type ("" for success).
	RunsTotal *prometheus.CounterVec

	// StageDurationSeconds measures per-stage latency.
	// Labels: stage (classify, retrieve, rerank, generate, validate, localize).
	StageDurationSeconds *prometheus.HistogramVec

	// CollaboratorFailuresTotal counts degraded collaborator calls.
	// Labels: collaborator (llm, translate, rerank), mode (unavailable, malformed).
	CollaboratorFailuresTotal *prometheus.CounterVec

	// Confidence observes the confidence of released answers.
	Confidence prometheus.Histogram
}

// DefaultMetrics is the process-wide instance, set by Init.
var DefaultMetrics *PipelineMetrics

// Init registers all pipeline metrics. Call once at startup before the
// server accepts traffic.
func Init() *PipelineMetrics {
	m := &PipelineMetrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "runs_total",
			Help:      "Pipeline runs by terminal status and error type.",
		}, []string{"status", "error_type"}),
		StageDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "stage_duration_seconds",
			Help:      "Latency of individual pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		CollaboratorFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "collaborator_failures_total",
			Help:      "Collaborator calls that degraded to their fallback policy.",
		}, []string{"collaborator", "mode"}),
		Confidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: pipelineSubsystem,
			Name:      "answer_confidence",
			Help:      "Confidence of released answers.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
	DefaultMetrics = m
	return m
}

// ObserveRun records a terminal pipeline outcome. Nil-safe so tests can
// run without a registry.
func (m *PipelineMetrics) ObserveRun(status, errorType string, confidence float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status, errorType).Inc()
	if status == "answer" {
		m.Confidence.Observe(confidence)
	}
}

// ObserveFailure records one degraded collaborator call. Nil-safe.
func (m *PipelineMetrics) ObserveFailure(collaborator, mode string) {
	if m == nil {
		return
	}
	m.CollaboratorFailuresTotal.WithLabelValues(collaborator, mode).Inc()
}

// ObserveStage records one stage latency in seconds. Nil-safe.
func (m *PipelineMetrics) ObserveStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDurationSeconds.WithLabelValues(stage).Observe(seconds)
}
