// Package metrics exposes the pipeline's Prometheus instrumentation,
// an ambient/supplemental feature named in SPEC_FULL.md: phase
// duration, LLM call outcomes, and merge conflict counts, scraped over
// /metrics on the same listener as the REST façade.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every metric the pipeline records.
type Registry struct {
	PhaseDuration     *prometheus.HistogramVec
	DashboardsTotal   *prometheus.CounterVec
	LLMCallsTotal     *prometheus.CounterVec
	LLMCallDuration   *prometheus.HistogramVec
	MergeConflicts    *prometheus.CounterVec
	ActiveDashboards  prometheus.Gauge
}

// New builds and registers every metric against reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metamind_phase_duration_seconds",
			Help:    "Duration of one phase-engine stage for one dashboard.",
			Buckets: prometheus.DefBuckets,
		}, []string{"phase"}),
		DashboardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "metamind_dashboards_processed_total",
			Help: "Dashboards processed, by outcome.",
		}, []string{"status"}),
		LLMCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "metamind_llm_calls_total",
			Help: "LLM Gateway invocations, by prompt and outcome.",
		}, []string{"prompt", "outcome"}),
		LLMCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "metamind_llm_call_duration_seconds",
			Help:    "LLM Gateway call latency, by prompt.",
			Buckets: prometheus.DefBuckets,
		}, []string{"prompt"}),
		MergeConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "metamind_merge_conflicts_total",
			Help: "Merge conflicts recorded, by entity kind.",
		}, []string{"kind"}),
		ActiveDashboards: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "metamind_active_dashboards",
			Help: "Dashboards currently being processed by the phase engine.",
		}),
	}

	reg.MustRegister(r.PhaseDuration, r.DashboardsTotal, r.LLMCallsTotal, r.LLMCallDuration, r.MergeConflicts, r.ActiveDashboards)
	return r
}

// ObservePhase records one phase's wall-clock duration.
func (r *Registry) ObservePhase(phase string, d time.Duration) {
	r.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// RecordDashboardOutcome increments the per-outcome dashboard counter.
func (r *Registry) RecordDashboardOutcome(status string) {
	r.DashboardsTotal.WithLabelValues(status).Inc()
}

// RecordLLMCall records one LLM Gateway invocation's outcome and latency.
func (r *Registry) RecordLLMCall(prompt, outcome string, d time.Duration) {
	r.LLMCallsTotal.WithLabelValues(prompt, outcome).Inc()
	r.LLMCallDuration.WithLabelValues(prompt).Observe(d.Seconds())
}

// RecordMergeConflict increments the per-kind merge conflict counter.
func (r *Registry) RecordMergeConflict(kind string) {
	r.MergeConflicts.WithLabelValues(kind).Inc()
}
