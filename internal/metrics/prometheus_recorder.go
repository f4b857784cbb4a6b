package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "novelbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration   *prom.HistogramVec
	stageResults    *prom.CounterVec
	chapterOutcomes *prom.CounterVec
	runDuration     *prom.HistogramVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		chapterOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "chapters_total",
			Help:      "Chapters produced or skipped per stage",
		}, []string{"stage", "outcome"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total duration of a clean, convert or epub run",
			Buckets:   prom.DefBuckets,
		}, []string{"operation"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.chapterOutcomes, pr.runDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncChapterOutcome(stage string, outcome ChapterOutcome) {
	if p == nil {
		return
	}
	p.chapterOutcomes.WithLabelValues(stage, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(operation string, d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.WithLabelValues(operation).Observe(d.Seconds())
}
