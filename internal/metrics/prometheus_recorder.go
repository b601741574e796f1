package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "futurelink"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg               *prom.Registry
	transformDuration prom.Histogram
	transformOutcomes *prom.CounterVec
	markers           *prom.CounterVec
	diagnostics       *prom.CounterVec
	publishDuration   prom.Histogram
	publishOutcomes   *prom.CounterVec
	publishedFiles    prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
// A nil reg gets a fresh registry, available through Registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		transformDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Duration of a single document transform",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),
		transformOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Document transforms by outcome",
		}, []string{"outcome"}),
		markers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "markers_total",
			Help:      "Processed markers by decision",
		}, []string{"decision"}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Transform diagnostics by kind",
		}, []string{"kind"}),
		publishDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of a full publish run",
			Buckets:   prom.DefBuckets,
		}),
		publishOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_runs_total",
			Help:      "Publish runs by final status",
		}, []string{"outcome"}),
		publishedFiles: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "published_files_total",
			Help:      "Files written by publish runs",
		}),
	}
	reg.MustRegister(
		pr.transformDuration,
		pr.transformOutcomes,
		pr.markers,
		pr.diagnostics,
		pr.publishDuration,
		pr.publishOutcomes,
		pr.publishedFiles,
	)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveTransformDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.transformDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransformOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.transformOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddMarkers(decision string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.markers.WithLabelValues(decision).Add(float64(n))
}

func (p *PrometheusRecorder) IncDiagnostic(kind string) {
	if p == nil {
		return
	}
	p.diagnostics.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) ObservePublishDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.publishDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome PublishOutcomeLabel) {
	if p == nil {
		return
	}
	p.publishOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPublishedFiles(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.publishedFiles.Add(float64(n))
}
