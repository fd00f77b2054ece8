package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fileDuration  prom.Histogram
	buildDuration prom.Histogram
	fileResults   *prom.CounterVec
	errorCounts   *prom.CounterVec
	parallelism   prom.Gauge
}

// NewPrometheusRecorder constructs and registers the build metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fileDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpublish",
			Name:      "file_build_duration_seconds",
			Help:      "Duration of individual file pipelines",
			Buckets:   prom.DefBuckets,
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpublish",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		fileResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "file_results_total",
			Help:      "File build results by outcome",
		}, []string{"result"}),
		errorCounts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpublish",
			Name:      "errors_total",
			Help:      "Collected errors by category",
		}, []string{"category"}),
		parallelism: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docpublish",
			Name:      "parallelism",
			Help:      "Configured file pipeline parallelism",
		}),
	}
	reg.MustRegister(pr.fileDuration, pr.buildDuration, pr.fileResults, pr.errorCounts, pr.parallelism)
	return pr
}

func (p *PrometheusRecorder) ObserveFileDuration(d time.Duration) {
	if p == nil || p.fileDuration == nil {
		return
	}
	p.fileDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFileResult(result ResultLabel) {
	if p == nil || p.fileResults == nil {
		return
	}
	p.fileResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncErrorCategory(category string) {
	if p == nil || p.errorCounts == nil {
		return
	}
	p.errorCounts.WithLabelValues(category).Inc()
}

func (p *PrometheusRecorder) SetParallelism(n int) {
	if p == nil || p.parallelism == nil {
		return
	}
	p.parallelism.Set(float64(n))
}
