// Package metrics defines observability hooks for the publish pipeline.
package metrics

import "time"

// ResultLabel enumerates file build result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
	ResultSkipped ResultLabel = "skipped"
)

// Recorder defines observability hooks for build and per-file metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All
// methods must be safe on the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveFileDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncFileResult(result ResultLabel)
	IncErrorCategory(category string)
	SetParallelism(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveFileDuration(time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncFileResult(ResultLabel)          {}
func (NoopRecorder) IncErrorCategory(string)            {}
func (NoopRecorder) SetParallelism(int)                 {}
