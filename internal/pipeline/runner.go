package pipeline

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/docpublish/internal/document"
	"git.home.luguber.info/inful/docpublish/internal/events"
	"git.home.luguber.info/inful/docpublish/internal/metrics"
)

// FileInput is one scheduled source file with its raw bytes.
type FileInput struct {
	Doc document.SourceDocument
	Raw []byte
}

// Runner executes many independent file pipelines concurrently, bounded
// by the configured parallelism. A fatal error in one file never cancels
// sibling pipelines; cancelling ctx only stops scheduling new files.
type Runner struct {
	pipeline    *Pipeline
	parallelism int
	recorder    metrics.Recorder
	reporter    *events.Reporter
}

// NewRunner creates a runner. recorder may be nil.
func NewRunner(p *Pipeline, parallelism int, recorder metrics.Recorder, reporter *events.Reporter) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Runner{pipeline: p, parallelism: parallelism, recorder: recorder, reporter: reporter}
}

// Run builds all files and returns one report per scheduled file, in
// input order.
func (r *Runner) Run(ctx context.Context, files []FileInput) []Report {
	start := time.Now()
	r.recorder.SetParallelism(r.parallelism)

	sem := make(chan struct{}, r.parallelism)
	reports := make([]Report, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		if ctx.Err() != nil {
			reports[i] = Report{Doc: file.Doc, Skipped: true}
			continue
		}

		// The slot is acquired before spawning so cancellation stops
		// scheduling files still queued behind the semaphore.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			reports[i] = Report{Doc: file.Doc, Skipped: true}
			continue
		}

		wg.Add(1)
		go func(i int, file FileInput) {
			defer wg.Done()
			defer func() { <-sem }()

			report := r.pipeline.BuildFile(ctx, file.Doc, file.Raw)
			reports[i] = report
			r.record(report)
		}(i, file)
	}
	wg.Wait()

	r.recorder.ObserveBuildDuration(time.Since(start))
	return reports
}

func (r *Runner) record(report Report) {
	r.recorder.ObserveFileDuration(report.Duration)

	for _, e := range report.Errors {
		r.recorder.IncErrorCategory(string(e.Category))
	}

	switch {
	case report.Fatal():
		r.recorder.IncFileResult(metrics.ResultFatal)
	case report.Skipped:
		r.recorder.IncFileResult(metrics.ResultSkipped)
	case len(report.Errors) > 0:
		r.recorder.IncFileResult(metrics.ResultWarning)
	default:
		r.recorder.IncFileResult(metrics.ResultSuccess)
	}

	if report.Item != nil {
		r.reporter.Published(*report.Item, len(report.Errors))
	}
}
