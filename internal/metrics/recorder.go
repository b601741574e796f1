package metrics

import "time"

// OutcomeLabel enumerates transform outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSkipped   OutcomeLabel = "skipped"   // ineligible page or fast path
	OutcomeUnchanged OutcomeLabel = "unchanged" // scanned, nothing rewritten
	OutcomeRewritten OutcomeLabel = "rewritten"
	OutcomeAborted   OutcomeLabel = "aborted" // iteration limit reached
)

// PublishOutcomeLabel enumerates the final status of a publish run.
type PublishOutcomeLabel string

const (
	PublishSuccess  PublishOutcomeLabel = "success"
	PublishFailed   PublishOutcomeLabel = "failed"
	PublishCanceled PublishOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for transforms and publish runs.
type Recorder interface {
	ObserveTransformDuration(d time.Duration)
	IncTransformOutcome(outcome OutcomeLabel)
	AddMarkers(decision string, n int)
	IncDiagnostic(kind string)
	ObservePublishDuration(d time.Duration)
	IncPublishOutcome(outcome PublishOutcomeLabel)
	AddPublishedFiles(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTransformDuration(time.Duration) {}
func (NoopRecorder) IncTransformOutcome(OutcomeLabel)       {}
func (NoopRecorder) AddMarkers(string, int)                 {}
func (NoopRecorder) IncDiagnostic(string)                   {}
func (NoopRecorder) ObservePublishDuration(time.Duration)   {}
func (NoopRecorder) IncPublishOutcome(PublishOutcomeLabel)  {}
func (NoopRecorder) AddPublishedFiles(int)                  {}
