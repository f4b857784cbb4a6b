package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultWarning ResultLabel = "warning"
	ResultFatal   ResultLabel = "fatal"
)

// ChapterOutcome is what happened to one chapter in one stage.
type ChapterOutcome string

const (
	ChapterProduced ChapterOutcome = "produced"
	ChapterSkipped  ChapterOutcome = "skipped"
)

// Recorder defines observability hooks for pipeline runs.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncChapterOutcome(stage string, outcome ChapterOutcome)
	ObserveRunDuration(operation string, d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncChapterOutcome(string, ChapterOutcome)   {}
func (NoopRecorder) ObserveRunDuration(string, time.Duration)   {}
