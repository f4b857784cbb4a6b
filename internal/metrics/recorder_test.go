package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; it is safe for the concurrent use the pipeline
// makes of a Recorder.
type testRecorder struct {
	mu              sync.Mutex
	stageDurations  map[string]int
	stageResults    map[string]map[ResultLabel]int
	chapterOutcomes map[string]map[ChapterOutcome]int
	runDurations    map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations:  map[string]int{},
		stageResults:    map[string]map[ResultLabel]int{},
		chapterOutcomes: map[string]map[ChapterOutcome]int{},
		runDurations:    map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}

func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}

func (t *testRecorder) IncChapterOutcome(stage string, outcome ChapterOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.chapterOutcomes[stage]
	if !ok {
		m = map[ChapterOutcome]int{}
		t.chapterOutcomes[stage] = m
	}
	m[outcome]++
}

func (t *testRecorder) ObserveRunDuration(operation string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runDurations[operation]++
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
