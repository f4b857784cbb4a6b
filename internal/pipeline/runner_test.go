package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/novel"
)

type countingRecorder struct {
	mu       sync.Mutex
	results  map[string]map[metrics.ResultLabel]int
	outcomes map[string]map[metrics.ChapterOutcome]int
	runCount map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		results:  map[string]map[metrics.ResultLabel]int{},
		outcomes: map[string]map[metrics.ChapterOutcome]int{},
		runCount: map[string]int{},
	}
}

func (c *countingRecorder) ObserveStageDuration(string, time.Duration) {}

func (c *countingRecorder) IncStageResult(stage string, result metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results[stage] == nil {
		c.results[stage] = map[metrics.ResultLabel]int{}
	}
	c.results[stage][result]++
}

func (c *countingRecorder) IncChapterOutcome(stage string, outcome metrics.ChapterOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes[stage] == nil {
		c.outcomes[stage] = map[metrics.ChapterOutcome]int{}
	}
	c.outcomes[stage][outcome]++
}

func (c *countingRecorder) ObserveRunDuration(operation string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runCount[operation]++
}

func (c *countingRecorder) outcome(stage StageName, outcome metrics.ChapterOutcome) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[string(stage)][outcome]
}

func (c *countingRecorder) result(stage StageName, result metrics.ResultLabel) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[string(stage)][result]
}

func (c *countingRecorder) runs(operation string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runCount[operation]
}

func newTestState(rec metrics.Recorder) *State {
	return &State{Report: newReport(OpConvert), recorder: rec}
}

func TestRunStagesRecordsResults(t *testing.T) {
	rec := newCountingRecorder()
	st := newTestState(rec)
	var order []StageName

	err := RunStages(context.Background(), st, []StageDef{
		{StageReadRaw, func(context.Context, *State) error {
			order = append(order, StageReadRaw)
			return nil
		}},
		{StageNormalize, func(_ context.Context, st *State) error {
			order = append(order, StageNormalize)
			st.Report.AddIssue(StageNormalize, 3, "3.txt", ferrors.EmptyInputError("empty").Build())
			return nil
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []StageName{StageReadRaw, StageNormalize}, order)
	assert.Equal(t, metrics.ResultSuccess, st.Report.StageResults[StageReadRaw])
	assert.Equal(t, metrics.ResultWarning, st.Report.StageResults[StageNormalize])
	assert.Equal(t, 1, rec.result(StageNormalize, metrics.ResultWarning))
	assert.Contains(t, st.Report.StageDurations, StageReadRaw)
}

func TestRunStagesStopsOnError(t *testing.T) {
	rec := newCountingRecorder()
	st := newTestState(rec)
	boom := ferrors.PackagingError("boom").Build()
	ran := false

	err := RunStages(context.Background(), st, []StageDef{
		{StagePackage, func(context.Context, *State) error { return boom }},
		{StageWrite, func(context.Context, *State) error {
			ran = true
			return nil
		}},
	})
	require.Error(t, err)
	assert.False(t, ran)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StagePackage, se.Stage)
	assert.Equal(t, StageErrorFatal, se.Kind)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, rec.result(StagePackage, metrics.ResultFatal))
	assert.NotContains(t, st.Report.StageResults, StageWrite)
}

func TestRunStagesWithoutRecorder(t *testing.T) {
	st := newTestState(nil)
	require.NoError(t, RunStages(context.Background(), st, []StageDef{
		{StageReadRaw, func(context.Context, *State) error { return nil }},
	}))
}

func TestMapChaptersKeepsOrder(t *testing.T) {
	chapters := []*novel.Chapter{{ID: 1}, {ID: 2}, {ID: 5}, {ID: 10}}
	results, err := mapChapters(context.Background(), 3, chapters, func(c *novel.Chapter) (int, error) {
		if c.ID == 5 {
			return 0, ferrors.StructuralMismatchError("bad").Build()
		}
		// Later chapters finish first.
		time.Sleep(time.Duration(10-c.ID) * time.Millisecond)
		return c.ID * 10, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, 10, results[0].value)
	assert.Equal(t, 20, results[1].value)
	assert.Error(t, results[2].err)
	assert.Equal(t, 100, results[3].value)
}

func TestMapChaptersAbortsOnFatal(t *testing.T) {
	chapters := []*novel.Chapter{{ID: 1}, {ID: 2}}
	_, err := mapChapters(context.Background(), 1, chapters, func(c *novel.Chapter) (int, error) {
		return 0, ferrors.TemplateError("broken").Build()
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTemplate))
}

func TestReportSummary(t *testing.T) {
	r := newReport(OpClean)
	r.Available, r.Produced = 3, 2
	assert.Equal(t, "2 of 3 available chapters cleaned", r.Summary())
	assert.Equal(t, 1, r.Skipped())

	r = newReport(OpEpub)
	r.Available, r.Produced = 4, 4
	assert.Equal(t, "4 of 4 available chapters converted", r.Summary())
	r.finish()
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))
}
