package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/novelbuilder/internal/logfields"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
	"git.home.luguber.info/inful/novelbuilder/internal/observability"
)

// RunStages executes stages in order, recording timing and stopping on the
// first error. A stage that only recorded issues still succeeds, with a
// warning result.
func RunStages(ctx context.Context, st *State, stages []StageDef) error {
	rec := st.recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := &StageError{Kind: StageErrorCanceled, Stage: def.Name, Err: ctx.Err()}
			st.Report.StageResults[def.Name] = metrics.ResultFatal
			rec.IncStageResult(string(def.Name), metrics.ResultFatal)
			return se
		default:
		}

		issuesBefore := len(st.Report.Issues)
		t0 := time.Now()
		stageCtx := observability.WithStage(ctx, string(def.Name))
		err := def.Fn(stageCtx, st)
		dur := time.Since(t0)

		st.Report.StageDurations[def.Name] = dur
		rec.ObserveStageDuration(string(def.Name), dur)

		result := metrics.ResultSuccess
		switch {
		case err != nil:
			result = metrics.ResultFatal
		case len(st.Report.Issues) > issuesBefore:
			result = metrics.ResultWarning
		}
		st.Report.StageResults[def.Name] = result
		rec.IncStageResult(string(def.Name), result)

		observability.DebugContext(stageCtx, "Stage complete",
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			slog.String("result", string(result)))

		if err != nil {
			kind := StageErrorFatal
			if ctx.Err() != nil {
				kind = StageErrorCanceled
			}
			return &StageError{Kind: kind, Stage: def.Name, Err: err}
		}
	}
	return nil
}
