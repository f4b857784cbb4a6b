package pipeline

import (
	"fmt"
	"time"

	ferrors "git.home.luguber.info/inful/novelbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/novelbuilder/internal/metrics"
)

// Operation names a user-facing run.
type Operation string

const (
	OpClean   Operation = "clean"
	OpConvert Operation = "convert"
	OpEpub    Operation = "epub"
)

func (o Operation) verb() string {
	if o == OpClean {
		return "cleaned"
	}
	return "converted"
}

// Issue is a recovered, per-item problem. The item was left out.
type Issue struct {
	Stage     StageName
	ChapterID int // 0 when the issue is not about a chapter
	File      string
	Category  ferrors.ErrorCategory
	Message   string
	Err       error
}

// Report summarizes one run.
type Report struct {
	Operation Operation
	Start     time.Time
	End       time.Time
	// Available counts chapter files found in the raw directory, including
	// malformed ones.
	Available int
	// Produced counts chapters present in the final output.
	Produced       int
	Issues         []Issue
	StageDurations map[StageName]time.Duration
	StageResults   map[StageName]metrics.ResultLabel
	// Outputs lists the files written, relative to the output directory.
	Outputs []string
	// OutputDir is where the outputs were written.
	OutputDir string
}

func newReport(op Operation) *Report {
	return &Report{
		Operation:      op,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]metrics.ResultLabel),
	}
}

// AddIssue records a recovered problem.
func (r *Report) AddIssue(stage StageName, chapterID int, file string, err error) {
	r.Issues = append(r.Issues, Issue{
		Stage:     stage,
		ChapterID: chapterID,
		File:      file,
		Category:  ferrors.GetCategory(err),
		Message:   err.Error(),
		Err:       err,
	})
}

// Skipped returns how many available chapters did not make it.
func (r *Report) Skipped() int {
	return r.Available - r.Produced
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

// Summary is the one-line outcome shown to users, e.g.
// "2 of 3 available chapters converted".
func (r *Report) Summary() string {
	return fmt.Sprintf("%d of %d available chapters %s", r.Produced, r.Available, r.Operation.verb())
}

func (r *Report) finish() {
	r.End = time.Now()
}
