package pipeline

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in a run.
type Stage func(ctx context.Context, st *State) error

// StageName is a strongly-typed identifier for a stage.
type StageName string

// Canonical stage names.
const (
	StageReadRaw   StageName = "read_raw"
	StageNormalize StageName = "normalize"
	StageDedup     StageName = "dedup"
	StageRender    StageName = "render"
	StagePackage   StageName = "package"
	StageWrite     StageName = "write_output"
)

// StageDef pairs a stage name with its implementation.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind classifies why a stage stopped the run.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError wraps the error that stopped a run with the stage it came from.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }
