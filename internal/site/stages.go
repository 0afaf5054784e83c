package site

import (
	"context"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/metrics"
)

// StageName is a strongly-typed identifier for a build phase.
type StageName string

// Canonical stage names, in execution order.
const (
	StageCacheIncludes StageName = "cache_includes"
	StagePartition     StageName = "partition"
	StageRenderPosts   StageName = "render_posts"
	StageAutoGenerate  StageName = "auto_generate"
	StageRenderFiles   StageName = "render_files"
	StageCopyStatic    StageName = "copy_static"
	StageRebuild       StageName = "rebuild"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

func (r StageResult) label() metrics.ResultLabel {
	switch r {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultSuccess
	}
}

type stageFunc func(ctx context.Context, bs *buildState) error

// runStage executes one phase, recording its duration and result.
func (b *Builder) runStage(bs *buildState, name StageName, fn stageFunc) error {
	b.observer.OnStageStart(name)
	warningsBefore := bs.report.warningCount()

	t0 := time.Now()
	err := fn(bs.ctx, bs)
	dur := time.Since(t0)

	result := StageResultSuccess
	var stageErr *StageError
	switch {
	case err == nil:
		if bs.report.warningCount() > warningsBefore {
			result = StageResultWarning
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result = StageResultCanceled
		stageErr = &StageError{Kind: StageErrorCanceled, Stage: name, Err: err}
	default:
		result = StageResultFatal
		stageErr = &StageError{Kind: StageErrorFatal, Stage: name, Err: err}
	}

	bs.report.recordStage(name, dur, result, stageErr)
	b.recorder.ObserveStageDuration(string(name), dur)
	b.recorder.IncStageResult(string(name), result.label())
	b.observer.OnStageComplete(name, dur, result)
	b.logger.Debug("stage complete", logfields.Stage(string(name)), logfields.BuildID(bs.id),
		logfields.Result(string(result)), logfields.DurationMS(float64(dur.Microseconds())/1000))

	if stageErr != nil {
		return stageErr
	}
	return nil
}
