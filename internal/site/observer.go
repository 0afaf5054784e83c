package site

import (
	"time"

	"git.home.luguber.info/inful/popsite/internal/metrics"
)

// Observer receives callbacks around stage execution and build lifecycle.
// Build history and notifications hook in here without touching stage code.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnBuildComplete(*Report)                               {}

// observers fans callbacks out in registration order.
type observers []Observer

func (o observers) OnStageStart(stage StageName) {
	for _, ob := range o {
		ob.OnStageStart(stage)
	}
}

func (o observers) OnStageComplete(stage StageName, d time.Duration, r StageResult) {
	for _, ob := range o {
		ob.OnStageComplete(stage, d, r)
	}
}

func (o observers) OnBuildComplete(report *Report) {
	for _, ob := range o {
		ob.OnBuildComplete(report)
	}
}

// recorderObserver adapts metrics.Recorder into build-level callbacks.
type recorderObserver struct{ rec metrics.Recorder }

func (recorderObserver) OnStageStart(StageName)                                {}
func (recorderObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (r recorderObserver) OnBuildComplete(report *Report) {
	r.rec.ObserveBuildDuration(report.Duration())
	r.rec.IncBuildOutcome(string(report.Outcome))
	r.rec.SetPosts(report.Written[KindPost])
	for kind, n := range report.Written {
		r.rec.AddFilesWritten(kind, n)
	}
}
