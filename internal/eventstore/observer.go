package eventstore

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/site"
)

const writeTimeout = 5 * time.Second

// Observer records builds into a Store. Stage results are buffered until the
// build completes because only the report carries the build ID.
// Store failures are logged and never affect the build.
type Observer struct {
	site.NoopObserver

	store  Store
	keep   int
	logger *slog.Logger

	mu     sync.Mutex
	stages []StageCompleted
	ends   []time.Time
}

// NewObserver creates an Observer that keeps the newest keep builds.
func NewObserver(store Store, keep int, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{store: store, keep: keep, logger: logger}
}

// OnStageComplete buffers the phase result.
func (o *Observer) OnStageComplete(stage site.StageName, d time.Duration, result site.StageResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, StageCompleted{Stage: string(stage), Result: string(result), DurationMS: ms(d)})
	o.ends = append(o.ends, time.Now())
}

// OnBuildComplete writes the buffered phases and the build outcome.
func (o *Observer) OnBuildComplete(r *site.Report) {
	o.mu.Lock()
	stages, ends := o.stages, o.ends
	o.stages, o.ends = nil, nil
	o.mu.Unlock()

	events := make([]Event, 0, len(stages)+1)
	for i, s := range stages {
		e, err := NewStageCompleted(r.BuildID, ends[i], s)
		if err != nil {
			o.logger.Warn("cannot record stage", logfields.BuildID(r.BuildID), logfields.Error(err))
			continue
		}
		events = append(events, e)
	}
	done, err := NewBuildCompleted(r.BuildID, r.End, summarize(r))
	if err != nil {
		o.logger.Warn("cannot record build", logfields.BuildID(r.BuildID), logfields.Error(err))
		return
	}
	events = append(events, done)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := o.store.Append(ctx, events...); err != nil {
		o.logger.Warn("cannot write build history", logfields.BuildID(r.BuildID), logfields.Error(err))
		return
	}
	if err := o.store.Prune(ctx, o.keep); err != nil {
		o.logger.Warn("cannot prune build history", logfields.Error(err))
	}
}

func summarize(r *site.Report) BuildCompleted {
	b := BuildCompleted{
		Outcome:    string(r.Outcome),
		Posts:      r.Posts,
		Files:      r.Files,
		Static:     r.Static,
		Targets:    r.Targets,
		Written:    maps.Clone(r.Written),
		Skipped:    r.Skipped,
		Warnings:   len(r.Warnings),
		DurationMS: ms(r.Duration()),
	}
	if len(r.Errors) > 0 {
		b.Error = r.Errors[0].Error()
	}
	return b
}
