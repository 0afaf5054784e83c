package site

import (
	"context"
	"errors"
	"sync"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

// buildState is the per-build scratch space shared by every unit of work.
type buildState struct {
	id      string
	ctx     context.Context
	cancel  context.CancelCauseFunc
	report  *Report
	rebuild bool

	// units is the combined outstanding-work counter across all buckets.
	units sync.WaitGroup
	sem   chan struct{}

	posts   []filemap.Entry
	files   []filemap.Entry
	static  []filemap.Entry
	targets []config.AutoTarget

	layoutMu sync.Mutex
	layouts  map[string]*layout

	mu    sync.Mutex
	fatal error
}

func (b *Builder) newBuildState(ctx context.Context, id string) *buildState {
	ctx, cancel := context.WithCancelCause(ctx)
	limit := b.cfg.Concurrency
	if limit <= 0 {
		limit = config.DefaultConcurrency
	}
	return &buildState{
		id:      id,
		ctx:     ctx,
		cancel:  cancel,
		report:  newReport(id),
		sem:     make(chan struct{}, limit),
		layouts: map[string]*layout{},
	}
}

// fail records the first fatal error and cancels the build.
func (bs *buildState) fail(err error) {
	bs.mu.Lock()
	if bs.fatal == nil {
		bs.fatal = err
	}
	bs.mu.Unlock()
	bs.cancel(err)
}

// err returns the first fatal error, if any.
func (bs *buildState) err() error {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.fatal
}

// handle routes a unit's error: fatal errors stop the build, anything else is
// logged and recorded so sibling units continue.
func (b *Builder) handle(bs *buildState, stage StageName, path string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) && bs.ctx.Err() != nil {
		return
	}
	if foundationerrors.IsFatal(err) {
		b.logger.Error("fatal build error", logfields.Stage(string(stage)), logfields.Path(path), logfields.Error(err))
		bs.fail(err)
		return
	}
	b.logger.Warn("skipped after error", logfields.Stage(string(stage)), logfields.Path(path), logfields.Error(err))
	bs.report.addWarning(err)
}

// runUnits runs fn for every item in parallel, bounded by the concurrency
// limit. Every item marks one unit done regardless of outcome.
func runUnits[T any](b *Builder, bs *buildState, stage StageName, items []T, id func(T) string, fn func(context.Context, *buildState, T) error) error {
	var wg sync.WaitGroup
	wg.Add(len(items))
	for _, item := range items {
		go func() {
			defer wg.Done()
			defer bs.units.Done()
			select {
			case bs.sem <- struct{}{}:
			case <-bs.ctx.Done():
				return
			}
			defer func() { <-bs.sem }()
			if bs.ctx.Err() != nil {
				return
			}
			b.handle(bs, stage, id(item), fn(bs.ctx, bs, item))
		}()
	}
	wg.Wait()
	if err := bs.err(); err != nil {
		return err
	}
	return context.Cause(bs.ctx)
}

func entryID(e filemap.Entry) string { return e.Rel }

// renderContext returns a fresh context over the current post snapshot.
func (b *Builder) renderContext() *plugin.RenderContext {
	return plugin.NewRenderContext(b.cfg, b.posts.Snapshot(), b.includes, b.logger)
}

// unitError builds a recoverable error for one source file.
func unitError(err error, category foundationerrors.ErrorCategory, msg string, stage StageName, rel string) error {
	return foundationerrors.WrapError(err, category, msg).WithPath(rel).WithPhase(string(stage)).Build()
}

// ioError builds a fatal filesystem error.
func ioError(err error, msg string, stage StageName, path string) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, msg).
		Fatal().WithPath(path).WithPhase(string(stage)).Build()
}
