package site

import (
	"context"
	"html/template"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/filemap"
	"git.home.luguber.info/inful/popsite/internal/fsx"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/markup"
	"git.home.luguber.info/inful/popsite/internal/metrics"
	"git.home.luguber.info/inful/popsite/internal/plugin"
	"git.home.luguber.info/inful/popsite/internal/retry"
)

// Builder renders a site. One Builder owns the post collection and include
// cache across builds; Build and Rebuild are serialized.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	fs       *fsx.FS
	files    *filemap.FileMap
	registry *plugin.Registry
	catalog  plugin.Catalog
	engines  *markup.Registry
	recorder metrics.Recorder
	observer observers
	onReady  []func(*Report)
	extra    []plugin.Plugin

	posts content.Collection

	// mu serializes Build and Rebuild.
	mu       sync.Mutex
	includes map[string]template.HTML

	readyMu      sync.Mutex
	ready        chan struct{}
	readyClaimed bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// WithFS sets the filesystem used for every read and write.
func WithFS(f *fsx.FS) Option { return func(b *Builder) { b.fs = f } }

// WithCatalog sets the plugins available to `require`.
func WithCatalog(c plugin.Catalog) Option { return func(b *Builder) { b.catalog = c } }

// WithPlugins registers plugins after the configured ones, so they win on name clashes.
func WithPlugins(ps ...plugin.Plugin) Option {
	return func(b *Builder) { b.extra = append(b.extra, ps...) }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithObserver adds a build observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) { b.observer = append(b.observer, o) }
}

// OnReady registers a callback invoked after every full build with its report.
func OnReady(fn func(*Report)) Option {
	return func(b *Builder) { b.onReady = append(b.onReady, fn) }
}

// New creates a Builder and loads the plugins named in cfg.Require. A plugin
// that cannot be loaded is a fatal startup error.
func New(cfg *config.Config, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:      cfg,
		registry: plugin.NewDefaultRegistry(),
		catalog:  plugin.DefaultCatalog(),
		engines:  markup.NewRegistry(),
		recorder: metrics.NoopRecorder{},
		ready:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.fs == nil {
		b.fs = fsx.New(retry.NewBackoff(retry.FromConfig(cfg.Retry)), b.logger)
	}
	files, err := filemap.New(cfg, filemap.WithFS(b.fs), filemap.WithLogger(b.logger))
	if err != nil {
		return nil, err
	}
	b.files = files

	if err := b.registry.Load(b.catalog, cfg.Require, cfg.Plugins); err != nil {
		return nil, err
	}
	for _, p := range b.extra {
		b.registry.Register(p)
	}
	b.observer = append(observers{recorderObserver{rec: b.recorder}}, b.observer...)

	for _, name := range b.registry.Plugins() {
		b.logger.Debug("plugin registered", logfields.Plugin(name))
	}
	return b, nil
}

// Config returns the configuration the builder was created with.
func (b *Builder) Config() *config.Config { return b.cfg }

// FileMap returns the scanner bound to the site root.
func (b *Builder) FileMap() *filemap.FileMap { return b.files }

// Registry returns the helper and filter registry.
func (b *Builder) Registry() *plugin.Registry { return b.registry }

// Posts returns a snapshot of the rendered posts in completion order.
func (b *Builder) Posts() []*content.Post { return b.posts.Snapshot() }

// Ready returns a channel closed when the current build, or the next one if
// none is running, has completed every unit of work.
func (b *Builder) Ready() <-chan struct{} {
	b.readyMu.Lock()
	defer b.readyMu.Unlock()
	return b.ready
}

// claimReady hands the pending ready channel to a starting build.
func (b *Builder) claimReady() chan struct{} {
	b.readyMu.Lock()
	defer b.readyMu.Unlock()
	if b.readyClaimed {
		b.ready = make(chan struct{})
	}
	b.readyClaimed = true
	return b.ready
}

// BuildAll walks the site root and builds every entry.
func (b *Builder) BuildAll(ctx context.Context) (*Report, error) {
	entries, err := b.files.Walk(ctx)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, entries)
}

// Build renders entries into the output directory. It returns the first
// fatal error; recoverable problems are logged and listed in the report.
func (b *Builder) Build(ctx context.Context, entries []filemap.Entry) (*Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ready := b.claimReady()
	bs := b.newBuildState(ctx, uuid.NewString())
	defer bs.cancel(nil)

	b.posts.Reset()
	b.logger.Info("build started", logfields.BuildID(bs.id), logfields.Path(b.cfg.Root), logfields.Count(len(entries)))

	err := b.runStage(bs, StageCacheIncludes, func(ctx context.Context, bs *buildState) error {
		return b.cacheIncludes(ctx, bs, entries)
	})
	if err == nil {
		err = b.runStage(bs, StagePartition, func(_ context.Context, bs *buildState) error {
			b.partition(bs, entries)
			return nil
		})
	}
	if err == nil {
		b.render(bs)
		err = bs.err()
	}
	// The units counter is drained on every path; ready fires only after that.
	bs.units.Wait()
	if err == nil {
		err = context.Cause(ctx)
	}

	bs.report.finish(err)
	close(ready)

	attrs := []any{logfields.BuildID(bs.id), logfields.Outcome(string(bs.report.Outcome)), logfields.Since(bs.report.Start)}
	if err != nil {
		b.logger.Error("build failed", append(attrs, logfields.Error(err))...)
	} else {
		b.logger.Info("build complete", append(attrs, slog.String("summary", bs.report.Summary()))...)
	}
	b.observer.OnBuildComplete(bs.report)
	for _, fn := range b.onReady {
		fn(bs.report)
	}
	return bs.report, err
}

// render runs the concurrent phases. Posts gate auto-generated targets and
// templated pages; static copies run alongside.
func (b *Builder) render(bs *buildState) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		// A failed post phase cancels the build; the gated phases then only
		// drain their counted units.
		_ = b.runStage(bs, StageRenderPosts, b.renderPosts)
		var gated sync.WaitGroup
		gated.Add(2)
		go func() {
			defer gated.Done()
			_ = b.runStage(bs, StageAutoGenerate, b.autoGenerate)
		}()
		go func() {
			defer gated.Done()
			_ = b.runStage(bs, StageRenderFiles, b.renderFiles)
		}()
		gated.Wait()
	}()
	go func() {
		defer wg.Done()
		_ = b.runStage(bs, StageCopyStatic, b.copyStatic)
	}()
	wg.Wait()
}
