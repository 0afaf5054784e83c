// Package watch keeps a built site in sync with its sources: file changes
// are debounced into incremental rebuilds, and changes that cannot be applied
// to one file fall back to a full build.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	"golang.org/x/time/rate"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/site"
)

// Rebuilder is the part of site.Builder the watcher drives.
type Rebuilder interface {
	Rebuild(ctx context.Context, path string) error
	BuildAll(ctx context.Context) (*site.Report, error)
}

// Watcher turns filesystem events under the site root into rebuilds.
type Watcher struct {
	rebuilder Rebuilder
	files     *filemap.FileMap
	logger    *slog.Logger

	debounce    time.Duration
	fullEvery   time.Duration
	limiter     *rate.Limiter
	flushNotify chan struct{}

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// New creates a Watcher for the site described by cfg.
func New(r Rebuilder, files *filemap.FileMap, cfg *config.Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		rebuilder:   r,
		files:       files,
		logger:      logger,
		debounce:    cfg.DebounceDuration(),
		limiter:     rate.NewLimiter(rate.Inf, 1),
		flushNotify: make(chan struct{}, 1),
		pending:     map[string]struct{}{},
	}
	if cfg.Watch.RateLimit > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.Watch.RateLimit), max(cfg.Watch.Burst, 1))
	}
	if cfg.Watch.FullRebuild != "" {
		d, err := time.ParseDuration(cfg.Watch.FullRebuild)
		if err != nil || d <= 0 {
			return nil, foundationerrors.ValidationError("watch.fullRebuild must be a positive duration").
				WithContext("value", cfg.Watch.FullRebuild).Build()
		}
		w.fullEvery = d
	}
	return w, nil
}

// Run watches until ctx is canceled. It does not perform an initial build.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "cannot create file watcher").Fatal().Build()
	}
	defer func() { _ = fw.Close() }()

	if err := w.addDirs(fw, w.files.Root()); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "cannot watch site root").
			Fatal().WithPath(w.files.Root()).Build()
	}

	if w.fullEvery > 0 {
		s, err := w.schedule(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Shutdown() }()
	}

	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		w.worker(ctx)
	}()
	defer workers.Wait()

	w.logger.Info("watching for changes", logfields.Path(w.files.Root()), slog.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

// schedule starts the periodic full rebuild.
func (w *Watcher) schedule(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "cannot create scheduler").Fatal().Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.fullEvery),
		gocron.NewTask(func() { w.fullBuild(ctx, "scheduled") }),
		gocron.WithName("full-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "cannot schedule full rebuild").Fatal().Build()
	}
	s.Start()
	w.logger.Info("periodic full rebuild scheduled", slog.Duration("every", w.fullEvery))
	return s, nil
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirs(fw, ev.Name)
		}
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	w.logger.Debug("change detected", logfields.Path(ev.Name), logfields.Event(ev.Op.String()))
	w.enqueue(ev.Name)
}

// enqueue records a changed path and restarts the quiet window.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.flushNotify <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// drain takes the pending paths in a stable order.
func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	clear(w.pending)
	slices.Sort(paths)
	return paths
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.flushNotify:
			w.process(ctx, w.drain())
		}
	}
}

// process rebuilds each path, falling back to one full build when any of
// them cannot be handled incrementally.
func (w *Watcher) process(ctx context.Context, paths []string) {
	full := false
	for _, p := range paths {
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		err := w.rebuilder.Rebuild(ctx, p)
		switch {
		case err == nil:
		case errors.Is(err, site.ErrFullRebuildRequired):
			full = true
		case errors.Is(err, filemap.ErrOutsideRoot):
		default:
			w.logger.Warn("incremental rebuild failed", logfields.Path(p), logfields.Error(err))
			if foundationerrors.IsFatal(err) {
				full = true
			}
		}
		if full {
			break
		}
	}
	if full {
		w.fullBuild(ctx, "change")
	}
}

func (w *Watcher) fullBuild(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	w.logger.Info("full rebuild", slog.String("reason", reason))
	if _, err := w.rebuilder.BuildAll(ctx); err != nil {
		w.logger.Error("full rebuild failed", logfields.Error(err))
	}
}

// addDirs watches root and every directory below it that a build would walk.
func (w *Watcher) addDirs(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.files.Root() {
			if _, excluded, rerr := w.files.Resolve(path, true); rerr == nil && excluded {
				if rel, _ := filepath.Rel(w.files.Root(), path); w.files.Excluder().Prune(filepath.ToSlash(rel)) {
					return filepath.SkipDir
				}
			}
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnore filters editor scratch files.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, ".#"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == ".DS_Store", base == "Thumbs.db":
		return true
	}
	return false
}
