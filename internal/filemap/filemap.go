// Package filemap walks a site's source tree and classifies what it finds.
package filemap

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/popsite/internal/config"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/fsx"
	"git.home.luguber.info/inful/popsite/internal/logfields"
)

// Result is the outcome of one walk.
type Result struct {
	Entries []Entry
	Err     error
}

// FileMap scans a site root. It is safe to Walk the same FileMap repeatedly.
type FileMap struct {
	root     string
	dirs     config.DirsConfig
	excluder *Excluder
	fs       *fsx.FS
	logger   *slog.Logger
	limit    int
}

// Option configures a FileMap.
type Option func(*FileMap)

// WithFS sets the filesystem used for directory reads and stats.
func WithFS(f *fsx.FS) Option { return func(m *FileMap) { m.fs = f } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(m *FileMap) { m.logger = l } }

// New creates a FileMap for cfg.Root.
func New(cfg *config.Config, opts ...Option) (*FileMap, error) {
	excluder, err := NewExcluder(cfg)
	if err != nil {
		return nil, err
	}
	m := &FileMap{
		root:     filepath.Clean(cfg.Root),
		dirs:     cfg.Dirs,
		excluder: excluder,
		limit:    cfg.Concurrency,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.fs == nil {
		m.fs = fsx.New(nil, m.logger)
	}
	if m.limit <= 0 {
		m.limit = config.DefaultConcurrency
	}
	return m, nil
}

// Root returns the directory being walked.
func (m *FileMap) Root() string { return m.root }

// Excluder returns the exclusion rules applied by the walk.
func (m *FileMap) Excluder() *Excluder { return m.excluder }

// Resolve classifies a single path with the same rules as a walk.
// excluded is true when a walk would have dropped the path.
func (m *FileMap) Resolve(path string, isDir bool) (entry Entry, excluded bool, err error) {
	rel, err := m.rel(path)
	if err != nil {
		return Entry{}, false, err
	}
	entry = Entry{Path: filepath.Join(m.root, filepath.FromSlash(rel)), Rel: rel, Kind: Classify(m.dirs, rel, isDir)}
	return entry, m.excluder.Excluded(rel), nil
}

func (m *FileMap) rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.root, path)
	}
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.ToSlash(rel), nil
}

// Walk enumerates the tree and blocks until every read and stat has finished.
func (m *FileMap) Walk(ctx context.Context) ([]Entry, error) {
	res := <-m.WalkAsync(ctx)
	return res.Entries, res.Err
}

// WalkAsync starts a concurrent walk. The returned channel delivers exactly one
// Result once no directory read or stat remains outstanding, then closes.
func (m *FileMap) WalkAsync(ctx context.Context) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- m.walk(ctx)
	}()
	return out
}

type walkState struct {
	m       *FileMap
	ctx     context.Context
	wg      sync.WaitGroup
	sem     chan struct{}
	mu      sync.Mutex
	entries []Entry
	rootErr error
}

func (m *FileMap) walk(ctx context.Context) Result {
	start := time.Now()
	w := &walkState{m: m, ctx: ctx, sem: make(chan struct{}, m.limit)}

	w.wg.Add(1)
	go w.readDir(m.root)
	w.wg.Wait()

	if w.rootErr != nil {
		return Result{Err: foundationerrors.WrapError(w.rootErr, foundationerrors.CategoryFileSystem, "cannot read site root").
			Fatal().WithPath(m.root).WithPhase("walk").Build()}
	}
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	slices.SortFunc(w.entries, func(a, b Entry) int { return strings.Compare(a.Rel, b.Rel) })
	m.logger.Debug("walk complete", logfields.Path(m.root), logfields.Count(len(w.entries)), logfields.Since(start))
	return Result{Entries: w.entries}
}

func (w *walkState) acquire() bool {
	select {
	case w.sem <- struct{}{}:
		return true
	case <-w.ctx.Done():
		return false
	}
}

func (w *walkState) release() { <-w.sem }

func (w *walkState) add(e Entry) {
	w.mu.Lock()
	w.entries = append(w.entries, e)
	w.mu.Unlock()
}

func (w *walkState) readDir(dir string) {
	defer w.wg.Done()
	if !w.acquire() {
		return
	}
	list, err := w.m.fs.ReadDir(w.ctx, dir)
	w.release()
	if err != nil {
		if dir == w.m.root {
			w.rootErr = err
			return
		}
		w.m.logger.Warn("cannot read directory", logfields.Path(dir), logfields.Stage("walk"), logfields.Error(err))
		return
	}
	for _, de := range list {
		w.wg.Add(1)
		go w.stat(filepath.Join(dir, de.Name()))
	}
}

func (w *walkState) stat(path string) {
	defer w.wg.Done()
	if !w.acquire() {
		return
	}
	info, err := w.m.fs.Lstat(w.ctx, path)
	link := err == nil && info.Mode()&fs.ModeSymlink != 0
	if link {
		info, err = w.m.fs.Stat(w.ctx, path)
	}
	w.release()
	if err != nil {
		w.m.logger.Warn("cannot stat entry", logfields.Path(path), logfields.Stage("walk"), logfields.Error(err))
		return
	}
	// Symlinked directories are not followed.
	if link && info.IsDir() {
		w.m.logger.Debug("skipping symlinked directory", logfields.Path(path), logfields.Stage("walk"))
		return
	}

	rel, _ := w.m.rel(path)
	excluded := w.m.excluder.Excluded(rel)
	if info.IsDir() {
		if !excluded {
			w.add(Entry{Path: path, Rel: rel, Kind: Kind{Class: ClassDirectory}})
		}
		if w.m.excluder.Prune(rel) {
			return
		}
		w.wg.Add(1)
		go w.readDir(path)
		return
	}
	if excluded {
		return
	}
	w.add(Entry{Path: path, Rel: rel, Kind: Classify(w.m.dirs, rel, false)})
}
