package site

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/metrics"
)

// Rebuild re-renders the single file at path after a change. Posts are
// upserted into the collection, so other pages keep seeing the rest.
//
// Changes to layouts, includes or directories cannot be applied to one file
// and return ErrFullRebuildRequired. A path that no longer exists drops its
// post record, if it had one.
func (b *Builder) Rebuild(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	info, statErr := b.fs.Stat(ctx, path)
	isDir := statErr == nil && info.IsDir()

	entry, excluded, err := b.files.Resolve(path, isDir)
	if err != nil {
		return err
	}
	if excluded {
		b.logger.Debug("change ignored", logfields.Path(entry.Rel))
		return nil
	}
	kind := entry.Kind.Class.String()

	if statErr != nil {
		if !errors.Is(statErr, fs.ErrNotExist) {
			return ioError(statErr, "cannot stat changed file", StageRebuild, path)
		}
		if entry.Kind.Class == filemap.ClassPost && b.posts.Remove(entry.Path) {
			b.logger.Info("post removed", logfields.Path(entry.Rel))
		}
		return nil
	}

	var unit func(context.Context, *buildState, filemap.Entry) error
	switch entry.Kind.Class {
	case filemap.ClassPost:
		unit = b.renderPost
	case filemap.ClassTemplated:
		unit = b.renderFile
	case filemap.ClassStatic:
		unit = b.copyFile
	default:
		b.logger.Info("change requires a full rebuild", logfields.Path(entry.Rel), logfields.Kind(kind))
		b.recorder.IncRebuild(kind, metrics.ResultSkipped)
		return ErrFullRebuildRequired
	}

	bs := b.newBuildState(ctx, uuid.NewString())
	bs.rebuild = true
	defer bs.cancel(nil)

	err = b.ensureIncludes(bs.ctx, bs)
	if err == nil {
		err = unit(bs.ctx, bs, entry)
	}
	if err != nil {
		b.recorder.IncRebuild(kind, metrics.ResultFatal)
		b.logger.Error("rebuild failed", logfields.Path(entry.Rel), logfields.Stage(string(StageRebuild)), logfields.Error(err))
		return err
	}

	result := metrics.ResultSuccess
	if bs.report.warningCount() > 0 {
		result = metrics.ResultWarning
	}
	b.recorder.IncRebuild(kind, result)
	b.logger.Info("rebuilt", logfields.Path(entry.Rel), logfields.Kind(kind), logfields.Since(start))
	return nil
}
