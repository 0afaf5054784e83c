package site

import (
	"context"
	"path"
	"strings"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	"git.home.luguber.info/inful/popsite/internal/logfields"
)

func (b *Builder) copyStatic(_ context.Context, bs *buildState) error {
	return runUnits(b, bs, StageCopyStatic, bs.static, entryID, b.copyFile)
}

// copyFile copies a static file byte for byte. Files whose name starts with
// an underscore are private and never copied.
func (b *Builder) copyFile(ctx context.Context, bs *buildState, e filemap.Entry) error {
	if strings.HasPrefix(path.Base(e.Rel), "_") {
		b.logger.Debug("private file not copied", logfields.Path(e.Rel))
		bs.report.skipped()
		return nil
	}
	dst := b.outputPath(e.Rel)
	if err := b.fs.CopyFile(ctx, e.Path, dst); err != nil {
		return ioError(err, "cannot copy static file", StageCopyStatic, dst)
	}
	bs.report.wrote(KindStatic)
	return nil
}
