package site

import (
	"context"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

// outputPath maps a slash-separated output name into the output directory.
func (b *Builder) outputPath(rel string) string {
	return filepath.Join(b.cfg.OutputDir(), filepath.FromSlash(rel))
}

// write runs the post-filters over text and writes it under rel. Empty output
// is skipped; a failed write is fatal.
func (b *Builder) write(ctx context.Context, bs *buildState, stage StageName, rc *plugin.RenderContext, rel, kind, text string) error {
	if strings.TrimSpace(text) == "" {
		b.logger.Warn("no content, skipping write", logfields.Output(rel), logfields.Stage(string(stage)))
		bs.report.skipped()
		return nil
	}
	rc.Output = rel
	out, err := b.registry.ApplyPostFilters(rc, text)
	if err != nil {
		return unitError(err, foundationerrors.CategoryRender, "post-filter failed", stage, rel)
	}
	dst := b.outputPath(rel)
	if err := b.fs.WriteFile(ctx, dst, []byte(out)); err != nil {
		return ioError(err, "cannot write output", stage, dst)
	}
	bs.report.wrote(kind)
	b.logger.Debug("wrote output", logfields.Output(rel), logfields.Kind(kind))
	return nil
}
