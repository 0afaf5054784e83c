package site

import (
	"context"
	"fmt"
	"path"

	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/markup"
	"git.home.luguber.info/inful/popsite/internal/paginator"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

func (b *Builder) renderFiles(_ context.Context, bs *buildState) error {
	return runUnits(b, bs, StageRenderFiles, bs.files, entryID, b.renderFile)
}

// renderFile renders a templated file. With `paginate: true` in its front
// matter it is rendered once per page: page 1 at its own output name and
// page N under pageN/ next to it, until a page comes up empty.
func (b *Builder) renderFile(ctx context.Context, bs *buildState, e filemap.Entry) error {
	const stage = StageRenderFiles

	data, err := b.fs.ReadFile(ctx, e.Path)
	if err != nil {
		return unitError(err, foundationerrors.CategoryFileSystem, "cannot read file", stage, e.Rel)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return unitError(err, foundationerrors.CategoryParse, "cannot parse front matter", stage, e.Rel)
	}

	outRel := markup.OutputName(e.Rel, e.Kind.Format)
	dir, base := path.Split(outRel)
	engine := b.engines.ForTemplate(e.Rel, e.Kind.Format)

	rc := b.renderContext()
	rc.Page = meta.Map()
	rc.PageBase = "/" + dir
	rc.Paginator = paginator.New(b.cfg.PerPage, rc.Posts, content.DateOf)

	if err := b.renderPage(ctx, bs, rc, engine, e, meta, string(body), outRel); err != nil {
		return err
	}
	if !meta.Paginate {
		return nil
	}
	for {
		rc.Paginator.AdvancePage()
		if rc.Paginator.Exhausted() {
			return nil
		}
		pageRel := path.Join(dir, fmt.Sprintf("page%d", rc.Paginator.Page), base)
		b.logger.Debug("rendering page", logfields.Path(e.Rel), logfields.Page(rc.Paginator.Page))
		if err := b.renderPage(ctx, bs, rc.Clone(), engine, e, meta, string(body), pageRel); err != nil {
			return err
		}
	}
}

func (b *Builder) renderPage(ctx context.Context, bs *buildState, rc *plugin.RenderContext, engine markup.Engine, e filemap.Entry, meta frontmatter.Meta, body, outRel string) error {
	rc.Output = outRel
	out, err := engine.Render(e.Rel, body, rc, b.registry.FuncMap(rc))
	if err != nil {
		return unitError(err, foundationerrors.CategoryRender, "cannot render file", StageRenderFiles, e.Rel)
	}
	out, err = b.applyLayout(ctx, bs, rc, meta.Layout, out, StageRenderFiles)
	if err != nil {
		return err
	}
	return b.write(ctx, bs, StageRenderFiles, rc, outRel, KindPage, out)
}
