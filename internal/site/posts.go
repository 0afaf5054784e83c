package site

import (
	"context"
	"html/template"
	"path"
	"strings"

	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/markup"
	"git.home.luguber.info/inful/popsite/internal/permalink"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

func (b *Builder) renderPosts(_ context.Context, bs *buildState) error {
	return runUnits(b, bs, StageRenderPosts, bs.posts, entryID, b.renderPost)
}

// renderPost parses one post, renders it through its layout, records it in
// the collection and writes it to <permalink>/index.html.
func (b *Builder) renderPost(ctx context.Context, bs *buildState, e filemap.Entry) error {
	const stage = StageRenderPosts

	data, err := b.fs.ReadFile(ctx, e.Path)
	if err != nil {
		return unitError(err, foundationerrors.CategoryFileSystem, "cannot read post", stage, e.Rel)
	}
	front, body, had, _, err := frontmatter.Split(data)
	if err != nil {
		return unitError(err, foundationerrors.CategoryParse, "cannot parse post front matter", stage, e.Rel)
	}
	fingerprint := frontmatter.Fingerprint(front, body)
	if bs.rebuild {
		if prev, ok := b.posts.Get(e.Path); ok && prev.Fingerprint == fingerprint {
			b.logger.Debug("post unchanged", logfields.Path(e.Rel))
			bs.report.skipped()
			return nil
		}
	}

	meta := frontmatter.Meta{Tags: []string{}, Extra: map[string]any{}}
	if had {
		fields, err := frontmatter.ParseYAML(front)
		if err != nil {
			return unitError(err, foundationerrors.CategoryParse, "cannot parse post front matter", stage, e.Rel)
		}
		if meta, err = frontmatter.Decode(fields); err != nil {
			return unitError(err, foundationerrors.CategoryParse, "invalid post front matter", stage, e.Rel)
		}
	}
	date, slug, err := permalink.ParseFileName(path.Base(e.Rel))
	if err != nil {
		return unitError(err, foundationerrors.CategoryParse, "cannot derive post date", stage, e.Rel)
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		b.logger.Warn("no content, skipping post", logfields.Path(e.Rel))
		bs.report.skipped()
		return nil
	}
	engine, err := b.engines.ForPost(e.Kind.Format)
	if err != nil {
		return unitError(err, foundationerrors.CategoryRender, "unsupported post format", stage, e.Rel)
	}

	link := permalink.Resolve(b.cfg.Permalink, date, slug)
	outRel := path.Join(link, "index.html")
	title := meta.Title
	if title == "" {
		title = slug
	}
	post := &content.Post{
		Source:      e.Path,
		Rel:         e.Rel,
		Meta:        meta,
		Title:       title,
		Layout:      meta.Layout,
		Author:      meta.Author,
		Tags:        meta.Tags,
		Date:        date,
		Path:        link,
		URL:         "/" + link + "/",
		OutputPath:  b.outputPath(outRel),
		Fingerprint: fingerprint,
	}

	rc := b.renderContext()
	rc.Post = post
	rc.Page = meta.Map()
	rc.Output = outRel

	html, err := b.renderBody(rc, engine, e.Rel, text)
	if err != nil {
		return unitError(err, foundationerrors.CategoryRender, "cannot render post", stage, e.Rel)
	}
	post.Content = template.HTML(html)
	if meta.Summary != "" {
		summary, err := b.renderBody(rc, engine, e.Rel+"#summary", meta.Summary)
		if err != nil {
			return unitError(err, foundationerrors.CategoryRender, "cannot render post summary", stage, e.Rel)
		}
		post.Summary = template.HTML(summary)
	}

	out, err := b.applyLayout(ctx, bs, rc, post.Layout, html, stage)
	if err != nil {
		return err
	}
	if bs.rebuild {
		b.posts.Upsert(post)
	} else {
		b.posts.Append(post)
	}
	return b.write(ctx, bs, stage, rc, outRel, KindPost, out)
}

// renderBody runs the filters over text and renders it with engine.
func (b *Builder) renderBody(rc *plugin.RenderContext, engine markup.Engine, name, text string) (string, error) {
	filtered, err := b.registry.ApplyFilters(rc, text)
	if err != nil {
		return "", err
	}
	return engine.Render(name, filtered, rc, b.registry.FuncMap(rc))
}
