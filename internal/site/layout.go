package site

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/markup"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

// maxLayoutDepth bounds how many layouts may wrap one another.
const maxLayoutDepth = 8

type layout struct {
	entry  filemap.Entry
	meta   frontmatter.Meta
	body   string
	engine markup.Engine
}

// loadLayout reads a layout by name, once per build. A layout that cannot be
// found or read is fatal.
func (b *Builder) loadLayout(ctx context.Context, bs *buildState, name string, stage StageName) (*layout, error) {
	bs.layoutMu.Lock()
	l, ok := bs.layouts[name]
	bs.layoutMu.Unlock()
	if ok {
		return l, nil
	}

	candidates := []string{name}
	if filemap.FormatOf(name) == filemap.FormatOther {
		candidates = candidates[:0]
		for _, ext := range filemap.TemplateExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	var found string
	for _, c := range candidates {
		p := filepath.Join(b.cfg.LayoutsDir(), filepath.FromSlash(c))
		exists, err := b.fs.Exists(ctx, p)
		if err != nil {
			return nil, ioError(err, "cannot read layout", stage, p)
		}
		if exists {
			found = p
			break
		}
	}
	if found == "" {
		return nil, ioError(fmt.Errorf("%w: %s", ErrLayoutNotFound, name), "cannot read layout", stage, b.cfg.LayoutsDir())
	}

	data, err := b.fs.ReadFile(ctx, found)
	if err != nil {
		return nil, ioError(err, "cannot read layout", stage, found)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryParse, "cannot parse layout front matter").
			Fatal().WithPath(found).WithPhase(string(stage)).Build()
	}
	entry, _, err := b.files.Resolve(found, false)
	if err != nil {
		return nil, ioError(err, "layout outside site root", stage, found)
	}
	// Layouts wrap content, so they always run as templates whatever their extension.
	engine := b.engines.ForTemplate(entry.Rel, entry.Kind.Format)

	l = &layout{entry: entry, meta: meta, body: string(body), engine: engine}
	bs.layoutMu.Lock()
	bs.layouts[name] = l
	bs.layoutMu.Unlock()
	return l, nil
}

// applyLayout wraps body in the named layout, then in that layout's own
// layout, and so on. An empty name returns body unchanged.
func (b *Builder) applyLayout(ctx context.Context, bs *buildState, rc *plugin.RenderContext, name, body string, stage StageName) (string, error) {
	seen := map[string]bool{}
	for name != "" {
		if seen[name] || len(seen) >= maxLayoutDepth {
			return "", foundationerrors.WrapError(fmt.Errorf("%w at %s", ErrLayoutCycle, name), foundationerrors.CategoryRender, "cannot apply layout").
				Fatal().WithPhase(string(stage)).WithContext("layout", name).Build()
		}
		seen[name] = true

		l, err := b.loadLayout(ctx, bs, name, stage)
		if err != nil {
			return "", err
		}
		lrc := rc.Clone()
		lrc.Content = template.HTML(body)
		out, err := l.engine.Render(l.entry.Rel, l.body, lrc, b.registry.FuncMap(lrc))
		if err != nil {
			return "", foundationerrors.WrapError(err, foundationerrors.CategoryRender, "cannot render layout").
				WithPath(l.entry.Rel).WithPhase(string(stage)).WithContext("layout", name).Build()
		}
		body = out
		name = l.meta.Layout
	}
	return body, nil
}
