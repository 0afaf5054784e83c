package site

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/markup"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

// includeName is the key an include is cached under: its base name without extension.
func includeName(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// engineFor picks the engine for a layout or include source.
func (b *Builder) engineFor(e filemap.Entry) (markup.Engine, error) {
	if e.Kind.Format.Templated() {
		return b.engines.ForTemplate(e.Rel, e.Kind.Format), nil
	}
	return b.engines.ForPost(e.Kind.Format)
}

// cacheIncludes renders every include once with helpers bound and freezes
// the result for the rest of the build. Includes cannot include each other.
func (b *Builder) cacheIncludes(ctx context.Context, bs *buildState, entries []filemap.Entry) error {
	var includes []filemap.Entry
	for _, e := range entries {
		if e.Kind.Class == filemap.ClassInclude {
			includes = append(includes, e)
		}
	}

	cache := make(map[string]template.HTML, len(includes))
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(includes))
	for _, e := range includes {
		go func() {
			defer wg.Done()
			out, err := b.renderInclude(ctx, e)
			if err != nil {
				b.handle(bs, StageCacheIncludes, e.Rel, err)
				return
			}
			mu.Lock()
			cache[includeName(e.Rel)] = out
			mu.Unlock()
		}()
	}
	wg.Wait()

	b.includes = cache
	b.logger.Debug("includes cached", logfields.Count(len(cache)), logfields.BuildID(bs.id))
	if err := bs.err(); err != nil {
		return err
	}
	return context.Cause(bs.ctx)
}

func (b *Builder) renderInclude(ctx context.Context, e filemap.Entry) (template.HTML, error) {
	engine, err := b.engineFor(e)
	if err != nil {
		return "", unitError(err, foundationerrors.CategoryRender, "unsupported include format", StageCacheIncludes, e.Rel)
	}
	data, err := b.fs.ReadFile(ctx, e.Path)
	if err != nil {
		return "", unitError(err, foundationerrors.CategoryFileSystem, "cannot read include", StageCacheIncludes, e.Rel)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return "", unitError(err, foundationerrors.CategoryParse, "cannot parse include front matter", StageCacheIncludes, e.Rel)
	}

	rc := plugin.NewRenderContext(b.cfg, nil, nil, b.logger)
	rc.Page = meta.Map()
	out, err := engine.Render(e.Rel, string(body), rc, b.registry.FuncMap(rc))
	if err != nil {
		return "", unitError(err, foundationerrors.CategoryRender, "cannot render include", StageCacheIncludes, e.Rel)
	}
	return template.HTML(out), nil
}

// ensureIncludes fills the include cache for a rebuild that runs before any
// full build. Only the includes directory is read.
func (b *Builder) ensureIncludes(ctx context.Context, bs *buildState) error {
	if b.includes != nil {
		return nil
	}
	dir := b.cfg.IncludesDir()
	list, err := b.fs.ReadDir(ctx, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.includes = map[string]template.HTML{}
			return nil
		}
		return err
	}
	var entries []filemap.Entry
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		e, excluded, err := b.files.Resolve(filepath.Join(dir, de.Name()), false)
		if err != nil || excluded {
			continue
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, c filemap.Entry) int { return strings.Compare(a.Rel, c.Rel) })
	return b.cacheIncludes(ctx, bs, entries)
}
