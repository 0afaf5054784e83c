package plugin

import (
	"html/template"
	"log/slog"
	"maps"
	"strconv"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/paginator"
)

// RenderContext is everything a helper or filter may read while one file is
// rendered. It is also the data handed to templates, so its exported fields
// are addressable as {{ .Site.Title }}, {{ .Post.Title }} and so on.
type RenderContext struct {
	Site *config.Config
	// Posts is a snapshot of the rendered posts, in completion order.
	Posts []*content.Post
	// Paginator is set when the page being rendered is paginated.
	Paginator *paginator.Paginator[*content.Post]
	// PageBase is the URL of the paginated file's directory, e.g. "/" or "/blog/".
	PageBase string
	// Page is the front matter of the file being rendered.
	Page map[string]any
	// Post is set while a post or its layout is rendered.
	Post *content.Post
	// Content is the rendered body handed to a layout.
	Content template.HTML
	// Output is the path being written, relative to the output directory.
	Output string

	includes map[string]template.HTML
	logger   *slog.Logger
}

// NewRenderContext builds a context over a frozen include cache.
func NewRenderContext(site *config.Config, posts []*content.Post, includes map[string]template.HTML, logger *slog.Logger) *RenderContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderContext{
		Site:     site,
		Posts:    posts,
		PageBase: "/",
		Page:     map[string]any{},
		includes: includes,
		logger:   logger,
	}
}

// Clone returns a shallow copy that can be specialised for one file.
func (rc *RenderContext) Clone() *RenderContext {
	c := *rc
	c.Page = maps.Clone(rc.Page)
	return &c
}

// Include returns the rendered include registered under name.
func (rc *RenderContext) Include(name string) (template.HTML, bool) {
	html, ok := rc.includes[name]
	return html, ok
}

// Logger returns the logger for the current build.
func (rc *RenderContext) Logger() *slog.Logger { return rc.logger }

// PageURL returns the URL of page n of the current paginated file.
func (rc *RenderContext) PageURL(n int) string {
	base := rc.PageBase
	if base == "" {
		base = "/"
	}
	if n <= 1 {
		return base
	}
	return base + "page" + strconv.Itoa(n) + "/"
}
