// Package markup renders source text into output text. The build only knows
// "render this text"; which engine does it is decided here by file format.
package markup

import (
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/popsite/internal/filemap"
)

// FuncMap is the helper table handed to template engines.
type FuncMap = map[string]any

// Engine turns source text into output text. data and funcs are ignored by
// engines that do not execute templates.
type Engine interface {
	Render(name, src string, data any, funcs FuncMap) (string, error)
}

// Registry maps formats to engines.
type Registry struct {
	markdown Engine
	html     Engine
	page     Engine
	text     Engine
}

// NewRegistry returns the default engines.
func NewRegistry() *Registry {
	return &Registry{
		markdown: NewMarkdown(),
		html:     Passthrough{},
		page:     HTMLTemplate{},
		text:     TextTemplate{},
	}
}

// ForPost returns the engine for a post body.
func (r *Registry) ForPost(f filemap.Format) (Engine, error) {
	switch f {
	case filemap.FormatMarkdown:
		return r.markdown, nil
	case filemap.FormatHTML:
		return r.html, nil
	case filemap.FormatTemplate:
		return r.page, nil
	default:
		return nil, fmt.Errorf("no post engine for %s content", f)
	}
}

// ForTemplate returns the engine for a templated file, layout or include.
// HTML output is autoescaped; anything else (feeds, stylesheets, plain text)
// is rendered verbatim.
func (r *Registry) ForTemplate(name string, f filemap.Format) Engine {
	if f == filemap.FormatStylesheet {
		return r.text
	}
	switch path.Ext(OutputName(name, f)) {
	case ".html", ".htm":
		return r.page
	default:
		return r.text
	}
}

// OutputName maps a templated source name to the name it is written under.
// "index.tmpl" becomes "index.html", "feed.xml.tmpl" keeps its inner
// extension as "feed.xml" and "screen.tcss" becomes "screen.css".
func OutputName(name string, f filemap.Format) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if f == filemap.FormatStylesheet {
		return base + ".css"
	}
	if path.Ext(path.Base(base)) != "" {
		return base
	}
	return base + ".html"
}
