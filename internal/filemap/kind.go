package filemap

import (
	"path"
	"strings"
)

// Class is the role a source entry plays in a build.
type Class int

const (
	ClassStatic Class = iota
	ClassDirectory
	ClassPost
	ClassLayout
	ClassInclude
	ClassTemplated
)

func (c Class) String() string {
	switch c {
	case ClassDirectory:
		return "directory"
	case ClassPost:
		return "post"
	case ClassLayout:
		return "layout"
	case ClassInclude:
		return "include"
	case ClassTemplated:
		return "templated"
	default:
		return "static"
	}
}

// Format identifies how an entry's content is rendered.
type Format int

const (
	FormatNone Format = iota
	FormatTemplate
	FormatStylesheet
	FormatMarkdown
	FormatHTML
	FormatOther
)

func (f Format) String() string {
	switch f {
	case FormatTemplate:
		return "template"
	case FormatStylesheet:
		return "stylesheet"
	case FormatMarkdown:
		return "markdown"
	case FormatHTML:
		return "html"
	case FormatOther:
		return "other"
	default:
		return "none"
	}
}

// Templated reports whether the format is rendered by a template engine.
func (f Format) Templated() bool {
	return f == FormatTemplate || f == FormatStylesheet
}

var formatsByExt = map[string]Format{
	".tmpl":     FormatTemplate,
	".gohtml":   FormatTemplate,
	".tcss":     FormatStylesheet,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".html":     FormatHTML,
	".htm":      FormatHTML,
}

// TemplateExtensions lists extensions rendered as templates, in lookup order.
var TemplateExtensions = []string{".tmpl", ".gohtml"}

// FormatOf derives the format from a file name's extension.
func FormatOf(name string) Format {
	if f, ok := formatsByExt[strings.ToLower(path.Ext(name))]; ok {
		return f
	}
	return FormatOther
}

// Kind is the classification of an entry.
type Kind struct {
	Class  Class
	Format Format
}

func (k Kind) String() string {
	if k.Format == FormatNone {
		return k.Class.String()
	}
	return k.Class.String() + "/" + k.Format.String()
}

// Entry is one classified filesystem entry discovered by a walk.
type Entry struct {
	// Path is the absolute path on disk.
	Path string
	// Rel is the slash-separated path relative to the site root.
	Rel  string
	Kind Kind
}
