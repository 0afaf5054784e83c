package markup

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Markdown renders CommonMark with GitHub extensions. Raw HTML is passed
// through so filters can emit markup.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates the Markdown engine.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render converts src to HTML.
func (m *Markdown) Render(name, src string, _ any, _ FuncMap) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown %s: %w", name, err)
	}
	return buf.String(), nil
}

// Passthrough returns its input unchanged.
type Passthrough struct{}

// Render returns src.
func (Passthrough) Render(_, src string, _ any, _ FuncMap) (string, error) { return src, nil }

// HTMLTemplate executes html/template sources.
type HTMLTemplate struct{}

// Render parses and executes src.
func (HTMLTemplate) Render(name, src string, data any, funcs FuncMap) (string, error) {
	tpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(funcs)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

// TextTemplate executes text/template sources.
type TextTemplate struct{}

// Render parses and executes src.
func (TextTemplate) Render(name, src string, data any, funcs FuncMap) (string, error) {
	tpl, err := template.New(name).Funcs(template.FuncMap(funcs)).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
