package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/popsite/internal/filemap"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		in   string
		f    filemap.Format
		want string
	}{
		{"index.tmpl", filemap.FormatTemplate, "index.html"},
		{"blog/archive.gohtml", filemap.FormatTemplate, "blog/archive.html"},
		{"feed.xml.tmpl", filemap.FormatTemplate, "feed.xml"},
		{"v1.2/index.tmpl", filemap.FormatTemplate, "v1.2/index.html"},
		{"stylesheets/screen.tcss", filemap.FormatStylesheet, "stylesheets/screen.css"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, OutputName(tt.in, tt.f), tt.in)
	}
}

func TestMarkdown(t *testing.T) {
	out, err := NewMarkdown().Render("post.md", "# Hello\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<pre class=\"prettyprint lang-js\">\nvar a = 1;\n</pre>\n", nil, nil)
	require.NoError(t, err)
	require.Contains(t, out, `<h1 id="hello">Hello</h1>`)
	require.Contains(t, out, "<table>")
	require.Contains(t, out, `<pre class="prettyprint lang-js">`)
}

func TestEngineSelection(t *testing.T) {
	r := NewRegistry()

	e, err := r.ForPost(filemap.FormatMarkdown)
	require.NoError(t, err)
	require.IsType(t, &Markdown{}, e)
	e, err = r.ForPost(filemap.FormatHTML)
	require.NoError(t, err)
	require.IsType(t, Passthrough{}, e)
	_, err = r.ForPost(filemap.FormatOther)
	require.Error(t, err)

	require.IsType(t, HTMLTemplate{}, r.ForTemplate("index.tmpl", filemap.FormatTemplate))
	require.IsType(t, TextTemplate{}, r.ForTemplate("feed.xml.tmpl", filemap.FormatTemplate))
	require.IsType(t, TextTemplate{}, r.ForTemplate("screen.tcss", filemap.FormatStylesheet))
}

func TestTemplates(t *testing.T) {
	funcs := FuncMap{"shout": func(s string) string { return strings.ToUpper(s) }}
	data := map[string]any{"Title": "<b>x</b>"}

	out, err := HTMLTemplate{}.Render("page", `<h1>{{ .Title }}</h1>{{ shout "hi" }}`, data, funcs)
	require.NoError(t, err)
	require.Equal(t, "<h1>&lt;b&gt;x&lt;/b&gt;</h1>HI", out)

	out, err = TextTemplate{}.Render("feed", `<title>{{ .Title }}</title>`, data, funcs)
	require.NoError(t, err)
	require.Equal(t, "<title><b>x</b></title>", out)

	_, err = TextTemplate{}.Render("broken", `{{ .Title `, data, nil)
	require.ErrorContains(t, err, "parse template broken")

	out, err = Passthrough{}.Render("x.html", "<p>as is</p>", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "<p>as is</p>", out)
}
