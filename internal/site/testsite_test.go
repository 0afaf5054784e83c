package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/popsite/internal/config"
)

// fixture is a throwaway site on disk.
type fixture struct {
	t    *testing.T
	root string
	cfg  *config.Config
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{t: t, root: root}
	for name, body := range files {
		f.write(name, body)
	}
	f.cfg = config.Default(root)
	f.cfg.URL = "http://example.com"
	f.cfg.Title = "Example"
	f.cfg.AutoGenerate = []config.AutoTarget{{Feed: "feed.xml"}}
	return f
}

func (f *fixture) write(name, body string) string {
	f.t.Helper()
	p := filepath.Join(f.root, filepath.FromSlash(name))
	require.NoError(f.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(f.t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func (f *fixture) output(name string) string {
	f.t.Helper()
	data, err := os.ReadFile(filepath.Join(f.cfg.OutputDir(), filepath.FromSlash(name)))
	require.NoError(f.t, err, "output %s", name)
	return string(data)
}

func (f *fixture) exists(name string) bool {
	_, err := os.Stat(filepath.Join(f.cfg.OutputDir(), filepath.FromSlash(name)))
	return err == nil
}

func (f *fixture) builder(opts ...Option) *Builder {
	f.t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	b, err := New(f.cfg, opts...)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) build(opts ...Option) (*Builder, *Report) {
	f.t.Helper()
	b := f.builder(opts...)
	report, err := b.BuildAll(context.Background())
	require.NoError(f.t, err)
	return b, report
}

// blogFiles is a small complete site.
func blogFiles() map[string]string {
	return map[string]string{
		"_layouts/post.tmpl":                `<html><title>{{ .Post.Title }}</title>{{ include "nav" }}<article>{{ .Content }}</article><time>{{ ds .Post.Date }}</time></html>`,
		"_includes/nav.tmpl":                `<nav>{{ .Site.Title }}</nav>`,
		"_posts/2011-11-01-awesome-post.md": "---\ntitle: Awesome\nlayout: post\ntags: [go]\n---\nHello *world*\n",
		"_posts/2011-11-02-second.md":       "---\nlayout: post\n---\nSecond post\n",
		"index.tmpl":                        "---\npaginate: true\n---\n{{ range .Paginator.Items }}<a href=\"{{ .URL }}\">{{ .Title }}</a>{{ end }}{{ paginate }}",
		"stylesheets/screen.tcss":           "body { font-family: {{ .Site.Title }}; }\n",
		"robots.txt":                        "User-agent: *\n",
		"_private.txt":                      "secret\n",
	}
}
