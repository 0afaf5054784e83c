package scaffold

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/frontmatter"
	"git.home.luguber.info/inful/popsite/internal/site"
)

var fixedNow = func() time.Time { return time.Date(2011, 11, 1, 9, 30, 0, 0, time.UTC) }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestNewSite_BuildsCleanly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blog")
	require.NoError(t, NewSite(dir, SiteOptions{Now: fixedNow}, quiet()))

	for _, name := range []string{ConfigFile, "index.tmpl", "tags.tmpl", "robots.txt", "_layouts/default.tmpl", "_layouts/post.tmpl", "_includes/header.tmpl", "stylesheets/screen.tcss", "javascripts/site.js"} {
		require.FileExists(t, filepath.Join(dir, filepath.FromSlash(name)))
	}
	post := filepath.Join(dir, "_posts", "2011-11-01-example-post-about-something.md")
	require.FileExists(t, post)

	cfg, err := config.Load(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	b, err := site.New(cfg, site.WithLogger(quiet()))
	require.NoError(t, err)
	report, err := b.BuildAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, site.OutcomeSuccess, report.Outcome, report.Warnings)

	out := cfg.OutputDir()
	for _, name := range []string{"index.html", "tags.html", "robots.txt", "feed.xml", "feed.rss", "stylesheets/screen.css", "javascripts/site.js", "2011/11/01/example-post-about-something/index.html"} {
		require.FileExists(t, filepath.Join(out, filepath.FromSlash(name)))
	}
	page, err := os.ReadFile(filepath.Join(out, "2011", "11", "01", "example-post-about-something", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<title>Example Post About Something | Example</title>")
	require.Contains(t, string(page), `<a href="/tags.html#tag1">tag1</a>`)
}

func TestNewSite_RefusesNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o600))

	require.ErrorIs(t, NewSite(dir, SiteOptions{}, quiet()), ErrExists)
	require.NoError(t, NewSite(dir, SiteOptions{Force: true, Now: fixedNow}, quiet()))
}

func TestNewSite_Git(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blog")
	require.NoError(t, NewSite(dir, SiteOptions{Git: true, Now: fixedNow}, quiet()))

	_, err := git.PlainOpen(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	require.Contains(t, string(data), "_site/")
}

func TestNewPost(t *testing.T) {
	cfg := config.Default(t.TempDir())
	t.Setenv("LOGNAME", "alex")

	p, err := NewPost(cfg, PostOptions{Title: "Hello World", Date: fixedNow()})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(cfg.PostsDir(), "2011-11-01-hello-world.md"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	meta, body, err := frontmatter.Parse(data)
	require.NoError(t, err)
	require.Equal(t, "post", meta.Layout)
	require.Equal(t, "Hello World", meta.Title)
	require.Equal(t, "alex", meta.Author)
	require.Equal(t, []string{"tag_1", "tag_2"}, meta.Tags)
	require.Empty(t, body)

	_, err = NewPost(cfg, PostOptions{Title: "Hello World", Date: fixedNow()})
	require.ErrorIs(t, err, ErrExists)

	_, err = NewPost(cfg, PostOptions{Title: "  "})
	require.Error(t, err)
}
