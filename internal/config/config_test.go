package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoad_JSONAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "_config.json", `{"permalink":"/:year/:month/:day/:title","url":"http://example.com/","exclude":["run\\.js","\\.swp"]}`)

	cfg, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, "http://example.com", cfg.URL)
	require.Equal(t, DefaultPerPage, cfg.PerPage)
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, DefaultOutput, cfg.Output)
	require.Equal(t, []string{`run\.js`, `\.swp`}, cfg.Exclude)
	require.Equal(t, dir, cfg.Root)
	require.Equal(t, filepath.Join(dir, "_site"), cfg.OutputDir())
	require.Equal(t, filepath.Join(dir, "_posts"), cfg.PostsDir())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "_config.yaml", `
url: https://blog.example.org
title: Blog
perPage: 5
autoGenerate:
  - feed: /feed.xml
    rss: feed.rss
require: [archive]
logging:
  level: DEBUG
  format: Json
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 5, cfg.PerPage)
	require.Equal(t, []AutoTarget{{Feed: "feed.xml", RSS: "feed.rss"}}, cfg.AutoGenerate)
	require.Equal(t, []string{"archive"}, cfg.Require)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, LogFormatJSON, cfg.Logging.Format)
	require.Equal(t, DefaultPermalink, cfg.Permalink)
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "_config.toml", `
title = "Toml Site"
permalink = "/:title"
perPage = 3

[[autoGenerate]]
feed = "atom.xml"

[dirs]
posts = "posts"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "Toml Site", cfg.Title)
	require.Equal(t, "/:title", cfg.Permalink)
	require.Equal(t, "posts", cfg.Dirs.Posts)
	require.Equal(t, DefaultLayoutsDir, cfg.Dirs.Layouts)
	require.Len(t, cfg.AutoGenerate, 1)
}

func TestLoad_ExpandsEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "POPSITE_TEST_SITE_TITLE=From Env\n")
	p := writeFile(t, dir, "_config.yaml", "title: ${POPSITE_TEST_SITE_TITLE}\n")
	t.Cleanup(func() { _ = os.Unsetenv("POPSITE_TEST_SITE_TITLE") })

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "From Env", cfg.Title)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "_config.yaml"))
	require.Error(t, err)
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))

	bad := writeFile(t, dir, "_config.json", `{"permalink":"/:year/:month"}`)
	_, err = Load(bad)
	require.ErrorContains(t, err, ":title")

	unknown := writeFile(t, dir, "_config.yml", "nonsense: true\n")
	_, err = Load(unknown)
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"bad exclude regexp", func(c *Config) { c.Exclude = []string{"("} }, "invalid exclude pattern"},
		{"relative url", func(c *Config) { c.URL = "example.com" }, "must be absolute"},
		{"nested dir name", func(c *Config) { c.Dirs.Posts = "a/b" }, "single directory name"},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, "watch.debounce"},
		{"short full rebuild", func(c *Config) { c.Watch.FullRebuild = "10ms" }, "at least 1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestNormalizeConfig_Warnings(t *testing.T) {
	cfg := &Config{
		PerPage:      -1,
		Retry:        RetryConfig{Backoff: "sideways"},
		AutoGenerate: []AutoTarget{{}, {Feed: "feed.xml"}},
		Exclude:      []string{" ", `\.tmp`},
	}
	res := NormalizeConfig(cfg)
	require.Len(t, res.Warnings, 3)
	require.Equal(t, 0, cfg.PerPage)
	require.Equal(t, []string{`\.tmp`}, cfg.Exclude)
	require.Len(t, cfg.AutoGenerate, 1)
}

func TestFindAndInit(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	require.ErrorIs(t, err, ErrNotFound)

	p := filepath.Join(dir, "_config.yaml")
	require.NoError(t, Init(p, false))
	require.Error(t, Init(p, false))

	found, err := Find(dir)
	require.NoError(t, err)
	require.Equal(t, p, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	require.Equal(t, "http://example.com", cfg.URL)
	require.Equal(t, 10, cfg.PerPage)
	require.Equal(t, []AutoTarget{{Feed: "feed.xml", RSS: "feed.rss"}}, cfg.AutoGenerate)
}

func TestDebounceDuration(t *testing.T) {
	cfg := Default(t.TempDir())
	require.Equal(t, defaultDebounce, cfg.DebounceDuration())
	cfg.Watch.Debounce = "1s"
	require.Equal(t, "1s", cfg.DebounceDuration().String())
	cfg.Watch.Debounce = "bogus"
	require.Equal(t, defaultDebounce, cfg.DebounceDuration())
}
