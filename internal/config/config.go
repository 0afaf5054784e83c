package config

import (
	"path/filepath"
	"time"
)

// Config is the site configuration handed to the build pipeline.
// The pipeline treats it as read-only once loaded.
type Config struct {
	// Root is the site source directory. Defaults to the config file's directory.
	Root string `yaml:"root,omitempty" toml:"root,omitempty" json:"root,omitempty"`
	// Output is the generated site directory, relative to Root unless absolute.
	Output string `yaml:"output" toml:"output" json:"output"`

	URL       string `yaml:"url" toml:"url" json:"url"`
	Title     string `yaml:"title" toml:"title" json:"title"`
	Permalink string `yaml:"permalink" toml:"permalink" json:"permalink"`
	PerPage   int    `yaml:"perPage" toml:"perPage" json:"perPage"`
	Port      int    `yaml:"port" toml:"port" json:"port"`

	// Exclude holds regular expressions matched against root-relative slash paths.
	Exclude         []string     `yaml:"exclude" toml:"exclude" json:"exclude"`
	IncludeDotFiles bool         `yaml:"includeDotFiles,omitempty" toml:"includeDotFiles,omitempty" json:"includeDotFiles,omitempty"`
	AutoGenerate    []AutoTarget `yaml:"autoGenerate" toml:"autoGenerate" json:"autoGenerate"`

	// Require lists plugins, applied in order. Later plugins override earlier ones.
	Require []string                  `yaml:"require,omitempty" toml:"require,omitempty" json:"require,omitempty"`
	Plugins map[string]map[string]any `yaml:"plugins,omitempty" toml:"plugins,omitempty" json:"plugins,omitempty"`

	Dirs        DirsConfig    `yaml:"dirs,omitempty" toml:"dirs,omitempty" json:"dirs,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty" toml:"concurrency,omitempty" json:"concurrency,omitempty"`
	Retry       RetryConfig   `yaml:"retry,omitempty" toml:"retry,omitempty" json:"retry,omitempty"`
	Watch       WatchConfig   `yaml:"watch,omitempty" toml:"watch,omitempty" json:"watch,omitempty"`
	History     HistoryConfig `yaml:"history,omitempty" toml:"history,omitempty" json:"history,omitempty"`
	Notify      NotifyConfig  `yaml:"notify,omitempty" toml:"notify,omitempty" json:"notify,omitempty"`
	Metrics     MetricsConfig `yaml:"metrics,omitempty" toml:"metrics,omitempty" json:"metrics,omitempty"`
	Logging     LoggingConfig `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty"`
}

// AutoTarget describes a generated artifact derived from the post collection.
// Feed names an Atom document, RSS an RSS 2.0 document. Either or both may be set.
type AutoTarget struct {
	Feed string `yaml:"feed,omitempty" toml:"feed,omitempty" json:"feed,omitempty"`
	RSS  string `yaml:"rss,omitempty" toml:"rss,omitempty" json:"rss,omitempty"`
}

// DirsConfig names the directories that mark posts, layouts and includes.
type DirsConfig struct {
	Posts    string `yaml:"posts,omitempty" toml:"posts,omitempty" json:"posts,omitempty"`
	Layouts  string `yaml:"layouts,omitempty" toml:"layouts,omitempty" json:"layouts,omitempty"`
	Includes string `yaml:"includes,omitempty" toml:"includes,omitempty" json:"includes,omitempty"`
}

// RetryConfig tunes the backoff applied when the process runs out of file descriptors.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff,omitempty" toml:"backoff,omitempty" json:"backoff,omitempty"`
	Initial    string           `yaml:"initial,omitempty" toml:"initial,omitempty" json:"initial,omitempty"`
	Max        string           `yaml:"max,omitempty" toml:"max,omitempty" json:"max,omitempty"`
	MaxRetries int              `yaml:"maxRetries,omitempty" toml:"maxRetries,omitempty" json:"maxRetries,omitempty"`
}

// WatchConfig controls the long-running watch loop.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty" toml:"debounce,omitempty" json:"debounce,omitempty"`
	// FullRebuild is a gocron duration ("30m") for periodic full rebuilds. Empty disables it.
	FullRebuild string `yaml:"fullRebuild,omitempty" toml:"fullRebuild,omitempty" json:"fullRebuild,omitempty"`
	// RateLimit caps incremental rebuilds per second. Zero means unlimited.
	RateLimit float64 `yaml:"rateLimit,omitempty" toml:"rateLimit,omitempty" json:"rateLimit,omitempty"`
	Burst     int     `yaml:"burst,omitempty" toml:"burst,omitempty" json:"burst,omitempty"`
}

// HistoryConfig enables the SQLite build history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	Keep    int    `yaml:"keep,omitempty" toml:"keep,omitempty" json:"keep,omitempty"`
}

// NotifyConfig enables publishing build events to NATS.
type NotifyConfig struct {
	URL     string `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	Subject string `yaml:"subject,omitempty" toml:"subject,omitempty" json:"subject,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint exposed by serve.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Path    string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
}

// LoggingConfig selects the log level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty" toml:"level,omitempty" json:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty" toml:"format,omitempty" json:"format,omitempty"`
}

// OutputDir returns the absolute-or-root-relative output directory.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output) {
		return filepath.Clean(c.Output)
	}
	return filepath.Join(c.Root, c.Output)
}

// PostsDir returns the directory holding posts.
func (c *Config) PostsDir() string { return filepath.Join(c.Root, c.Dirs.Posts) }

// LayoutsDir returns the directory holding layouts.
func (c *Config) LayoutsDir() string { return filepath.Join(c.Root, c.Dirs.Layouts) }

// IncludesDir returns the directory holding includes.
func (c *Config) IncludesDir() string { return filepath.Join(c.Root, c.Dirs.Includes) }

// HistoryPath resolves the history database relative to Root.
func (c *Config) HistoryPath() string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(c.Root, c.History.Path)
}

// DebounceDuration returns the watch debounce window.
func (c *Config) DebounceDuration() time.Duration {
	return parseDurationOr(c.Watch.Debounce, defaultDebounce)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
