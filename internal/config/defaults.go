package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultPerPage     = 20
	DefaultPort        = 4000
	DefaultOutput      = "_site"
	DefaultPermalink   = "/:year/:month/:day/:title"
	DefaultConcurrency = 64

	DefaultPostsDir    = "_posts"
	DefaultLayoutsDir  = "_layouts"
	DefaultIncludesDir = "_includes"

	DefaultHistoryPath     = ".popsite/history.db"
	DefaultHistoryKeep     = 100
	DefaultNotifySubject   = "popsite.builds"
	DefaultMetricsPath     = "/metrics"
	DefaultRetryInitial    = "1ms"
	DefaultRetryMax        = "250ms"
	DefaultRetryMaxRetries = 200

	defaultDebounce = 300 * time.Millisecond
)

// Default returns a configuration with every default applied, rooted at root.
func Default(root string) *Config {
	cfg := &Config{Root: root}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero values. It runs after normalization so canonical values drive defaults.
func applyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if abs, err := filepath.Abs(cfg.Root); err == nil {
		cfg.Root = abs
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Permalink == "" {
		cfg.Permalink = DefaultPermalink
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	if cfg.Dirs.Posts == "" {
		cfg.Dirs.Posts = DefaultPostsDir
	}
	if cfg.Dirs.Layouts == "" {
		cfg.Dirs.Layouts = DefaultLayoutsDir
	}
	if cfg.Dirs.Includes == "" {
		cfg.Dirs.Includes = DefaultIncludesDir
	}

	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffLinear
	}
	if cfg.Retry.Initial == "" {
		cfg.Retry.Initial = DefaultRetryInitial
	}
	if cfg.Retry.Max == "" {
		cfg.Retry.Max = DefaultRetryMax
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry.MaxRetries = DefaultRetryMaxRetries
	}

	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = defaultDebounce.String()
	}
	if cfg.Watch.RateLimit > 0 && cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}

	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.Keep <= 0 {
		cfg.History.Keep = DefaultHistoryKeep
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
