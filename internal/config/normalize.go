package config

import (
	"fmt"
	"strings"
)

// NormalizationResult carries non-fatal adjustments made while normalizing.
type NormalizationResult struct {
	Warnings []string
}

func (r *NormalizationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// NormalizeConfig case-folds enumerations, trims values and coerces out-of-range numbers.
func NormalizeConfig(cfg *Config) *NormalizationResult {
	res := &NormalizationResult{}

	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.Permalink = strings.TrimSpace(cfg.Permalink)
	cfg.Output = strings.TrimSpace(cfg.Output)

	if cfg.PerPage < 0 {
		res.warn("perPage %d is negative, using default", cfg.PerPage)
		cfg.PerPage = 0
	}
	if cfg.Concurrency < 0 {
		res.warn("concurrency %d is negative, using default", cfg.Concurrency)
		cfg.Concurrency = 0
	}

	if raw := string(cfg.Retry.Backoff); raw != "" {
		mode := NormalizeRetryBackoff(raw)
		if mode == "" {
			res.warn("unknown retry backoff %q, using linear", raw)
		}
		cfg.Retry.Backoff = mode
	}
	if raw := string(cfg.Logging.Level); raw != "" {
		cfg.Logging.Level = NormalizeLogLevel(raw)
	}
	if raw := string(cfg.Logging.Format); raw != "" {
		cfg.Logging.Format = NormalizeLogFormat(raw)
	}

	exclude := cfg.Exclude[:0]
	for _, p := range cfg.Exclude {
		if p = strings.TrimSpace(p); p != "" {
			exclude = append(exclude, p)
		}
	}
	cfg.Exclude = exclude

	targets := cfg.AutoGenerate[:0]
	for _, t := range cfg.AutoGenerate {
		t.Feed = strings.TrimLeft(strings.TrimSpace(t.Feed), "/")
		t.RSS = strings.TrimLeft(strings.TrimSpace(t.RSS), "/")
		if t.Feed == "" && t.RSS == "" {
			res.warn("autoGenerate entry without feed or rss ignored")
			continue
		}
		targets = append(targets, t)
	}
	cfg.AutoGenerate = targets

	return res
}
