package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ValidateConfig checks invariants that normalization and defaults cannot repair.
func ValidateConfig(cfg *Config) error {
	if cfg.PerPage <= 0 {
		return fmt.Errorf("perPage must be positive, got %d", cfg.PerPage)
	}
	if !strings.Contains(cfg.Permalink, ":title") {
		return fmt.Errorf("permalink %q must contain the :title token", cfg.Permalink)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port %d out of range", cfg.Port)
	}
	for _, p := range cfg.Exclude {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}
	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("url %q must be absolute", cfg.URL)
		}
	}
	for name, dir := range map[string]string{"posts": cfg.Dirs.Posts, "layouts": cfg.Dirs.Layouts, "includes": cfg.Dirs.Includes} {
		if strings.ContainsAny(dir, `/\`) {
			return fmt.Errorf("dirs.%s must be a single directory name, got %q", name, dir)
		}
	}
	if err := validateDurations(cfg); err != nil {
		return err
	}
	if cfg.Watch.FullRebuild != "" {
		d, err := time.ParseDuration(cfg.Watch.FullRebuild)
		if err != nil {
			return fmt.Errorf("watch.fullRebuild: %w", err)
		}
		if d < time.Second {
			return fmt.Errorf("watch.fullRebuild must be at least 1s, got %s", d)
		}
	}
	if cfg.Watch.RateLimit < 0 {
		return fmt.Errorf("watch.rateLimit must not be negative")
	}
	if cfg.Notify.URL != "" && cfg.Notify.Subject == "" {
		return fmt.Errorf("notify.subject is required when notify.url is set")
	}
	return nil
}

func validateDurations(cfg *Config) error {
	for name, raw := range map[string]string{
		"retry.initial":  cfg.Retry.Initial,
		"retry.max":      cfg.Retry.Max,
		"watch.debounce": cfg.Watch.Debounce,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
