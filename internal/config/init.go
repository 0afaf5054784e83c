package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Example returns the configuration written into newly generated sites.
func Example() *Config {
	return &Config{
		URL:       "http://example.com",
		Title:     "Example",
		Permalink: DefaultPermalink,
		PerPage:   10,
		Exclude:   []string{`\.swp$`},
		AutoGenerate: []AutoTarget{
			{Feed: "feed.xml", RSS: "feed.rss"},
		},
	}
}

// Init writes the example configuration to configPath as YAML.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}
	header := []byte("# popsite configuration\n")
	if err := os.WriteFile(configPath, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
