package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

// ErrNotFound is returned by Find when a directory holds no config file.
var ErrNotFound = errors.New("no site configuration found")

// FileNames lists the config file names Find looks for, in priority order.
var FileNames = []string{"_config.yaml", "_config.yml", "_config.toml", "_config.json"}

// Find returns the first config file present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s (is this a site?)", ErrNotFound, dir)
}

// Load reads, normalizes, defaults and validates a configuration file.
// The format is chosen by extension. .env files next to the config are loaded
// first and ${VAR} references in the file are expanded.
func Load(configPath string) (*Config, error) {
	dir := filepath.Dir(configPath)
	loadEnvFiles(dir)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, foundationerrors.ConfigError("configuration file not found").
				WithPath(configPath).Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
			Fatal().WithPath(configPath).Build()
	}

	cfg, err := Parse(filepath.Ext(configPath), []byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to parse config file").
			Fatal().WithPath(configPath).Build()
	}
	if cfg.Root == "" {
		cfg.Root = dir
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(dir, cfg.Root)
	}

	if err := Finalize(cfg); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "configuration validation failed").
			Fatal().WithPath(configPath).Build()
	}
	return cfg, nil
}

// Parse decodes raw configuration bytes. ext selects the decoder (".yaml", ".yml", ".toml", ".json").
func Parse(ext string, data []byte) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	return &cfg, nil
}

// Finalize runs normalization, defaults and validation on a decoded config.
func Finalize(cfg *Config) error {
	res := NormalizeConfig(cfg)
	for _, w := range res.Warnings {
		slog.Warn("config normalization", slog.String("warning", w))
	}
	applyDefaults(cfg)
	return ValidateConfig(cfg)
}

// loadEnvFiles loads .env then .env.local from dir. Existing variables are never overwritten.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("failed to load env file", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		slog.Debug("loaded environment file", slog.String("path", p))
	}
}
