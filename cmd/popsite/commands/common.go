package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/eventstore"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/metrics"
	"git.home.luguber.info/inful/popsite/internal/notify"
	"git.home.luguber.info/inful/popsite/internal/site"
)

// Global carries process-wide state handed to every command.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing messages. Logs go to stderr.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file (default: first _config.* found in --dir)"`
	Dir     string           `short:"C" name:"dir" default:"." help:"Site directory"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" default:"1" help:"Build the site into the output directory"`
	Watch   WatchCmd   `cmd:"" help:"Build, then rebuild on every change"`
	Serve   ServeCmd   `cmd:"" help:"Serve the output directory while watching for changes"`
	New     NewCmd     `cmd:"" help:"Generate a new site or post"`
	Render  RenderCmd  `cmd:"" help:"Render only the files whose path matches a pattern"`
	History HistoryCmd `cmd:"" help:"List recent builds from the build history"`
}

// AfterApply runs after flag parsing; the logger is replaced once the site config is known.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// ConfigPath resolves --config, falling back to a search of --dir.
func (c *CLI) ConfigPath() (string, error) {
	if c.Config != "" {
		return c.Config, nil
	}
	return config.Find(c.Dir)
}

// LoadConfig loads the site configuration and reconfigures logging from it.
func (c *CLI) LoadConfig(g *Global) (*config.Config, error) {
	p, err := c.ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(p)
	if err != nil {
		return nil, err
	}
	g.Logger = NewLogger(os.Stderr, cfg.Logging, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// NewLogger builds the slog handler selected by the logging config. verbose forces debug.
func NewLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch lc.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Session is a configured builder plus the collaborators it reports to.
type Session struct {
	Config   *config.Config
	Builder  *site.Builder
	Registry *prom.Registry
	logger   *slog.Logger
	closers  []io.Closer
}

// OpenSession creates a builder for cfg wired to metrics, build history and
// notifications as configured. A notification server that cannot be reached
// only disables notifications.
func OpenSession(g *Global, cfg *config.Config) (*Session, error) {
	s := &Session{Config: cfg, logger: g.Logger}
	opts := []site.Option{site.WithLogger(g.Logger)}

	if cfg.Metrics.Enabled {
		s.Registry = prom.NewRegistry()
		opts = append(opts, site.WithRecorder(metrics.NewPrometheusRecorder(s.Registry)))
	}
	if cfg.History.Enabled {
		store, err := eventstore.NewSQLiteStore(cfg.HistoryPath())
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store)
		opts = append(opts, site.WithObserver(eventstore.NewObserver(store, cfg.History.Keep, g.Logger)))
	}
	if cfg.Notify.URL != "" {
		n, err := notify.Connect(cfg, g.Logger)
		if err != nil {
			g.Logger.Warn("build notifications disabled", logfields.Error(err))
		} else {
			s.closers = append(s.closers, n)
			opts = append(opts, site.WithObserver(n))
		}
	}

	b, err := site.New(cfg, opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Builder = b
	return s, nil
}

// Close releases the history store and notification connection.
func (s *Session) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func printReport(w io.Writer, cfg *config.Config, r *site.Report) {
	if r == nil {
		return
	}
	_, _ = fmt.Fprintln(w, r.Summary())
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintf(w, "  warning: %v\n", warn)
	}
	if r.Outcome == site.OutcomeSuccess || r.Outcome == site.OutcomeWarning {
		_, _ = fmt.Fprintf(w, "Site written to %s\n", relOrAbs(cfg.OutputDir()))
	}
}

func relOrAbs(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(wd, p); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return rel
	}
	return p
}
