// Package notify publishes a message to NATS whenever a build completes.
package notify

import (
	"encoding/json"
	"log/slog"
	"maps"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/popsite/internal/config"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/site"
)

// Publisher is the part of a NATS connection the notifier uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// BuildEvent is the JSON message published per build.
type BuildEvent struct {
	BuildID    string         `json:"build_id"`
	Site       string         `json:"site,omitempty"`
	URL        string         `json:"url,omitempty"`
	Outcome    string         `json:"outcome"`
	Written    map[string]int `json:"written"`
	Skipped    int            `json:"skipped"`
	Warnings   int            `json:"warnings"`
	Error      string         `json:"error,omitempty"`
	DurationMS float64        `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Notifier is a site.Observer that publishes a BuildEvent per completed build.
// Publish failures are logged and never affect the build.
type Notifier struct {
	site.NoopObserver

	pub     Publisher
	subject string
	site    *config.Config
	logger  *slog.Logger
	conn    *nats.Conn
}

// New creates a Notifier over an existing publisher.
func New(pub Publisher, subject string, cfg *config.Config, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = config.DefaultNotifySubject
	}
	return &Notifier{pub: pub, subject: subject, site: cfg, logger: logger}
}

// Connect dials the NATS server named in cfg.Notify.URL.
func Connect(cfg *config.Config, logger *slog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(cfg.Notify.URL,
		nats.Name("popsite"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", logfields.Error(err))
			}
		}),
	)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", cfg.Notify.URL).Build()
	}
	n := New(conn, cfg.Notify.Subject, cfg, logger)
	n.conn = conn
	logger.Info("build notifications enabled", logfields.URL(cfg.Notify.URL), slog.String("subject", n.subject))
	return n, nil
}

// OnBuildComplete publishes the build outcome.
func (n *Notifier) OnBuildComplete(r *site.Report) {
	ev := BuildEvent{
		BuildID:    r.BuildID,
		Outcome:    string(r.Outcome),
		Written:    maps.Clone(r.Written),
		Skipped:    r.Skipped,
		Warnings:   len(r.Warnings),
		DurationMS: float64(r.Duration().Microseconds()) / 1000,
		Timestamp:  r.End.UTC(),
	}
	if n.site != nil {
		ev.Site = n.site.Title
		ev.URL = n.site.URL
	}
	if len(r.Errors) > 0 {
		ev.Error = r.Errors[0].Error()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		n.logger.Warn("cannot encode build event", logfields.BuildID(r.BuildID), logfields.Error(err))
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		n.logger.Warn("cannot publish build event", logfields.BuildID(r.BuildID), logfields.Error(err))
		return
	}
	n.logger.Debug("published build event", logfields.BuildID(r.BuildID), slog.String("subject", n.subject))
}

// Close drains the connection opened by Connect.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
