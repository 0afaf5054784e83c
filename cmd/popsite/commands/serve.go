package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port    int  `short:"p" help:"Port to listen on (overrides the configured port)"`
	NoWatch bool `name:"no-watch" help:"Serve the current output without rebuilding on changes"`
}

func (sc *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	if sc.Port > 0 {
		cfg.Port = sc.Port
	}
	s, err := OpenSession(g, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryNetwork, "cannot listen").
			WithContext("addr", srv.Addr).Build()
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	g.Logger.Info("serving site", logfields.URL(fmt.Sprintf("http://localhost:%d/", cfg.Port)), logfields.Path(cfg.OutputDir()))
	_, _ = fmt.Fprintf(g.Out, "Serving %s on http://localhost:%d/\n", relOrAbs(cfg.OutputDir()), cfg.Port)

	var runErr error
	if sc.NoWatch {
		select {
		case <-ctx.Done():
		case runErr = <-serveErr:
		}
	} else {
		watchErr := make(chan error, 1)
		go func() { watchErr <- RunWatch(ctx, g, s) }()
		select {
		case runErr = <-watchErr:
		case runErr = <-serveErr:
			cancel()
			<-watchErr
		}
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		g.Logger.Warn("server shutdown", logfields.Error(err))
	}
	return runErr
}

// NewHandler serves the output directory, plus the metrics endpoint when enabled.
func NewHandler(s *Session) http.Handler {
	mux := http.NewServeMux()
	if s.Registry != nil {
		mux.Handle(s.Config.Metrics.Path, metrics.HTTPHandler(s.Registry))
	}
	mux.Handle("/", http.FileServer(http.Dir(s.Config.OutputDir())))
	return mux
}
