package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/popsite/internal/logfields"
	"git.home.luguber.info/inful/popsite/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	s, err := OpenSession(g, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return RunWatch(ctx, g, s)
}

// RunWatch builds once and then follows changes until ctx is done. A failed
// initial build is reported but does not stop the watcher.
func RunWatch(ctx context.Context, g *Global, s *Session) error {
	report, err := s.Builder.BuildAll(ctx)
	printReport(g.Out, s.Config, report)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		g.Logger.Error("initial build failed; waiting for changes", logfields.Error(err))
	}

	w, err := watch.New(s.Builder, s.Builder.FileMap(), s.Config, g.Logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
