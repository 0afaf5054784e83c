package commands

import (
	"context"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/popsite/internal/config"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Output directory (overrides the configured output)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output = b.Output
	}
	return RunBuild(ctx, g, cfg)
}

// RunBuild performs one full build and prints its report.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config) error {
	s, err := OpenSession(g, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	report, err := s.Builder.BuildAll(ctx)
	printReport(g.Out, cfg, report)
	return err
}
