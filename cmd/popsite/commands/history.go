package commands

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/popsite/internal/eventstore"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of builds to show (0 for all)"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return foundationerrors.ConfigError("build history is disabled (set history.enabled in the site config)").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.HistoryPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.Out, "No builds recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tOUTCOME\tDURATION\tWRITTEN\tWARNINGS\tBUILD")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			b.StartedAt.Local().Format(time.DateTime), b.Outcome, b.Duration.Round(time.Millisecond),
			formatWritten(b.Written), b.Warnings, b.BuildID)
	}
	return tw.Flush()
}

func formatWritten(w map[string]int) string {
	if len(w) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(w))
	for _, k := range slices.Sorted(maps.Keys(w)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, w[k]))
	}
	return strings.Join(parts, ",")
}
