package commands

import (
	"context"
	"fmt"
	"os/signal"
	"regexp"
	"syscall"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Pattern string `arg:"" help:"Regular expression matched against site-relative paths"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryValidation, "invalid render pattern").
			WithContext("pattern", r.Pattern).Build()
	}

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

	all, err := s.Builder.FileMap().Walk(ctx)
	if err != nil {
		return err
	}
	entries, matched := Select(all, re)
	if matched == 0 {
		_, _ = fmt.Fprintf(g.Out, "No files match %q\n", r.Pattern)
		return nil
	}

	report, err := s.Builder.Build(ctx, entries)
	printReport(g.Out, cfg, report)
	if err == nil {
		_, _ = fmt.Fprintf(g.Out, "%d files rendered.\n", matched)
	}
	return err
}

// Select keeps the entries whose path matches re. Includes are always kept
// so matched files can still reference them. matched counts the others.
func Select(entries []filemap.Entry, re *regexp.Regexp) (selected []filemap.Entry, matched int) {
	for _, e := range entries {
		switch {
		case e.Kind.Class == filemap.ClassInclude:
			selected = append(selected, e)
		case e.Kind.Class == filemap.ClassDirectory || e.Kind.Class == filemap.ClassLayout:
			// loaded on demand
		case re.MatchString(e.Rel):
			selected = append(selected, e)
			matched++
		}
	}
	return selected, matched
}
