package site

import (
	"context"
	"strings"
	"time"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/feed"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
)

func targetID(t config.AutoTarget) string {
	return strings.TrimSpace(t.Feed + " " + t.RSS)
}

func (b *Builder) autoGenerate(_ context.Context, bs *buildState) error {
	return runUnits(b, bs, StageAutoGenerate, bs.targets, targetID, b.generateTarget)
}

// generateTarget writes the Atom and/or RSS document named by t from the
// full post collection. A site without url or title cannot describe a feed;
// the target is skipped with a warning.
func (b *Builder) generateTarget(ctx context.Context, bs *buildState, t config.AutoTarget) error {
	const stage = StageAutoGenerate
	if b.cfg.URL == "" || b.cfg.Title == "" {
		bs.report.skipped()
		return foundationerrors.ConfigWarning("feed generation requires url and title in the site configuration").
			WithPhase(string(stage)).WithContext("target", targetID(t)).Build()
	}

	posts := b.posts.Snapshot()
	info := feed.Info{
		Title:   b.cfg.Title,
		SiteURL: strings.TrimSuffix(b.cfg.URL, "/"),
		Updated: time.Now().UTC(),
	}
	docs := []struct {
		name   string
		render func(feed.Info, []*content.Post, feed.Options) ([]byte, error)
	}{
		{t.Feed, feed.Atom},
		{t.RSS, feed.RSS},
	}
	for _, d := range docs {
		if d.name == "" {
			continue
		}
		info.Path = strings.TrimPrefix(d.name, "/")
		doc, err := d.render(info, posts, feed.Options{})
		if err != nil {
			return unitError(err, foundationerrors.CategoryFeed, "cannot generate feed", stage, d.name)
		}
		rc := b.renderContext()
		if err := b.write(ctx, bs, stage, rc, info.Path, KindFeed, string(doc)); err != nil {
			return err
		}
	}
	return nil
}
