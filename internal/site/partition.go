package site

import (
	"slices"

	"git.home.luguber.info/inful/popsite/internal/filemap"
	"git.home.luguber.info/inful/popsite/internal/logfields"
)

// partition splits entries into the post, templated and static buckets and
// takes the auto-generate targets from configuration. Targets are derived
// from posts, so a site without posts gets none.
func (b *Builder) partition(bs *buildState, entries []filemap.Entry) {
	for _, e := range entries {
		switch e.Kind.Class {
		case filemap.ClassPost:
			bs.posts = append(bs.posts, e)
		case filemap.ClassTemplated:
			bs.files = append(bs.files, e)
		case filemap.ClassStatic:
			bs.static = append(bs.static, e)
		}
	}
	if len(bs.posts) > 0 {
		bs.targets = slices.Clone(b.cfg.AutoGenerate)
	} else if len(b.cfg.AutoGenerate) > 0 {
		b.logger.Debug("no posts, skipping auto-generated targets", logfields.Count(len(b.cfg.AutoGenerate)))
	}

	bs.units.Add(len(bs.posts) + len(bs.files) + len(bs.static) + len(bs.targets))

	bs.report.Posts = len(bs.posts)
	bs.report.Files = len(bs.files)
	bs.report.Static = len(bs.static)
	bs.report.Targets = len(bs.targets)
}
