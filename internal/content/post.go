// Package content holds the post records produced by a build and the
// concurrency-safe collection they accumulate in.
package content

import (
	"html/template"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/popsite/internal/frontmatter"
)

// Post is a rendered post. A Post exists only after its source parsed and rendered.
type Post struct {
	// Source is the absolute path of the post file.
	Source string
	// Rel is Source relative to the site root, slash separated.
	Rel  string
	Meta frontmatter.Meta

	Title  string
	Layout string
	Author string
	Tags   []string
	Date   time.Time

	// Path is the resolved permalink without slashes at either end, e.g. "2011/11/01/awesome-post".
	Path string
	// URL is the site-relative URL of the post, e.g. "/2011/11/01/awesome-post/".
	URL string
	// OutputPath is the file the post was written to.
	OutputPath string

	Content template.HTML
	Summary template.HTML

	// Fingerprint identifies the source front matter and body that produced this record.
	Fingerprint string
}

// HasTag reports whether the post carries tag (case-insensitive).
func (p *Post) HasTag(tag string) bool {
	return slices.ContainsFunc(p.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
}

// Field returns a front matter value by key.
func (p *Post) Field(key string) any {
	v, _ := p.Meta.Get(key)
	return v
}

// DateOf is the sort key used for pagination and feeds.
func DateOf(p *Post) time.Time { return p.Date }

// Newest returns a copy of posts sorted newest first; equal dates keep their order.
func Newest(posts []*Post) []*Post {
	out := slices.Clone(posts)
	slices.SortStableFunc(out, func(a, b *Post) int { return b.Date.Compare(a.Date) })
	return out
}

// AllTags returns the distinct tags across posts, sorted.
func AllTags(posts []*Post) []string {
	seen := map[string]struct{}{}
	var tags []string
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				tags = append(tags, t)
			}
		}
	}
	slices.Sort(tags)
	return tags
}

// WithTag returns the posts carrying tag, newest first.
func WithTag(posts []*Post, tag string) []*Post {
	var out []*Post
	for _, p := range Newest(posts) {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}
