// Package feed renders the post collection as Atom and RSS documents.
package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"
	"time"

	"git.home.luguber.info/inful/popsite/internal/content"
)

// ErrMissingSiteInfo is returned when the site has no url or title to describe the feed with.
var ErrMissingSiteInfo = errors.New("feed requires site url and title")

// Info describes the site publishing the feed.
type Info struct {
	Title string
	// SiteURL is the absolute site URL without a trailing slash.
	SiteURL string
	// Path is the site-relative location of the feed itself, e.g. "feed.xml".
	Path   string
	Author string
	// Updated is used when there are no posts. Defaults to now.
	Updated time.Time
}

// Options tunes what goes into each entry.
type Options struct {
	// Summaries emits post summaries instead of full content.
	Summaries bool
	// Limit caps the number of entries. Zero means all posts.
	Limit int
}

func (i Info) validate() error {
	if i.SiteURL == "" || i.Title == "" {
		return ErrMissingSiteInfo
	}
	return nil
}

func (i Info) abs(rel string) string {
	return strings.TrimSuffix(i.SiteURL, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func prepare(posts []*content.Post, opts Options) []*content.Post {
	sorted := content.Newest(posts)
	if opts.Limit > 0 && len(sorted) > opts.Limit {
		sorted = sorted[:opts.Limit]
	}
	return sorted
}

func updatedAt(info Info, posts []*content.Post) time.Time {
	if len(posts) > 0 {
		return posts[0].Date.UTC()
	}
	if !info.Updated.IsZero() {
		return info.Updated.UTC()
	}
	return time.Now().UTC()
}

func body(p *content.Post, opts Options) string {
	if opts.Summaries && p.Summary != "" {
		return string(p.Summary)
	}
	return string(p.Content)
}

func encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
