package plugin

import (
	"fmt"
	"math"
	"path"
	"strings"

	"golang.org/x/net/html"
)

// DefaultCatalog lists the optional plugins a site can enable with `require`.
func DefaultCatalog() Catalog {
	return Catalog{
		"readingtime":   newReadingTime,
		"externallinks": newExternalLinks,
	}
}

func optString(opts map[string]any, key, def string) (string, error) {
	v, ok := opts[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %s: expected a string, got %T", key, v)
	}
	return s, nil
}

func optInt(opts map[string]any, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("option %s: expected a number, got %T", key, v)
	}
}

// newReadingTime adds readingTime, the estimated minutes needed to read a post.
// Option wordsPerMinute defaults to 200.
func newReadingTime(opts map[string]any) (Plugin, error) {
	wpm, err := optInt(opts, "wordsPerMinute", 200)
	if err != nil {
		return nil, err
	}
	if wpm <= 0 {
		return nil, fmt.Errorf("option wordsPerMinute must be positive, got %d", wpm)
	}
	return &Set{
		ID: "readingtime",
		Help: map[string]Helper{
			"readingTime": func(rc *RenderContext, args ...any) (any, error) {
				p, err := argPost(rc, args, 0)
				if err != nil {
					return nil, err
				}
				minutes := int(math.Ceil(float64(wordCount(string(p.Content))) / float64(wpm)))
				return max(minutes, 1), nil
			},
		},
	}, nil
}

// newExternalLinks adds a post-filter that marks links leaving the site.
// Options rel and target set the attributes written; target "" leaves it out.
func newExternalLinks(opts map[string]any) (Plugin, error) {
	rel, err := optString(opts, "rel", "noopener noreferrer")
	if err != nil {
		return nil, err
	}
	target, err := optString(opts, "target", "_blank")
	if err != nil {
		return nil, err
	}
	return &Set{
		ID: "externallinks",
		PostFil: map[string]Filter{
			"externalLinks": func(rc *RenderContext, text string) (string, error) {
				if ext := path.Ext(rc.Output); ext != ".html" && ext != ".htm" {
					return text, nil
				}
				return markExternalLinks(text, rc.Site.URL, rel, target), nil
			},
		},
	}, nil
}

func isExternal(href, siteURL string) bool {
	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return false
	}
	return siteURL == "" || !strings.HasPrefix(href, strings.TrimSuffix(siteURL, "/"))
}

func markExternalLinks(doc, siteURL, rel, target string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())
		if tt != html.StartTagToken {
			b.WriteString(raw)
			continue
		}
		tok := z.Token()
		if tok.Data != "a" || !isExternal(attr(tok, "href"), siteURL) {
			b.WriteString(raw)
			continue
		}
		setAttr(&tok, "rel", rel)
		if target != "" {
			setAttr(&tok, "target", target)
		}
		b.WriteString(tok.String())
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(tok *html.Token, key, val string) {
	for i, a := range tok.Attr {
		if a.Key == key {
			tok.Attr[i].Val = val
			return
		}
	}
	tok.Attr = append(tok.Attr, html.Attribute{Key: key, Val: val})
}
