package plugin

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/popsite/internal/content"
	"git.home.luguber.info/inful/popsite/internal/feed"
	"git.home.luguber.info/inful/popsite/internal/permalink"
)

// BuiltinName is the name the built-in plugin registers under.
const BuiltinName = "builtin"

// Date formats used by the ds and dx helpers.
const (
	ShortDateLayout = "02 January 2006"
	XMLDateLayout   = "2006-01-02T15:04:05Z"
)

// Builtin returns the helpers and filters every site starts with.
func Builtin() Plugin {
	return &Set{
		ID: BuiltinName,
		Help: map[string]Helper{
			"include":            includeHelper,
			"paginate":           paginateHelper,
			"paginatedPosts":     paginatedPostsHelper,
			"postsForTag":        postsForTagHelper,
			"allTags":            allTagsHelper,
			"atom":               atomHelper,
			"rss":                rssHelper,
			"hNews":              hNewsHelper,
			"ds":                 dsHelper,
			"dx":                 dxHelper,
			"h":                  escapeHelper,
			"truncate":           truncateHelper,
			"truncateWords":      truncateWordsHelper,
			"truncateParagraphs": truncateParagraphsHelper,
			"title":              titleHelper,
			"slug":               slugHelper,
			"absURL":             absURLHelper,
		},
		Filt: map[string]Filter{
			"highlight": Highlight,
		},
	}
}

var (
	highlightOpen  = regexp.MustCompile(`\{% highlight ([^ ]*) %\}`)
	highlightClose = regexp.MustCompile(`\{% endhighlight %\}`)
)

// Highlight turns {% highlight lang %} ... {% endhighlight %} blocks into
// prettyprint <pre> elements.
func Highlight(_ *RenderContext, text string) (string, error) {
	text = highlightOpen.ReplaceAllString(text, `<pre class="prettyprint lang-$1">`)
	return highlightClose.ReplaceAllString(text, `</pre>`), nil
}

func includeHelper(rc *RenderContext, args ...any) (any, error) {
	name := argString(args, 0, "")
	out, ok := rc.Include(name)
	if !ok {
		rc.Logger().Debug("include not found", "include", name)
	}
	return out, nil
}

func paginateHelper(rc *RenderContext, _ ...any) (any, error) {
	p := rc.Paginator
	if p == nil {
		return template.HTML(""), nil
	}
	var b strings.Builder
	b.WriteString("\n<div class=\"pages\"><span class=\"prev_next\">")
	if p.HasPrevious() {
		fmt.Fprintf(&b, `<span>&larr;</span><a href="%s" class="previous">Previous</a>`, rc.PageURL(p.PreviousPage))
	}
	for n := 1; n <= p.Pages; n++ {
		if n == p.Page {
			fmt.Fprintf(&b, `<strong class="page">%d</strong>`, n)
			continue
		}
		fmt.Fprintf(&b, `<a href="%s" class="page">%d</a>`, rc.PageURL(n), n)
	}
	if p.HasNext() {
		fmt.Fprintf(&b, `<a href="%s" class="next">Next</a><span>&rarr;</span>`, rc.PageURL(p.NextPage))
	}
	b.WriteString("</span>\n</div>")
	return template.HTML(b.String()), nil
}

func paginatedPostsHelper(rc *RenderContext, _ ...any) (any, error) {
	posts := content.Newest(rc.Posts)
	if rc.Paginator != nil {
		posts = rc.Paginator.Items
	}
	var b strings.Builder
	for _, p := range posts {
		b.WriteString(string(hNews(p, true)))
	}
	return template.HTML(b.String()), nil
}

func postsForTagHelper(rc *RenderContext, args ...any) (any, error) {
	return content.WithTag(rc.Posts, argString(args, 0, "")), nil
}

func allTagsHelper(rc *RenderContext, _ ...any) (any, error) {
	return content.AllTags(rc.Posts), nil
}

func feedInfo(rc *RenderContext, args []any) feed.Info {
	return feed.Info{
		Title:   rc.Site.Title,
		SiteURL: argString(args, 0, rc.Site.URL),
		Path:    rc.Output,
	}
}

func atomHelper(rc *RenderContext, args ...any) (any, error) {
	out, err := feed.Atom(feedInfo(rc, args), rc.Posts, feed.Options{Summaries: argBool(args, 1)})
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func rssHelper(rc *RenderContext, args ...any) (any, error) {
	out, err := feed.RSS(feedInfo(rc, args), rc.Posts, feed.Options{Summaries: argBool(args, 1)})
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func hNewsHelper(rc *RenderContext, args ...any) (any, error) {
	p, err := argPost(rc, args, 0)
	if err != nil {
		return nil, err
	}
	return hNews(p, argBool(args, 1)), nil
}

// hNews renders a post as an hAtom entry. summary selects the post summary
// over its full content when one exists.
func hNews(p *content.Post, summary bool) template.HTML {
	body := p.Content
	if summary && p.Summary != "" {
		body = p.Summary
	}
	var b strings.Builder
	b.WriteString(`<article class="hentry">`)
	fmt.Fprintf(&b, `<header><h2 class="entry-title"><a href="%s" rel="bookmark">%s</a></h2>`,
		html.EscapeString(p.URL), html.EscapeString(p.Title))
	fmt.Fprintf(&b, `<time class="published" datetime="%s">%s</time>`,
		p.Date.Format(XMLDateLayout), p.Date.Format(ShortDateLayout))
	if p.Author != "" {
		fmt.Fprintf(&b, `<address class="author vcard"><span class="fn">%s</span></address>`, html.EscapeString(p.Author))
	}
	b.WriteString(`</header>`)
	fmt.Fprintf(&b, `<div class="entry-content">%s</div>`, body)
	if len(p.Tags) > 0 {
		b.WriteString(`<footer class="tags">`)
		for _, t := range p.Tags {
			fmt.Fprintf(&b, `<span rel="tag">%s</span>`, html.EscapeString(t))
		}
		b.WriteString(`</footer>`)
	}
	b.WriteString(`</article>`)
	return template.HTML(b.String())
}

func dsHelper(_ *RenderContext, args ...any) (any, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return nil, err
	}
	return t.Format(ShortDateLayout), nil
}

func dxHelper(_ *RenderContext, args ...any) (any, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return nil, err
	}
	return t.Format(XMLDateLayout), nil
}

// escapeHelper returns template.HTML so html/template does not escape twice.
func escapeHelper(_ *RenderContext, args ...any) (any, error) {
	return template.HTML(html.EscapeString(argString(args, 0, ""))), nil
}

func truncateHelper(_ *RenderContext, args ...any) (any, error) {
	n, err := argInt(args, 1, 100)
	if err != nil {
		return nil, err
	}
	return Truncate(argString(args, 0, ""), n, argString(args, 2, "...")), nil
}

func truncateWordsHelper(_ *RenderContext, args ...any) (any, error) {
	n, err := argInt(args, 1, 30)
	if err != nil {
		return nil, err
	}
	return TruncateWords(argString(args, 0, ""), n, argString(args, 2, "...")), nil
}

func truncateParagraphsHelper(_ *RenderContext, args ...any) (any, error) {
	n, err := argInt(args, 1, 1)
	if err != nil {
		return nil, err
	}
	return template.HTML(TruncateParagraphs(argString(args, 0, ""), n, argString(args, 2, ""))), nil
}

func titleHelper(_ *RenderContext, args ...any) (any, error) {
	// Casers carry state and cannot be shared across goroutines.
	return cases.Title(language.English).String(argString(args, 0, "")), nil
}

func slugHelper(_ *RenderContext, args ...any) (any, error) {
	return permalink.Slugify(argString(args, 0, "")), nil
}

func absURLHelper(rc *RenderContext, args ...any) (any, error) {
	return strings.TrimSuffix(rc.Site.URL, "/") + "/" + strings.TrimPrefix(argString(args, 0, ""), "/"), nil
}
