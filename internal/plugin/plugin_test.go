package plugin

import (
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/popsite/internal/config"
	"git.home.luguber.info/inful/popsite/internal/content"
	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/paginator"
)

var errBoom = errors.New("boom")

func testSite(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.URL = "http://example.com"
	cfg.Title = "Example"
	cfg.PerPage = 5
	return cfg
}

func testPosts(n int) []*content.Post {
	posts := make([]*content.Post, n)
	base := time.Date(2011, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := range posts {
		posts[i] = &content.Post{
			Title:   "Test",
			URL:     "/test-" + string(rune('a'+i)) + "/",
			Date:    base.Add(time.Duration(i) * time.Hour),
			Content: "Example document content",
			Tags:    []string{"a", "b", "c"},
		}
	}
	return posts
}

func call(t *testing.T, r *Registry, rc *RenderContext, name string, args ...any) any {
	t.Helper()
	h, ok := r.Helper(name)
	require.True(t, ok, "helper %s registered", name)
	out, err := h(rc, args...)
	require.NoError(t, err)
	return out
}

func TestRegistry_LaterPluginOverridesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Register(&Set{ID: "first", Filt: map[string]Filter{
		"a": func(_ *RenderContext, s string) (string, error) { return s + "a", nil },
		"b": func(_ *RenderContext, s string) (string, error) { return s + "b", nil },
	}})
	r.Register(&Set{ID: "second", Filt: map[string]Filter{
		"a": func(_ *RenderContext, s string) (string, error) { return s + "A", nil },
		"c": func(_ *RenderContext, s string) (string, error) { return s + "c", nil },
	}})

	require.Equal(t, []string{"a", "b", "c"}, r.FilterNames())
	out, err := r.ApplyFilters(nil, "")
	require.NoError(t, err)
	require.Equal(t, "Abc", out)
	require.Equal(t, []string{"first", "second"}, r.Plugins())
}

func TestRegistry_OverrideBuiltinHelper(t *testing.T) {
	r := NewDefaultRegistry()
	r.Register(&Set{ID: "site", Help: map[string]Helper{
		"ds": func(*RenderContext, ...any) (any, error) { return "custom", nil },
	}})
	rc := NewRenderContext(testSite(t), nil, nil, nil)
	require.Equal(t, "custom", call(t, r, rc, "ds", time.Now()))
}

func TestRegistry_FilterErrorNamesPlugin(t *testing.T) {
	r := NewRegistry()
	r.Register(&Set{ID: "bad", PostFil: map[string]Filter{
		"boom": func(*RenderContext, string) (string, error) { return "", errBoom },
	}})
	_, err := r.ApplyPostFilters(nil, "x")
	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "boom", pe.Name)
}

func TestRegistry_Load(t *testing.T) {
	catalog := Catalog{
		"ok": func(map[string]any) (Plugin, error) { return &Set{ID: "ok"}, nil },
		"broken": func(map[string]any) (Plugin, error) {
			return nil, errBoom
		},
	}
	require.Equal(t, []string{"broken", "ok"}, catalog.Names())

	r := NewRegistry()
	require.NoError(t, r.Load(catalog, []string{"ok"}, nil))

	err := r.Load(catalog, []string{"missing"}, nil)
	require.ErrorIs(t, err, ErrUnknownPlugin)
	require.True(t, foundationerrors.IsFatal(err))
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryPlugin))

	err = r.Load(catalog, []string{"broken"}, nil)
	var pe *PluginError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "init", pe.Step)
}

func TestFuncMap_BindsContext(t *testing.T) {
	r := NewDefaultRegistry()
	rc := NewRenderContext(testSite(t), nil, map[string]template.HTML{"nav": "<nav>x</nav>"}, nil)

	tmpl, err := template.New("page").Funcs(template.FuncMap(r.FuncMap(rc))).Parse(`{{ include "nav" }}|{{ h "<b>" }}|{{ include "nope" }}`)
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, tmpl.Execute(&b, rc))
	require.Equal(t, "<nav>x</nav>|&lt;b&gt;|", b.String())
}

func TestPaginateHelper(t *testing.T) {
	r := NewDefaultRegistry()
	rc := NewRenderContext(testSite(t), testPosts(20), nil, nil)
	rc.Paginator = paginator.New(5, rc.Posts, content.DateOf)

	want := "\n<div class=\"pages\"><span class=\"prev_next\"><strong class=\"page\">1</strong>" +
		`<a href="/page2/" class="page">2</a><a href="/page3/" class="page">3</a>` +
		`<a href="/page4/" class="page">4</a>` +
		`<a href="/page2/" class="next">Next</a><span>&rarr;</span></span>` + "\n</div>"
	require.Equal(t, template.HTML(want), call(t, r, rc, "paginate"))

	rc.Paginator.AdvancePage()
	out := string(call(t, r, rc, "paginate").(template.HTML))
	require.Contains(t, out, `<a href="/" class="previous">Previous</a>`)
	require.Contains(t, out, `<strong class="page">2</strong>`)

	rc.Paginator = nil
	require.Equal(t, template.HTML(""), call(t, r, rc, "paginate"))

	rc = NewRenderContext(testSite(t), testPosts(21), nil, nil)
	rc.Paginator = paginator.New(5, rc.Posts, content.DateOf)
	out = string(call(t, r, rc, "paginate").(template.HTML))
	require.Contains(t, out, `<a href="/page5/" class="page">5</a>`)
	require.NotContains(t, out, "/page6/")
}

func TestPostHelpers(t *testing.T) {
	r := NewDefaultRegistry()
	rc := NewRenderContext(testSite(t), testPosts(20), nil, nil)
	rc.Paginator = paginator.New(5, rc.Posts, content.DateOf)

	require.Equal(t, []string{"a", "b", "c"}, call(t, r, rc, "allTags"))
	require.Len(t, call(t, r, rc, "postsForTag", "a"), 20)
	require.Empty(t, call(t, r, rc, "postsForTag", "zzz"))

	html := string(call(t, r, rc, "paginatedPosts").(template.HTML))
	require.Equal(t, 5, strings.Count(html, "<article"))

	one := string(call(t, r, rc, "hNews", rc.Posts[0]).(template.HTML))
	require.Contains(t, one, `class="hentry"`)
	require.Contains(t, one, "Example document content")

	atom := call(t, r, rc, "atom", "http://example.com").(string)
	require.Contains(t, atom, `<content type="html">Example document content`)
	atom = call(t, r, rc, "atom", "http://example.com", true).(string)
	require.Contains(t, atom, `<content type="html">Example document content`)
	rss := call(t, r, rc, "rss").(string)
	require.Contains(t, rss, `<description>Example document content`)
}

func TestFormattingHelpers(t *testing.T) {
	r := NewDefaultRegistry()
	rc := NewRenderContext(testSite(t), nil, nil, nil)
	date := time.Date(1970, 1, 1, 1, 1, 0, 0, time.UTC)
	const quote = "The needs of the many outweigh the needs of the few."

	require.Equal(t, "01 January 1970", call(t, r, rc, "ds", date))
	require.Equal(t, "1970-01-01T01:01:00Z", call(t, r, rc, "dx", date))
	require.Equal(t, "01 January 1970", call(t, r, rc, "ds", "1970-01-01"))
	require.Equal(t, template.HTML("&lt;h1&gt;Molly &amp; Styx&lt;/h1&gt;"), call(t, r, rc, "h", "<h1>Molly & Styx</h1>"))
	require.Equal(t, "The needs...", call(t, r, rc, "truncate", quote, 10, "..."))
	require.Equal(t, "The needs of the many...", call(t, r, rc, "truncateWords", quote, 5, "..."))
	require.Equal(t, template.HTML("<p>A</p><p>A</p>MORE!"),
		call(t, r, rc, "truncateParagraphs", "<p>A</p><p>A</p><p>A</p><p>A</p><p>A</p>", 2, "MORE!"))
	require.Equal(t, "Hello World", call(t, r, rc, "title", "hello world"))
	require.Equal(t, "awesome-post", call(t, r, rc, "slug", "Awesome Post"))
	require.Equal(t, "http://example.com/feed.xml", call(t, r, rc, "absURL", "/feed.xml"))

	h, _ := r.Helper("ds")
	_, err := h(rc, 42)
	require.Error(t, err)
}

func TestTruncateEdges(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10, "..."))
	require.Equal(t, "a b", TruncateWords("a b", 5, "..."))
	require.Equal(t, "<p>A</p>", TruncateParagraphs("<p>A</p>", 2, "MORE"))
	require.Equal(t, "<p>A</p><p>B</p>", TruncateParagraphs("<p>A</p><p>B</p>", 2, "MORE"))
}

func TestHighlight(t *testing.T) {
	out, err := Highlight(nil, "{% highlight js %}\nvar a = 1;\n{% endhighlight %}")
	require.NoError(t, err)
	require.Equal(t, "<pre class=\"prettyprint lang-js\">\nvar a = 1;\n</pre>", out)
}

func TestCatalogPlugins(t *testing.T) {
	r := NewDefaultRegistry()
	require.NoError(t, r.Load(DefaultCatalog(), []string{"readingtime", "externallinks"},
		map[string]map[string]any{"readingtime": {"wordsPerMinute": 2}}))

	rc := NewRenderContext(testSite(t), nil, nil, nil)
	rc.Post = &content.Post{Content: "<p>one two three four five</p>"}
	require.Equal(t, 3, call(t, r, rc, "readingTime"))

	rc.Output = "index.html"
	out, err := r.ApplyPostFilters(rc, `<a href="https://go.dev">go</a> <a href="http://example.com/x">x</a> <a href="/y">y</a>`)
	require.NoError(t, err)
	require.Contains(t, out, `<a href="https://go.dev" rel="noopener noreferrer" target="_blank">go</a>`)
	require.Contains(t, out, `<a href="http://example.com/x">x</a>`)
	require.Contains(t, out, `<a href="/y">y</a>`)

	rc.Output = "feed.xml"
	out, err = r.ApplyPostFilters(rc, `<a href="https://go.dev">go</a>`)
	require.NoError(t, err)
	require.Equal(t, `<a href="https://go.dev">go</a>`, out)

	err = NewRegistry().Load(DefaultCatalog(), []string{"readingtime"}, map[string]map[string]any{"readingtime": {"wordsPerMinute": "fast"}})
	require.Error(t, err)
}
