package site

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/plugin"
)

func TestBuild_RendersSite(t *testing.T) {
	f := newFixture(t, blogFiles())
	b, report := f.build()

	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.Equal(t, 2, report.Posts)
	require.Equal(t, 2, report.Files)
	require.Equal(t, 2, report.Static)
	require.Equal(t, 1, report.Targets)
	require.Equal(t, 2, report.Written[KindPost])
	require.Equal(t, 2, report.Written[KindPage])
	require.Equal(t, 1, report.Written[KindFeed])
	require.Equal(t, 1, report.Written[KindStatic])
	require.Equal(t, 1, report.Skipped)
	require.Len(t, b.Posts(), 2)

	post := f.output("2011/11/01/awesome-post/index.html")
	require.Contains(t, post, "<title>Awesome</title>")
	require.Contains(t, post, "<nav>Example</nav>")
	require.Contains(t, post, "<p>Hello <em>world</em></p>")
	require.Contains(t, post, "<time>01 November 2011</time>")

	second := f.output("2011/11/02/second/index.html")
	require.Contains(t, second, "<title>second</title>")

	require.Equal(t, "body { font-family: Example; }\n", f.output("stylesheets/screen.css"))
	require.Equal(t, "User-agent: *\n", f.output("robots.txt"))
	require.False(t, f.exists("_private.txt"))
}

func TestBuild_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(t, blogFiles())
	f.cfg.PerPage = 1
	f.build()

	first := f.output("index.html")
	require.Contains(t, first, `<a href="/2011/11/02/second/">second</a>`)
	require.NotContains(t, first, "awesome-post")
	require.Contains(t, first, `<a href="/page2/" class="next">Next</a>`)

	second := f.output("page2/index.html")
	require.Contains(t, second, `<a href="/2011/11/01/awesome-post/">Awesome</a>`)
	require.Contains(t, second, `<a href="/" class="previous">Previous</a>`)
	require.False(t, f.exists("page3/index.html"))
}

func TestBuild_FeedSeesEveryPost(t *testing.T) {
	f := newFixture(t, blogFiles())
	f.build()

	doc := f.output("feed.xml")
	newer := strings.Index(doc, "http://example.com/2011/11/02/second/")
	older := strings.Index(doc, "http://example.com/2011/11/01/awesome-post/")
	require.Positive(t, newer)
	require.Positive(t, older)
	require.Less(t, newer, older)
}

func TestBuild_NoPostsSkipsFeeds(t *testing.T) {
	files := blogFiles()
	delete(files, "_posts/2011-11-01-awesome-post.md")
	delete(files, "_posts/2011-11-02-second.md")
	f := newFixture(t, files)
	_, report := f.build()

	require.Zero(t, report.Targets)
	require.False(t, f.exists("feed.xml"))
	require.True(t, f.exists("index.html"))
}

func TestBuild_FeedWithoutSiteInfoWarns(t *testing.T) {
	f := newFixture(t, blogFiles())
	f.cfg.URL = ""
	_, report := f.build()

	require.Equal(t, OutcomeWarning, report.Outcome)
	require.False(t, f.exists("feed.xml"))
	require.Len(t, report.Warnings, 1)
	require.True(t, foundationerrors.HasCategory(report.Warnings[0], foundationerrors.CategoryConfig))
}

func TestBuild_BadPostIsSkipped(t *testing.T) {
	files := blogFiles()
	files["_posts/not-dated.md"] = "Hello\n"
	files["_posts/2011-11-03-broken.md"] = "---\ntitle: [unclosed\n---\nbody\n"
	f := newFixture(t, files)
	b, report := f.build()

	require.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 2)
	require.Len(t, b.Posts(), 2)
	for _, w := range report.Warnings {
		require.True(t, foundationerrors.HasCategory(w, foundationerrors.CategoryParse), w.Error())
	}
}

func TestBuild_EmptyPostIsSkipped(t *testing.T) {
	files := blogFiles()
	files["_posts/2011-11-04-empty.md"] = "---\ntitle: Empty\n---\n\n"
	f := newFixture(t, files)
	_, report := f.build()

	require.Equal(t, OutcomeSuccess, report.Outcome)
	require.False(t, f.exists("2011/11/04/empty/index.html"))
	require.Equal(t, 2, report.Skipped)
}

func TestBuild_MissingLayoutIsFatal(t *testing.T) {
	files := blogFiles()
	files["_posts/2011-11-03-lost.md"] = "---\nlayout: nope\n---\nlost\n"
	f := newFixture(t, files)
	b := f.builder()

	report, err := b.BuildAll(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrLayoutNotFound)
	require.True(t, foundationerrors.IsFatal(err))
	require.Equal(t, OutcomeFailed, report.Outcome)
	require.Equal(t, StageResultFatal, report.StageResults[StageRenderPosts])

	select {
	case <-b.Ready():
	default:
		t.Fatal("ready must fire after a failed build")
	}
}

func TestBuild_NestedLayouts(t *testing.T) {
	files := blogFiles()
	files["_layouts/post.tmpl"] = "---\nlayout: base\n---\n<article>{{ .Content }}</article>"
	files["_layouts/base.tmpl"] = "<body>{{ .Content }}</body>"
	f := newFixture(t, files)
	f.build()

	require.Contains(t, f.output("2011/11/02/second/index.html"), "<body><article><p>Second post</p>\n</article></body>")
}

func TestBuild_HTMLLayoutWrapsContent(t *testing.T) {
	files := blogFiles()
	files["_layouts/plain.html"] = "<html>{{ .Content }}</html>"
	files["_posts/2011-11-02-second.md"] = "---\nlayout: plain.html\n---\nHello\n"
	f := newFixture(t, files)
	f.build()

	out := f.output("2011/11/02/second/index.html")
	require.Contains(t, out, "<html><p>Hello</p>\n</html>")
	require.NotContains(t, out, "{{")
}

func TestBuild_LayoutCycleIsFatal(t *testing.T) {
	files := blogFiles()
	files["_layouts/post.tmpl"] = "---\nlayout: base\n---\n{{ .Content }}"
	files["_layouts/base.tmpl"] = "---\nlayout: post\n---\n{{ .Content }}"
	f := newFixture(t, files)

	_, err := f.builder().BuildAll(context.Background())
	require.ErrorIs(t, err, ErrLayoutCycle)
}

func TestBuild_PluginOverridesBuiltin(t *testing.T) {
	f := newFixture(t, blogFiles())
	custom := &plugin.Set{
		ID: "custom",
		Help: map[string]plugin.Helper{
			"ds": func(*plugin.RenderContext, ...any) (any, error) { return "custom-date", nil },
		},
	}
	f.build(WithPlugins(custom))

	require.Contains(t, f.output("2011/11/01/awesome-post/index.html"), "<time>custom-date</time>")
}

func TestBuild_ExternalLinksPlugin(t *testing.T) {
	files := blogFiles()
	files["_posts/2011-11-05-links.md"] = "---\nlayout: post\n---\n[out](https://golang.org) [in](http://example.com/about/)\n"
	f := newFixture(t, files)
	f.cfg.Require = []string{"externallinks"}
	f.build()

	out := f.output("2011/11/05/links/index.html")
	require.Contains(t, out, `href="https://golang.org" rel="noopener noreferrer" target="_blank"`)
	require.Contains(t, out, `<a href="http://example.com/about/">in</a>`)
}

func TestNew_UnknownPluginFails(t *testing.T) {
	f := newFixture(t, blogFiles())
	f.cfg.Require = []string{"does-not-exist"}

	_, err := New(f.cfg)
	require.ErrorIs(t, err, plugin.ErrUnknownPlugin)
	require.True(t, foundationerrors.IsFatal(err))
}

func TestBuild_ReadyAndObservers(t *testing.T) {
	f := newFixture(t, blogFiles())
	var completed atomic.Int32
	var readyReport atomic.Pointer[Report]
	b := f.builder(
		WithObserver(&countingObserver{completed: &completed}),
		OnReady(func(r *Report) { readyReport.Store(r) }),
	)
	ready := b.Ready()

	report, err := b.BuildAll(context.Background())
	require.NoError(t, err)

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("ready was not closed")
	}
	require.Equal(t, int32(1), completed.Load())
	require.Same(t, report, readyReport.Load())
	require.NotEmpty(t, report.BuildID)
	for _, stage := range []StageName{StageCacheIncludes, StagePartition, StageRenderPosts, StageAutoGenerate, StageRenderFiles, StageCopyStatic} {
		require.Equal(t, StageResultSuccess, report.StageResults[stage], stage)
	}
}

func TestBuild_Canceled(t *testing.T) {
	f := newFixture(t, blogFiles())
	b := f.builder()
	entries, err := b.FileMap().Walk(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := b.Build(ctx, entries)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, OutcomeCanceled, report.Outcome)
}

type countingObserver struct {
	NoopObserver
	completed *atomic.Int32
}

func (o *countingObserver) OnBuildComplete(*Report) { o.completed.Add(1) }
