package content

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func post(src string, day int, tags ...string) *Post {
	return &Post{Source: src, Date: time.Date(2020, 1, day, 0, 0, 0, 0, time.UTC), Tags: tags}
}

func TestCollection_ConcurrentAppendKeepsEveryRecord(t *testing.T) {
	var c Collection
	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Append(post(fmt.Sprintf("p%d", i), 1))
		}()
	}
	wg.Wait()
	require.Equal(t, 200, c.Len())
	require.Len(t, c.Snapshot(), 200)
}

func TestCollection_UpsertRemoveReset(t *testing.T) {
	var c Collection
	require.False(t, c.Upsert(post("a", 1)))
	require.False(t, c.Upsert(post("b", 2)))

	updated := post("a", 3)
	require.True(t, c.Upsert(updated))
	require.Equal(t, 2, c.Len())
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Same(t, updated, got)

	require.True(t, c.Remove("b"))
	require.False(t, c.Remove("b"))
	require.Equal(t, 1, c.Len())

	c.Reset()
	require.Zero(t, c.Len())
}

func TestSnapshotIsACopy(t *testing.T) {
	var c Collection
	c.Append(post("a", 1))
	snap := c.Snapshot()
	c.Append(post("b", 1))
	require.Len(t, snap, 1)
}

func TestTagsAndOrdering(t *testing.T) {
	posts := []*Post{post("old", 1, "b", "a"), post("new", 3, "c", "a"), post("mid", 2, "B")}

	require.Equal(t, []string{"B", "a", "b", "c"}, AllTags(posts))

	tagged := WithTag(posts, "a")
	require.Len(t, tagged, 2)
	require.Equal(t, "new", tagged[0].Source)

	require.Len(t, WithTag(posts, "b"), 2, "tag match is case-insensitive")

	newest := Newest(posts)
	require.Equal(t, []string{"new", "mid", "old"}, []string{newest[0].Source, newest[1].Source, newest[2].Source})
	require.Equal(t, "old", posts[0].Source, "input untouched")
}
