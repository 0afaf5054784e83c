package eventstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/popsite/internal/foundation/errors"
	"git.home.luguber.info/inful/popsite/internal/site"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndGet(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	at := time.UnixMilli(1_700_000_000_000)
	e, err := NewStageCompleted("b1", at, StageCompleted{Stage: "render_posts", Result: "success", DurationMS: 1.5})
	require.NoError(t, err)
	e.Metadata = map[string]string{"host": "ci"}
	require.NoError(t, store.Append(ctx, e))

	events, err := store.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, TypeStageCompleted, events[0].Type)
	require.Equal(t, at, events[0].Timestamp)
	require.Equal(t, "ci", events[0].Metadata["host"])
	require.JSONEq(t, `{"stage":"render_posts","result":"success","duration_ms":1.5}`, string(events[0].Payload))

	inRange, err := store.GetRange(ctx, at.Add(-time.Second), at.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	outside, err := store.GetRange(ctx, at.Add(time.Second), at.Add(time.Hour))
	require.NoError(t, err)
	require.Empty(t, outside)
}

func TestSQLiteStore_PruneKeepsNewestBuilds(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	for i := range 5 {
		id := fmt.Sprintf("b%d", i)
		stage, err := NewStageCompleted(id, time.Now(), StageCompleted{Stage: "partition", Result: "success"})
		require.NoError(t, err)
		done, err := NewBuildCompleted(id, time.Now(), BuildCompleted{Outcome: "success"})
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, stage, done))
	}
	require.NoError(t, store.Prune(ctx, 2))

	history, err := History(ctx, store, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "b4", history[0].BuildID)
	require.Equal(t, "b3", history[1].BuildID)

	old, err := store.GetByBuildID(ctx, "b0")
	require.NoError(t, err)
	require.Empty(t, old)
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".popsite", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.FileExists(t, path)
}

func TestObserver_RecordsBuild(t *testing.T) {
	store := newStore(t)
	obs := NewObserver(store, 10, slog.New(slog.NewTextHandler(io.Discard, nil)))

	obs.OnStageStart(site.StagePartition)
	obs.OnStageComplete(site.StagePartition, 2*time.Millisecond, site.StageResultSuccess)
	obs.OnStageComplete(site.StageRenderPosts, 5*time.Millisecond, site.StageResultWarning)

	report := &site.Report{
		BuildID:  "build-1",
		Start:    time.Now().Add(-time.Second),
		End:      time.Now(),
		Posts:    3,
		Written:  map[string]int{site.KindPost: 2},
		Skipped:  1,
		Warnings: []error{errors.New("bad post")},
		Outcome:  site.OutcomeWarning,
	}
	obs.OnBuildComplete(report)

	history, err := History(t.Context(), store, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	got := history[0]
	require.Equal(t, "build-1", got.BuildID)
	require.Equal(t, "warning", got.Outcome)
	require.Equal(t, 2, got.Written[site.KindPost])
	require.Equal(t, 1, got.Skipped)
	require.Equal(t, 1, got.Warnings)
	require.Equal(t, map[string]string{"partition": "success", "render_posts": "warning"}, got.Stages)
	require.InDelta(t, time.Second, got.Duration, float64(50*time.Millisecond))
}

func TestErrors_AreHistoryWarnings(t *testing.T) {
	err := wrap(ErrQueryFailed, errors.New("disk full"))
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryHistory))
	require.False(t, foundationerrors.IsFatal(err))
}
