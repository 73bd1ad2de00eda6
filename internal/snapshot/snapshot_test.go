package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courserag/internal/apperrors"
	"courserag/internal/domain"
)

func sampleCourses() []domain.Course {
	return []domain.Course{
		{Code: "CS 210", Name: "Data Structures", Professors: []domain.InstructorSummary{}},
		{Code: "CS 150", Name: "Intro to Programming", Professors: []domain.InstructorSummary{{ID: "1", Name: "Ada", NumRatings: 12}}},
	}
}

// =============================================================================
// JSON files
// =============================================================================

func TestReadJSON_MissingFile(t *testing.T) {
	_, err := ReadJSON[[]domain.Course](filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, apperrors.ErrSnapshotMissing)
}

func TestReadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := ReadJSON[[]domain.Course](path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrSnapshotMissing)
}

func TestCourseFile_SaveLoad(t *testing.T) {
	ctx := context.Background()
	f := CourseFile{Path: filepath.Join(t.TempDir(), "nested", "courses.json")}
	require.NoError(t, f.Save(ctx, sampleCourses()))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleCourses(), got)

	entries, err := os.ReadDir(filepath.Dir(f.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

// =============================================================================
// bbolt store
// =============================================================================

func newTestBolt(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStore_EmptyIsMissing(t *testing.T) {
	store := newTestBolt(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSnapshotMissing)
}

func TestBoltStore_SaveLoadKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestBolt(t)
	require.NoError(t, store.Save(ctx, sampleCourses()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "CS 210", got[0].Code)
	assert.Equal(t, "CS 150", got[1].Code)
	assert.Equal(t, "Ada", got[1].Professors[0].Name)
}

func TestBoltStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestBolt(t)
	require.NoError(t, store.Save(ctx, sampleCourses()))
	require.NoError(t, store.Save(ctx, []domain.Course{{Code: "CS 310", Name: "Algorithms"}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CS 310", got[0].Code)

	_, found, err := store.Get("CS 150")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBoltStore_GetNormalizes(t *testing.T) {
	store := newTestBolt(t)
	require.NoError(t, store.Save(context.Background(), sampleCourses()))

	c, found, err := store.Get("cs150")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Intro to Programming", c.Name)
}

func TestBoltStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "courses.db")
	store, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, sampleCourses()))
	require.NoError(t, store.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// =============================================================================
// Watcher
// =============================================================================

func TestWatcher_FiresOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "courses.json")
	require.NoError(t, WriteJSON(path, sampleCourses()))

	w, err := NewWatcher(20*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	var calls atomic.Int32
	require.NoError(t, w.Watch(path, func(string) { calls.Add(1) }))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("[]"), 0o644))
	require.NoError(t, WriteJSON(path, sampleCourses()[:1]))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one callback")
}

func TestWatcher_StopTwice(t *testing.T) {
	w, err := NewWatcher(0, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
