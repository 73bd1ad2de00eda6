package courseindex

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courserag/internal/apperrors"
	"courserag/internal/domain"
	"courserag/internal/snapshot"
)

func courses(codes ...string) []domain.Course {
	out := make([]domain.Course, len(codes))
	for i, c := range codes {
		out[i] = domain.Course{Code: c, Name: "Course " + c}
	}
	return out
}

func codesOf(cs []domain.Course) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}

// =============================================================================
// Lookups
// =============================================================================

func TestGet_NormalizesInput(t *testing.T) {
	idx := FromCourses(courses("CS 150", "CS 210"))

	for _, q := range []string{"CS 150", "cs150", "  cs   150 "} {
		c, ok := idx.Get(q)
		require.True(t, ok, q)
		assert.Equal(t, "CS 150", c.Code)
	}
	_, ok := idx.Get("CS 999")
	assert.False(t, ok)
}

func TestGet_ReturnsCopy(t *testing.T) {
	src := courses("CS 150")
	src[0].Professors = []domain.InstructorSummary{{ID: "1", Name: "Ada"}}
	idx := FromCourses(src)

	c, _ := idx.Get("CS 150")
	c.Professors[0].Name = "mutated"
	c.Name = "mutated"

	again, _ := idx.Get("CS 150")
	assert.Equal(t, "Ada", again.Professors[0].Name)
	assert.Equal(t, "Course CS 150", again.Name)
	src[0].Professors[0].Name = "source mutated"
	again, _ = idx.Get("CS 150")
	assert.Equal(t, "Ada", again.Professors[0].Name)
}

func TestAll_LoadOrderAndNonNilProfessors(t *testing.T) {
	idx := FromCourses(courses("CS 210", "CS 150", "CS 199"))
	all := idx.All()
	assert.Equal(t, []string{"CS 210", "CS 150", "CS 199"}, codesOf(all))
	for _, c := range all {
		assert.NotNil(t, c.Professors)
	}
	all[0].Code = "changed"
	assert.Equal(t, "CS 210", idx.All()[0].Code)
}

func TestQueryByPrefix(t *testing.T) {
	idx := FromCourses(courses("CS 210", "CS 199", "CS 150"))

	assert.Equal(t, []string{"CS 150", "CS 199"}, codesOf(idx.QueryByPrefix("CS 1")))
	assert.Equal(t, []string{"CS 150", "CS 199"}, codesOf(idx.QueryByPrefix("cs1")))
	assert.Equal(t, []string{"CS 150", "CS 199", "CS 210"}, codesOf(idx.QueryByPrefix("")))
	assert.Equal(t, []string{"CS 150", "CS 199", "CS 210"}, codesOf(idx.QueryByPrefix("cs")))
	assert.Empty(t, idx.QueryByPrefix("MATH"))
	assert.NotNil(t, idx.QueryByPrefix("MATH"))
}

func TestSearch(t *testing.T) {
	idx := FromCourses([]domain.Course{
		{Code: "CS 150", Name: "Intro to Programming"},
		{Code: "CS 210", Name: "Data Structures"},
		{Code: "CS 310", Name: "Data Structures II"},
	})

	assert.Equal(t, []string{"CS 210", "CS 310"}, codesOf(idx.Search("data")))
	assert.Equal(t, []string{"CS 150"}, codesOf(idx.Search("cs 15")))
	assert.Equal(t, []string{"CS 150"}, codesOf(idx.Search("PROGRAM")))
	assert.Empty(t, idx.Search(""))
	assert.Empty(t, idx.Search("   "))
	assert.NotNil(t, idx.Search(""))
}

func TestDuplicateCodes_FirstWins(t *testing.T) {
	idx := FromCourses([]domain.Course{{Code: "CS 150", Name: "Old"}, {Code: "cs150", Name: "New"}, {Code: "CS 210"}})
	c, ok := idx.Get("CS 150")
	require.True(t, ok)
	assert.Equal(t, "Old", c.Name)
	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"CS 150", "CS 210"}, codesOf(idx.All()))
	assert.Equal(t, []string{"CS 150", "CS 210"}, codesOf(idx.QueryByPrefix("")))
	assert.Len(t, idx.Search("CS 150"), 1)
}

// =============================================================================
// Loading and reload
// =============================================================================

func TestNew_MissingSnapshotIsEmpty(t *testing.T) {
	src := snapshot.CourseFile{Path: filepath.Join(t.TempDir(), "absent.json")}
	idx, err := New(context.Background(), src, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
	assert.Empty(t, idx.All())
	assert.Empty(t, idx.QueryByPrefix(""))
}

func TestNew_SourceErrorFails(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(context.Background(), SourceFunc(func(context.Context) ([]domain.Course, error) {
		return nil, boom
	}), zerolog.Nop())
	assert.ErrorIs(t, err, boom)
}

func TestReload_SwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	f := snapshot.CourseFile{Path: filepath.Join(t.TempDir(), "courses.json")}
	require.NoError(t, f.Save(ctx, courses("CS 150")))

	idx, err := New(ctx, f, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	require.NoError(t, f.Save(ctx, courses("CS 150", "CS 210")))
	require.NoError(t, idx.Reload(ctx))
	assert.Equal(t, 2, idx.Len())
	_, ok := idx.Get("CS 210")
	assert.True(t, ok)
}

func TestReload_FailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	var fail atomic.Bool
	src := SourceFunc(func(context.Context) ([]domain.Course, error) {
		if fail.Load() {
			return nil, errors.New("disk on fire")
		}
		return courses("CS 150"), nil
	})
	idx, err := New(ctx, src, zerolog.Nop())
	require.NoError(t, err)

	fail.Store(true)
	assert.Error(t, idx.Reload(ctx))
	assert.Equal(t, 1, idx.Len())
}

func TestReload_MissingAfterLoadEmpties(t *testing.T) {
	ctx := context.Background()
	var gone atomic.Bool
	src := SourceFunc(func(context.Context) ([]domain.Course, error) {
		if gone.Load() {
			return nil, apperrors.ErrSnapshotMissing
		}
		return courses("CS 150"), nil
	})
	idx, err := New(ctx, src, zerolog.Nop())
	require.NoError(t, err)

	gone.Store(true)
	require.NoError(t, idx.Reload(ctx))
	assert.Zero(t, idx.Len())
}

func TestReload_ConcurrentCallsCoalesce(t *testing.T) {
	ctx := context.Background()
	var loads atomic.Int32
	release := make(chan struct{})
	src := SourceFunc(func(context.Context) ([]domain.Course, error) {
		if loads.Add(1) > 1 {
			<-release
		}
		return courses("CS 150", "CS 210"), nil
	})
	idx, err := New(ctx, src, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, idx.Reload(ctx))
		}()
	}
	// Let every goroutine join the in-flight reload before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, loads.Load(), int32(3))
	assert.Equal(t, 2, idx.Len())
}

func TestReadersDuringReload(t *testing.T) {
	ctx := context.Background()
	var gen atomic.Int32
	src := SourceFunc(func(context.Context) ([]domain.Course, error) {
		if gen.Add(1)%2 == 0 {
			return courses("CS 150", "CS 210", "CS 310"), nil
		}
		return courses("CS 150"), nil
	})
	idx, err := New(ctx, src, zerolog.Nop())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < 50; n++ {
			_ = idx.Reload(ctx)
		}
	}()
	for {
		select {
		case <-done:
			return
		default:
			all := idx.All()
			n := len(all)
			assert.True(t, n == 1 || n == 3, "torn read: %d courses", n)
			_, ok := idx.Get("CS 150")
			assert.True(t, ok)
		}
	}
}
