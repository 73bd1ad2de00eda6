// Package courseindex serves lookups over the joined course dataset.
package courseindex

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"courserag/internal/apperrors"
	"courserag/internal/coursecode"
	"courserag/internal/domain"
)

// Source yields the joined courses the index is built from.
type Source interface {
	Load(ctx context.Context) ([]domain.Course, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]domain.Course, error)

func (f SourceFunc) Load(ctx context.Context) ([]domain.Course, error) { return f(ctx) }

// state is immutable once published.
type state struct {
	courses []domain.Course
	byCode  map[string]int
	sorted  []int // positions in courses, ordered by code
}

// Index is safe for concurrent use. Readers load the current state without
// locking; Reload publishes a new state in a single pointer swap.
type Index struct {
	source Source
	log    zerolog.Logger
	cur    atomic.Pointer[state]
	group  singleflight.Group
}

// New builds an index and performs the first load. A missing snapshot
// yields an empty index, not an error.
func New(ctx context.Context, source Source, log zerolog.Logger) (*Index, error) {
	idx := &Index{source: source, log: log}
	idx.cur.Store(build(nil))
	if err := idx.Reload(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// FromCourses builds a static index with no backing source.
func FromCourses(courses []domain.Course) *Index {
	idx := &Index{log: zerolog.Nop()}
	idx.cur.Store(build(courses))
	return idx
}

// Reload re-reads the source and swaps in the new state. Concurrent calls
// share a single read. On error the previous state stays in place.
func (i *Index) Reload(ctx context.Context) error {
	if i.source == nil {
		return nil
	}
	_, err, _ := i.group.Do("reload", func() (any, error) {
		courses, err := i.source.Load(ctx)
		if err != nil {
			if !errors.Is(err, apperrors.ErrSnapshotMissing) {
				return nil, err
			}
			i.log.Warn().Err(err).Msg("course snapshot missing, serving empty index")
			courses = nil
		}
		next := build(courses)
		i.cur.Store(next)
		i.log.Info().Int("courses", len(next.courses)).Msg("course index loaded")
		return nil, nil
	})
	return err
}

func build(courses []domain.Course) *state {
	s := &state{
		courses: make([]domain.Course, 0, len(courses)),
		byCode:  make(map[string]int, len(courses)),
		sorted:  make([]int, 0, len(courses)),
	}
	for _, c := range courses {
		c = c.Clone()
		c.Code = coursecode.Normalize(c.Code)
		// First record for a code wins, as in the catalog loader.
		if _, dup := s.byCode[c.Code]; dup {
			continue
		}
		if c.Professors == nil {
			c.Professors = []domain.InstructorSummary{}
		}
		s.byCode[c.Code] = len(s.courses)
		s.sorted = append(s.sorted, len(s.courses))
		s.courses = append(s.courses, c)
	}
	sort.SliceStable(s.sorted, func(a, b int) bool {
		return s.courses[s.sorted[a]].Code < s.courses[s.sorted[b]].Code
	})
	return s
}

// Len reports the number of loaded courses.
func (i *Index) Len() int { return len(i.cur.Load().courses) }

// Get looks up a course by any spelling of its code.
func (i *Index) Get(code string) (domain.Course, bool) {
	s := i.cur.Load()
	n, ok := s.byCode[coursecode.Normalize(code)]
	if !ok {
		return domain.Course{}, false
	}
	return s.courses[n].Clone(), true
}

// All returns every course in load order.
func (i *Index) All() []domain.Course {
	s := i.cur.Load()
	out := make([]domain.Course, len(s.courses))
	for n, c := range s.courses {
		out[n] = c.Clone()
	}
	return out
}

// QueryByPrefix returns courses whose code starts with the normalized
// prefix, sorted by code. An empty prefix returns every course.
func (i *Index) QueryByPrefix(prefix string) []domain.Course {
	s := i.cur.Load()
	p := coursecode.NormalizePrefix(prefix)
	out := make([]domain.Course, 0)
	for _, n := range s.sorted {
		if strings.HasPrefix(s.courses[n].Code, p) {
			out = append(out, s.courses[n].Clone())
		}
	}
	return out
}

// Search matches term case-insensitively against code or name, in load
// order. An empty term matches nothing.
func (i *Index) Search(term string) []domain.Course {
	out := make([]domain.Course, 0)
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return out
	}
	s := i.cur.Load()
	for _, c := range s.courses {
		if strings.Contains(strings.ToLower(c.Code), t) || strings.Contains(strings.ToLower(c.Name), t) {
			out = append(out, c.Clone())
		}
	}
	return out
}
