// Package roster turns scraped instructor profiles into instructor entities.
package roster

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"courserag/internal/coursecode"
	"courserag/internal/domain"
)

// DefaultSubject is the course subject mined from profile text.
const DefaultSubject = "CS"

// Loader converts instructor records. Records without ratings or without
// an id are dropped here so downstream consumers never see them.
type Loader struct {
	scanner *coursecode.Scanner
	log     zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithSubject changes the subject prefix scanned for in profile text.
func WithSubject(subject string) Option {
	return func(l *Loader) {
		if strings.TrimSpace(subject) != "" {
			l.scanner = coursecode.NewScanner(subject)
		}
	}
}

// WithLogger sets where dropped profiles are reported.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// NewLoader returns a loader scanning for DefaultSubject mentions unless
// WithSubject says otherwise.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		scanner: coursecode.NewScanner(DefaultSubject),
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load converts records in input order.
func (l *Loader) Load(records []domain.InstructorRecord) []domain.Instructor {
	out := make([]domain.Instructor, 0, len(records))
	dropped := 0
	for _, rec := range records {
		in, ok := l.Parse(rec)
		if !ok {
			dropped++
			continue
		}
		out = append(out, in)
	}
	l.log.Info().Int("records", len(records)).Int("instructors", len(out)).Int("dropped", dropped).Msg("roster loaded")
	return out
}

// Parse converts one record; ok is false for unrated or id-less records.
func (l *Loader) Parse(rec domain.InstructorRecord) (domain.Instructor, bool) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		l.log.Debug().Str("name", rec.Name).Msg("instructor record without id")
		return domain.Instructor{}, false
	}
	if rec.NumRatings == nil || *rec.NumRatings <= 0 {
		return domain.Instructor{}, false
	}
	return domain.Instructor{
		ID:                    id,
		Name:                  strings.TrimSpace(rec.Name),
		URL:                   strings.TrimSpace(rec.URL),
		Department:            strings.TrimSpace(rec.Department),
		OverallQuality:        rec.OverallQuality,
		OverallDifficulty:     rec.OverallDifficulty,
		NumRatings:            *rec.NumRatings,
		WouldTakeAgainPercent: rec.WouldTakeAgainPercent,
		Courses:               l.Mentions(rec),
	}, true
}

// Mentions collects the distinct course codes named in the profile text and
// the raw course list, sorted by course number.
func (l *Loader) Mentions(rec domain.InstructorRecord) []string {
	found := l.scanner.FindAll(rec.ProfileText)
	for _, raw := range rec.Courses {
		found = append(found, l.scanner.FindAll(raw)...)
	}

	seen := make(map[string]struct{}, len(found))
	codes := make([]string, 0, len(found))
	for _, m := range found {
		code := coursecode.Normalize(m)
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.SliceStable(codes, func(i, j int) bool { return coursecode.Less(codes[i], codes[j]) })
	return codes
}
