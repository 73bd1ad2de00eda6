// Package catalog turns scraped catalog pages into course entities.
package catalog

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"courserag/internal/coursecode"
	"courserag/internal/domain"
	"courserag/internal/sentence"
)

// DefaultGraduateThreshold is the first course number treated as graduate level.
const DefaultGraduateThreshold = 600

const restrictionMarker = "Not open"

var trailingDots = regexp.MustCompile(`[.\s]+$`)

// Loader parses catalog records. It is stateless and safe for concurrent use.
type Loader struct {
	graduateThreshold int
	overrides         map[string]Override
	log               zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithGraduateThreshold drops courses numbered n and above.
func WithGraduateThreshold(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.graduateThreshold = n
		}
	}
}

// WithOverrides replaces the per-code override table.
func WithOverrides(o map[string]Override) Option {
	return func(l *Loader) { l.overrides = o }
}

// WithLogger sets where skipped records are reported.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// NewLoader creates a loader with the default threshold and overrides.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		graduateThreshold: DefaultGraduateThreshold,
		overrides:         DefaultOverrides(),
		log:               zerolog.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load parses every record, skipping graduate courses, records without a
// course number and repeated codes (first one wins). Output keeps input order.
func (l *Loader) Load(records []domain.CatalogRecord) []domain.Course {
	courses := make([]domain.Course, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		c, ok := l.Parse(rec)
		if !ok {
			continue
		}
		if _, dup := seen[c.Code]; dup {
			l.log.Debug().Str("code", c.Code).Msg("duplicate catalog record skipped")
			continue
		}
		seen[c.Code] = struct{}{}
		courses = append(courses, c)
	}
	l.log.Info().Int("records", len(records)).Int("courses", len(courses)).Msg("catalog loaded")
	return courses
}

// Parse converts one record. ok is false when the record is out of scope
// or has no usable code.
func (l *Loader) Parse(rec domain.CatalogRecord) (domain.Course, bool) {
	rawCode, name := ParseListing(clean(rec.ListingText))
	code := coursecode.Normalize(rawCode)
	if code == "" {
		l.log.Debug().Str("listing", rec.ListingText).Msg("catalog record without code")
		return domain.Course{}, false
	}
	num, ok := coursecode.Number(code)
	if !ok {
		l.log.Debug().Str("code", code).Msg("catalog record without course number")
		return domain.Course{}, false
	}
	if num >= l.graduateThreshold {
		return domain.Course{}, false
	}

	c := extract(rec.DetailText)
	c.Code = code
	c.Name = name
	c.DetailURL = strings.TrimSpace(rec.DetailURL)
	if fix, ok := l.overrides[code]; ok {
		fix(&c)
	}
	return c, true
}

// ParseListing splits a listing label such as "CS 150 - Intro to
// Programming" into its raw code and name. A label of fewer than two
// tokens is all code.
func ParseListing(text string) (code, name string) {
	tokens := strings.Fields(text)
	switch {
	case len(tokens) == 0:
		return "", ""
	case len(tokens) < 2:
		return strings.TrimSpace(text), ""
	case coursecode.IsCanonical(tokens[0]):
		// "CS150 - Name": the number is glued to the subject.
		code, rest := tokens[0], tokens[1:]
		return code, listingName(rest)
	default:
		return tokens[0] + " " + tokens[1], listingName(tokens[2:])
	}
}

func listingName(tokens []string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.Join(tokens, " "), "-"))
}

// extract fills every text field of a course from the flattened detail page.
func extract(detail string) domain.Course {
	text := clean(detail)
	var c domain.Course
	for _, r := range fieldRules {
		stops := r.stops
		if stops == nil {
			stops = otherLabels(r.label)
		}
		v, ok := segment(text, r.label, stops)
		if !ok {
			continue
		}
		if r.pattern != nil {
			v = r.pattern.FindString(v)
		}
		r.assign(&c, clean(v))
	}

	pre, hasPrereqs := segment(text, labelPrerequisites, otherLabels(labelPrerequisites))
	if hasPrereqs {
		prereqs, restrictions, rest := splitPrerequisites(pre)
		c.Prereqs = clean(prereqs)
		c.Restrictions = clean(restrictions)
		if c.Description == "" {
			c.Description = clean(rest)
		}
	} else if c.Description == "" {
		c.Description = clean(gradingTail(text))
	}
	return c
}

// splitPrerequisites separates the prerequisite segment into the
// prerequisite statement, deduplicated restriction sentences and whatever
// prose follows.
func splitPrerequisites(segment string) (prereqs, restrictions, rest string) {
	sentences := sentence.SplitPeriods(segment)
	if len(sentences) == 0 {
		return "", "", ""
	}
	var policies, prose []string
	seen := make(map[string]struct{})
	for _, s := range sentences[1:] {
		if !strings.HasPrefix(s, restrictionMarker) {
			prose = append(prose, s)
			continue
		}
		canon := trailingDots.ReplaceAllString(strings.TrimSpace(s), "")
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		policies = append(policies, canon)
	}
	if len(policies) > 0 {
		restrictions = strings.Join(policies, ". ") + "."
	}
	return sentences[0], restrictions, strings.Join(prose, ". ")
}

// gradingTail returns the prose after the first grading-method sentence,
// which is where pages without prerequisites put their description.
func gradingTail(text string) string {
	i := strings.Index(text, labelGradingMethod)
	if i < 0 {
		return ""
	}
	after := text[i+len(labelGradingMethod):]
	dot := strings.Index(after, ".")
	if dot < 0 {
		return ""
	}
	return strings.TrimSpace(cutAt(after[dot+1:], trailingLabels))
}
