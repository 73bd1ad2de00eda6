// Package coursecode canonicalizes course identifiers such as "cs150" or
// "CS   150" into the single comparable form "CS 150".
package coursecode

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	codePattern   = regexp.MustCompile(`^([A-Za-z]+)\s*([0-9]{2,3})$`)
	prefixPattern = regexp.MustCompile(`^([A-Za-z]+)\s*([0-9]{0,3})$`)
	digitsPattern = regexp.MustCompile(`[0-9]+`)
)

// Normalize returns the canonical "<SUBJECT> <NUMBER>" form of raw.
// Input that does not look like a course code is returned upper-cased and
// trimmed instead of being rejected.
func Normalize(raw string) string {
	code, _ := Parse(raw)
	return code
}

// Parse is Normalize plus a flag reporting whether raw matched the course
// code pattern. A false flag means the result is the lenient fallback.
func Parse(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	m := codePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return strings.ToUpper(trimmed), false
	}
	return strings.ToUpper(m[1]) + " " + m[2], true
}

// IsCanonical reports whether raw is confidently normalizable.
func IsCanonical(raw string) bool {
	_, ok := Parse(raw)
	return ok
}

// Number returns the first run of digits in code.
func Number(code string) (int, bool) {
	d := digitsPattern.FindString(code)
	if d == "" {
		return 0, false
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizePrefix canonicalizes a partial code for prefix matching:
// "cs1" becomes "CS 1" and "cs" becomes "CS". A subject followed by
// whitespace keeps the separator so "cs " only matches CS codes.
func NormalizePrefix(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		return ""
	}
	trimmed := strings.TrimSpace(prefix)
	m := prefixPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return strings.ToUpper(strings.TrimLeft(prefix, " \t\r\n"))
	}
	subject := strings.ToUpper(m[1])
	if m[2] != "" {
		return subject + " " + m[2]
	}
	if len(trimmed) < len(strings.TrimLeft(prefix, " \t\r\n")) {
		return subject + " "
	}
	return subject
}

// Less orders canonical codes by subject and then by numeric part, so
// "CS 96" sorts before "CS 150".
func Less(a, b string) bool {
	sa, na := split(a)
	sb, nb := split(b)
	if sa != sb {
		return sa < sb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func split(code string) (string, int) {
	subject, _, _ := strings.Cut(code, " ")
	n, ok := Number(code)
	if !ok {
		n = -1
	}
	return subject, n
}

// Scanner finds course mentions for one subject in free text.
type Scanner struct {
	subject string
	re      *regexp.Regexp
}

// NewScanner builds a scanner for subject, e.g. "CS". Matching is
// case-insensitive and bounded by word edges.
func NewScanner(subject string) *Scanner {
	subject = strings.ToUpper(strings.TrimSpace(subject))
	return &Scanner{
		subject: subject,
		re:      regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(subject) + `\s*([0-9]{2,3})\b`),
	}
}

// Subject returns the upper-cased subject the scanner looks for.
func (s *Scanner) Subject() string { return s.subject }

// FindAll returns every mention in text in canonical form, in order of
// appearance. Duplicates are kept.
func (s *Scanner) FindAll(text string) []string {
	matches := s.re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, s.subject+" "+m[1])
	}
	return out
}
