// Package sentence splits prose into sentences.
package sentence

import (
	"regexp"
	"strings"
)

var (
	terminated = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	periods    = regexp.MustCompile(`\.\s*`)
)

// Split returns the terminated sentences of text, trimmed. Text with no
// terminator comes back as a single sentence; blank text yields nil.
func Split(text string) []string {
	found := terminated.FindAllString(text, -1)
	if len(found) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	out := make([]string, 0, len(found))
	for _, s := range found {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitPeriods cuts text at every period and drops the periods themselves.
// Empty pieces are discarded.
func SplitPeriods(text string) []string {
	parts := periods.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Window groups sentences into overlapping windows of size sentences each.
func Window(sentences []string, size, overlap int) []string {
	if size <= 0 {
		size = 5
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	var windows []string
	i := 0
	for i < len(sentences) {
		end := i + size
		if end > len(sentences) {
			end = len(sentences)
		}
		windows = append(windows, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}
		i = end - overlap
	}
	return windows
}
