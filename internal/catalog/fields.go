package catalog

import (
	"regexp"
	"strings"

	"courserag/internal/domain"
)

// Labels found on catalog detail pages.
const (
	labelUnits            = "Units:"
	labelGeneralEducation = "General Education:"
	labelGradingMethod    = "Grading Method:"
	labelPrerequisites    = "Prerequisite(s):"
	labelRepeatable       = "May Be Repeated:"
	labelMaxCredits       = "Maximum Credits:"
	labelTypicallyOffered = "Typically Offered:"
	labelNote             = "Note:"
	labelDescription      = "Description:"
	labelBackToTop        = "Back to Top"
)

var knownLabels = []string{
	labelUnits,
	labelGeneralEducation,
	labelGradingMethod,
	labelPrerequisites,
	labelRepeatable,
	labelMaxCredits,
	labelTypicallyOffered,
	labelNote,
	labelDescription,
	labelBackToTop,
}

// trailingLabels end free-text blocks that follow the grading method or
// prerequisite sentences.
var trailingLabels = []string{
	labelRepeatable,
	labelMaxCredits,
	labelTypicallyOffered,
	labelBackToTop,
	labelNote,
}

// fieldRule extracts one course field. A nil stops list means every other
// known label ends the segment. When pattern is set, only its leading
// match within the segment is kept.
type fieldRule struct {
	label   string
	stops   []string
	pattern *regexp.Regexp
	assign  func(c *domain.Course, v string)
}

var fieldRules = []fieldRule{
	{
		label:   labelUnits,
		pattern: regexp.MustCompile(`^[0-9]+(?:-[0-9]+)?`),
		assign:  func(c *domain.Course, v string) { c.Units = v },
	},
	{
		label:  labelGeneralEducation,
		assign: func(c *domain.Course, v string) { c.GeneralEducation = v },
	},
	{
		label:  labelGradingMethod,
		assign: func(c *domain.Course, v string) { c.GradingMethod = v },
	},
	{
		label:   labelMaxCredits,
		pattern: regexp.MustCompile(`^[0-9]+`),
		assign:  func(c *domain.Course, v string) { c.MaxCredits = v },
	},
	{
		label:   labelTypicallyOffered,
		pattern: regexp.MustCompile(`^[A-Za-z/ ]+`),
		assign:  func(c *domain.Course, v string) { c.TypicallyOffered = v },
	},
	{
		label:  labelNote,
		stops:  []string{labelBackToTop, labelTypicallyOffered},
		assign: func(c *domain.Course, v string) { c.Notes = v },
	},
	{
		label:  labelDescription,
		assign: func(c *domain.Course, v string) { c.Description = v },
	},
}

// segment returns the text between label and the nearest following stop
// label, or end of text.
func segment(text, label string, stops []string) (string, bool) {
	i := strings.Index(text, label)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(label):]
	return strings.TrimSpace(cutAt(rest, stops)), true
}

// cutAt truncates text at the earliest occurrence of any label.
func cutAt(text string, labels []string) string {
	end := len(text)
	for _, l := range labels {
		if j := strings.Index(text, l); j >= 0 && j < end {
			end = j
		}
	}
	return text[:end]
}

func otherLabels(label string) []string {
	out := make([]string, 0, len(knownLabels)-1)
	for _, l := range knownLabels {
		if l != label {
			out = append(out, l)
		}
	}
	return out
}

var cleaner = strings.NewReplacer("\u00a0", " ", "\u2019", "'")

// clean normalizes scraped text: non-breaking spaces and typographic
// apostrophes are replaced and the result trimmed.
func clean(s string) string {
	return strings.TrimSpace(cleaner.Replace(s))
}
