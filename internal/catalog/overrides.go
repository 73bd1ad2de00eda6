package catalog

import (
	"strings"

	"courserag/internal/domain"
)

// Override corrects a course whose detail page defeats generic extraction.
type Override func(c *domain.Course)

// DefaultOverrides fixes the experimental-topics pages, where the topic
// blurb is glued onto the grading method.
func DefaultOverrides() map[string]Override {
	return map[string]Override{
		"CS 296": selectedTopics,
		"CS 496": selectedTopics,
	}
}

func selectedTopics(c *domain.Course) {
	c.GradingMethod = strings.TrimSpace(strings.ReplaceAll(c.GradingMethod, " Selected topics.", ""))
	c.Description = "Selected topics."
}
