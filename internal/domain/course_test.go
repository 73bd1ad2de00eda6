package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestCourseClone_DoesNotAlias(t *testing.T) {
	orig := Course{
		Code: "CS 150",
		Professors: []InstructorSummary{
			{ID: "1", Name: "Ada", OverallQuality: float(4.5)},
		},
	}
	cp := orig.Clone()
	cp.Professors[0].Name = "Grace"
	*cp.Professors[0].OverallQuality = 1.0

	assert.Equal(t, "Ada", orig.Professors[0].Name)
	assert.Equal(t, 4.5, *orig.Professors[0].OverallQuality)
}

func TestCourseClone_NilProfessorsStayNil(t *testing.T) {
	assert.Nil(t, Course{Code: "CS 1"}.Clone().Professors)
}

func TestInstructorSummary(t *testing.T) {
	in := Instructor{
		ID:                    "42",
		Name:                  "Ada Lovelace",
		URL:                   "https://example.edu/42",
		Department:            "Computer Science",
		OverallQuality:        float(4.2),
		NumRatings:            12,
		WouldTakeAgainPercent: float(80),
		Courses:               []string{"CS 150"},
	}
	s := in.Summary()
	assert.Equal(t, "42", s.ID)
	assert.Equal(t, 12, s.NumRatings)
	assert.Nil(t, s.OverallDifficulty)
	require.NotNil(t, s.OverallQuality)

	*s.OverallQuality = 0
	assert.Equal(t, 4.2, *in.OverallQuality)
}
