// Package join attaches rated instructors to the courses they teach.
package join

import (
	"courserag/internal/coursecode"
	"courserag/internal/domain"
)

// CourseToInstructors maps a canonical course code to the summaries of
// every instructor mentioning it, in instructor input order.
type CourseToInstructors map[string][]domain.InstructorSummary

// BuildCourseToInstructors walks instructors once. Instructors without
// ratings are skipped even if the roster loader let them through.
func BuildCourseToInstructors(instructors []domain.Instructor) CourseToInstructors {
	m := make(CourseToInstructors)
	for _, in := range instructors {
		if in.NumRatings <= 0 {
			continue
		}
		summary := in.Summary()
		seen := make(map[string]struct{}, len(in.Courses))
		for _, raw := range in.Courses {
			code := coursecode.Normalize(raw)
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			m[code] = append(m[code], summary.Clone())
		}
	}
	return m
}

// Attach returns copies of courses, in input order, each carrying its own
// instructor list. Courses with no match get an empty, non-nil list.
func Attach(courses []domain.Course, mapping CourseToInstructors) []domain.Course {
	out := make([]domain.Course, len(courses))
	for i, c := range courses {
		joined := c.Clone()
		matched := mapping[coursecode.Normalize(c.Code)]
		joined.Professors = make([]domain.InstructorSummary, len(matched))
		for j, s := range matched {
			joined.Professors[j] = s.Clone()
		}
		out[i] = joined
	}
	return out
}

// Join builds the mapping and attaches it in one call.
func Join(courses []domain.Course, instructors []domain.Instructor) []domain.Course {
	return Attach(courses, BuildCourseToInstructors(instructors))
}
