// Package corpus renders courses and instructors as retrievable text.
// Every template is deterministic so re-ingesting the same dataset yields
// the same documents.
package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"courserag/internal/domain"
	"courserag/internal/sentence"
)

const (
	DefaultDepartment  = "Computer Science"
	DefaultInstitution = "San Diego State University"
)

// Builder renders entity text. The summarizer is optional and only used to
// condense long course descriptions.
type Builder struct {
	institution  string
	summarizer   domain.Summarizer
	maxSentences int
}

// Option configures a Builder.
type Option func(*Builder)

func WithInstitution(name string) Option {
	return func(b *Builder) {
		if strings.TrimSpace(name) != "" {
			b.institution = name
		}
	}
}

// WithSummarizer condenses descriptions longer than maxSentences.
func WithSummarizer(s domain.Summarizer, maxSentences int) Option {
	return func(b *Builder) {
		b.summarizer = s
		b.maxSentences = maxSentences
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{institution: DefaultInstitution}
	for _, o := range opts {
		o(b)
	}
	return b
}

// CourseText describes one joined course.
func (b *Builder) CourseText(c domain.Course) string {
	var sb strings.Builder
	sb.WriteString(c.Code)
	if c.Name != "" {
		sb.WriteString(": " + c.Name)
	}
	sb.WriteString(".")
	if c.Units != "" {
		fmt.Fprintf(&sb, " %s units.", c.Units)
	}
	if desc := b.description(c.Description); desc != "" {
		sb.WriteString(" " + terminate(desc))
	}
	if c.Prereqs != "" {
		sb.WriteString(" Prerequisites: " + terminate(c.Prereqs))
	}
	if c.Restrictions != "" {
		sb.WriteString(" " + terminate(c.Restrictions))
	}
	if c.GeneralEducation != "" {
		sb.WriteString(" General education: " + terminate(c.GeneralEducation))
	}
	if c.GradingMethod != "" {
		sb.WriteString(" Grading: " + terminate(c.GradingMethod))
	}
	if c.TypicallyOffered != "" {
		sb.WriteString(" Typically offered: " + terminate(c.TypicallyOffered))
	}
	if len(c.Professors) == 0 {
		sb.WriteString(" No rated instructors are listed for this course.")
	} else {
		names := make([]string, len(c.Professors))
		for i, p := range c.Professors {
			names[i] = fmt.Sprintf("%s (quality %s, difficulty %s, %d ratings)",
				p.Name, oneDecimal(p.OverallQuality), oneDecimal(p.OverallDifficulty), p.NumRatings)
		}
		sb.WriteString(" Taught by " + strings.Join(names, "; ") + ".")
	}
	return sb.String()
}

func (b *Builder) description(desc string) string {
	if b.summarizer == nil || desc == "" {
		return desc
	}
	short, err := b.summarizer.Summarize(desc, b.maxSentences)
	if err != nil || short == "" {
		return desc
	}
	return short
}

// InstructorText describes one instructor.
func (b *Builder) InstructorText(in domain.Instructor) string {
	name := in.Name
	if name == "" {
		name = "Unknown professor"
	}
	dept := in.Department
	if dept == "" {
		dept = DefaultDepartment
	}
	wta := "N/A"
	if in.WouldTakeAgainPercent != nil {
		wta = strconv.FormatFloat(*in.WouldTakeAgainPercent, 'f', -1, 64) + "%"
	}
	courses := "no listed courses"
	if len(in.Courses) > 0 {
		courses = strings.Join(in.Courses, ", ")
	}
	return fmt.Sprintf("%s is a professor in the %s department at %s. "+
		"They have an overall quality rating of %s out of 5 and a difficulty rating of %s. "+
		"They have %d ratings and %s of students would take them again. "+
		"They are associated with the following courses: %s.",
		name, dept, b.institution, oneDecimal(in.OverallQuality), oneDecimal(in.OverallDifficulty),
		in.NumRatings, wta, courses)
}

// InstructorRecords returns copies of instructors with Text filled in,
// skipping any without ratings.
func (b *Builder) InstructorRecords(instructors []domain.Instructor) []domain.Instructor {
	out := make([]domain.Instructor, 0, len(instructors))
	for _, in := range instructors {
		if in.NumRatings <= 0 {
			continue
		}
		rec := in
		rec.Courses = append([]string(nil), in.Courses...)
		rec.Text = b.InstructorText(in)
		out = append(out, rec)
	}
	return out
}

// Documents renders one document per course followed by one per rated
// instructor. IDs are derived from the entity key.
func (b *Builder) Documents(courses []domain.Course, instructors []domain.Instructor) []domain.Document {
	docs := make([]domain.Document, 0, len(courses)+len(instructors))
	for _, c := range courses {
		docs = append(docs, CourseDocument(c.Code, b.CourseText(c)))
	}
	for _, in := range b.InstructorRecords(instructors) {
		docs = append(docs, domain.Document{
			ID:   domain.KindInstructor + ":" + in.ID,
			Kind: domain.KindInstructor,
			Key:  in.ID,
			Text: in.Text,
		})
	}
	return docs
}

// CourseDocument wraps course text with its deterministic id.
func CourseDocument(code, text string) domain.Document {
	return domain.Document{
		ID:   domain.KindCourse + ":" + code,
		Kind: domain.KindCourse,
		Key:  code,
		Text: text,
	}
}

// CustomDocuments splits free text added through the API into windows of
// sentences, each with a fresh random id. size <= 0 keeps text whole.
func CustomDocuments(text string, size, overlap int) []domain.Document {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := []string{text}
	if size > 0 {
		if windows := sentence.Window(sentence.Split(text), size, overlap); len(windows) > 0 {
			parts = windows
		}
	}
	docs := make([]domain.Document, len(parts))
	for i, p := range parts {
		docs[i] = domain.Document{ID: uuid.NewString(), Kind: domain.KindCustom, Text: p}
	}
	return docs
}

func oneDecimal(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func terminate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
