package domain

// Course is one catalog entry keyed by its canonical code.
// Professors is filled by the join and is never nil in joined output.
type Course struct {
	Code             string              `json:"code"`
	Name             string              `json:"name"`
	DetailURL        string              `json:"detail_url,omitempty"`
	Units            string              `json:"units"`
	GeneralEducation string              `json:"general_education"`
	GradingMethod    string              `json:"grading_method"`
	Prereqs          string              `json:"prereqs"`
	Restrictions     string              `json:"restrictions"`
	Description      string              `json:"description"`
	MaxCredits       string              `json:"max_credits"`
	TypicallyOffered string              `json:"typically_offered"`
	Notes            string              `json:"notes"`
	Professors       []InstructorSummary `json:"professors"`
}

// Clone returns a deep copy of c.
func (c Course) Clone() Course {
	out := c
	if c.Professors != nil {
		out.Professors = make([]InstructorSummary, len(c.Professors))
		for i, p := range c.Professors {
			out.Professors[i] = p.Clone()
		}
	}
	return out
}

// Instructor is a rated instructor with the courses mentioned on their
// profile, canonical and sorted by course number.
type Instructor struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	URL                   string   `json:"url"`
	Department            string   `json:"department,omitempty"`
	OverallQuality        *float64 `json:"overall_quality"`
	OverallDifficulty     *float64 `json:"overall_difficulty"`
	NumRatings            int      `json:"num_ratings"`
	WouldTakeAgainPercent *float64 `json:"would_take_again_percent"`
	Courses               []string `json:"courses"`
	Text                  string   `json:"text,omitempty"`
}

// Summary projects the instructor onto the fields attached to courses.
func (i Instructor) Summary() InstructorSummary {
	return InstructorSummary{
		ID:                    i.ID,
		Name:                  i.Name,
		URL:                   i.URL,
		OverallQuality:        copyFloat(i.OverallQuality),
		OverallDifficulty:     copyFloat(i.OverallDifficulty),
		NumRatings:            i.NumRatings,
		WouldTakeAgainPercent: copyFloat(i.WouldTakeAgainPercent),
	}
}

// InstructorSummary is the read-only copy of an instructor stored on a course.
type InstructorSummary struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	URL                   string   `json:"url"`
	OverallQuality        *float64 `json:"overall_quality"`
	OverallDifficulty     *float64 `json:"overall_difficulty"`
	NumRatings            int      `json:"num_ratings"`
	WouldTakeAgainPercent *float64 `json:"would_take_again_percent"`
}

// Clone returns a copy that shares no pointers with s.
func (s InstructorSummary) Clone() InstructorSummary {
	out := s
	out.OverallQuality = copyFloat(s.OverallQuality)
	out.OverallDifficulty = copyFloat(s.OverallDifficulty)
	out.WouldTakeAgainPercent = copyFloat(s.WouldTakeAgainPercent)
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
