package domain

// CatalogRecord is one scraped catalog page: the listing label
// ("CS 150 - Intro to Programming") and the flattened detail-page text.
type CatalogRecord struct {
	ListingText string `json:"listing_text"`
	DetailURL   string `json:"detail_url"`
	DetailText  string `json:"detail_text"`
}

// InstructorRecord is one scraped ratings profile. Courses holds raw
// course strings already pulled from the page, ProfileText any free text
// that may mention more.
type InstructorRecord struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	URL                   string   `json:"url"`
	Department            string   `json:"department"`
	OverallQuality        *float64 `json:"overall_quality"`
	OverallDifficulty     *float64 `json:"overall_difficulty"`
	NumRatings            *int     `json:"num_ratings"`
	WouldTakeAgainPercent *float64 `json:"would_take_again_percent"`
	ProfileText           string   `json:"profile_text"`
	Courses               []string `json:"courses"`
}
