package model

// CategoryCode identifies a question category ("matiere" on the wire)
type CategoryCode string

// Category is a playable question category
type Category struct {
	Code          CategoryCode `json:"code"`
	Name          string       `json:"name"`
	Emoji         string       `json:"emoji"`
	QuestionCount int          `json:"question_count"`
}

// Label returns the emoji-prefixed display name
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// CategoryGroup bundles related categories for mixed and revision modes
type CategoryGroup struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Emoji            string     `json:"emoji"`
	Categories       []Category `json:"categories"`
	HasSubcategories bool       `json:"has_subcategories"`
}

// Stats is the user's progress within one category
type Stats struct {
	Category          CategoryCode `json:"category"`
	CategoryName      string       `json:"category_name"`
	CategoryEmoji     string       `json:"category_emoji"`
	TotalQuestions    int          `json:"total_questions"`
	SuccessCount      int          `json:"success_count"`
	FailedCount       int          `json:"failed_count"`
	NeverSeenCount    int          `json:"never_seen_count"`
	CompletionPercent float64      `json:"completion_percent"`
}
