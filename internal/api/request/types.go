package request

// CredentialsRequest is the request body for login and registration
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CategoryRequest carries a category code for category-scoped endpoints
type CategoryRequest struct {
	Category string `json:"matiere"`
}

// StartRequest is the request body for starting a game
type StartRequest struct {
	Category         string `json:"matiere"`
	TimerMinutes     int    `json:"timer_minutes"`
	Mode             string `json:"mode,omitempty"`
	Group            string `json:"category,omitempty"`
	RevisionCategory string `json:"revision_category,omitempty"`
}

// AnswerRequest accepts or rejects the proposed answer
type AnswerRequest struct {
	Answer bool `json:"answer"`
}

// ThemeRequest identifies a theme
type ThemeRequest struct {
	ThemeID string `json:"theme_id"`
}

// ColorRequest identifies a button or background color
type ColorRequest struct {
	ColorID string `json:"color_id"`
}

// EmoteRequest identifies an emote
type EmoteRequest struct {
	EmoteID string `json:"emote_id"`
}

// BuyHintsRequest is the request body for buying hints
type BuyHintsRequest struct {
	Quantity int `json:"quantity"`
}

// AddPointsRequest is the request body for the developer points endpoint
type AddPointsRequest struct {
	Password string `json:"password"`
	Points   int    `json:"points"`
}
