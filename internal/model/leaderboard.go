package model

// ScoreEntry is one row of a per-category leaderboard
type ScoreEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Date     string `json:"date"`
}

// Leaderboard lists the best timed games for a category
type Leaderboard struct {
	Category     CategoryCode `json:"category"`
	CategoryName string       `json:"category_name"`
	Entries      []ScoreEntry `json:"entries"`
}

// TotalScoreEntry is one row of the global leaderboard
type TotalScoreEntry struct {
	Username    string `json:"username"`
	TotalScore  int    `json:"total_score"`
	GamesPlayed int    `json:"games_played"`
}

// GlobalLeaderboard ranks users by accumulated points
type GlobalLeaderboard struct {
	Entries          []TotalScoreEntry `json:"entries"`
	CurrentUserScore int               `json:"current_user_score"`
}
