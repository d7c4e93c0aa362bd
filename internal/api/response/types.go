package response

import "github.com/mcoot/quizgame/internal/model"

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

// CurrentUserResponse reports the session user
type CurrentUserResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

// SuccessResponse is a bare acknowledgement
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Category is one entry of the category list
type Category struct {
	Code          string `json:"code"`
	Name          string `json:"nom"`
	Emoji         string `json:"emoji"`
	QuestionCount int    `json:"nb_questions"`
}

// ToModel converts to a model.Category
func (c Category) ToModel() model.Category {
	return model.Category{
		Code:          model.CategoryCode(c.Code),
		Name:          c.Name,
		Emoji:         c.Emoji,
		QuestionCount: c.QuestionCount,
	}
}

// CategoriesResponse lists playable categories
type CategoriesResponse struct {
	Categories []Category `json:"matieres"`
}

// GroupMember is a category listed inside a group
type GroupMember struct {
	ID    string `json:"id"`
	Name  string `json:"nom"`
	Emoji string `json:"emoji"`
}

// Group is a category group
type Group struct {
	ID               string        `json:"id"`
	Name             string        `json:"nom"`
	Emoji            string        `json:"emoji"`
	Categories       []GroupMember `json:"matieres"`
	HasSubcategories bool          `json:"has_subcategories"`
}

// ToModel converts to a model.CategoryGroup
func (g Group) ToModel() model.CategoryGroup {
	members := make([]model.Category, 0, len(g.Categories))
	for _, m := range g.Categories {
		members = append(members, model.Category{Code: model.CategoryCode(m.ID), Name: m.Name, Emoji: m.Emoji})
	}
	return model.CategoryGroup{
		ID:               g.ID,
		Name:             g.Name,
		Emoji:            g.Emoji,
		Categories:       members,
		HasSubcategories: g.HasSubcategories,
	}
}

// GroupsResponse lists category groups
type GroupsResponse struct {
	Groups []Group `json:"categories"`
}

// StatsResponse is the per-category progress
type StatsResponse struct {
	Category          string  `json:"matiere"`
	CategoryName      string  `json:"matiere_nom"`
	CategoryEmoji     string  `json:"matiere_emoji"`
	TotalQuestions    int     `json:"total_questions"`
	SuccessCount      int     `json:"success_count"`
	FailedCount       int     `json:"failed_count"`
	NeverSeenCount    int     `json:"never_seen_count"`
	CompletionPercent float64 `json:"completion_percent"`
}

// ToModel converts to model.Stats
func (s StatsResponse) ToModel() model.Stats {
	return model.Stats{
		Category:          model.CategoryCode(s.Category),
		CategoryName:      s.CategoryName,
		CategoryEmoji:     s.CategoryEmoji,
		TotalQuestions:    s.TotalQuestions,
		SuccessCount:      s.SuccessCount,
		FailedCount:       s.FailedCount,
		NeverSeenCount:    s.NeverSeenCount,
		CompletionPercent: s.CompletionPercent,
	}
}

// CheckSavedResponse reports whether a resumable game exists
type CheckSavedResponse struct {
	HasSavedGame bool   `json:"has_saved_game"`
	Category     string `json:"matiere"`
}

// GameResponse is returned by start and restore
type GameResponse struct {
	Success        bool   `json:"success"`
	TotalQuestions int    `json:"total_questions"`
	CurrentIndex   int    `json:"current_index,omitempty"`
	Score          int    `json:"score,omitempty"`
	Category       string `json:"matiere"`
	CategoryName   string `json:"matiere_nom"`
	CategoryEmoji  string `json:"matiere_emoji"`
	TimerMinutes   int    `json:"timer_minutes"`
}

// ToModel converts to model.GameInfo
func (g GameResponse) ToModel() model.GameInfo {
	return model.GameInfo{
		TotalQuestions: g.TotalQuestions,
		CurrentIndex:   g.CurrentIndex,
		Score:          g.Score,
		Category:       model.CategoryCode(g.Category),
		CategoryName:   g.CategoryName,
		CategoryEmoji:  g.CategoryEmoji,
		TimerMinutes:   g.TimerMinutes,
	}
}

// RevisionResponse is returned when revision starts
type RevisionResponse struct {
	Success        bool `json:"success"`
	TotalQuestions int  `json:"total_questions"`
}

// TimeRemainingResponse is the timer state
type TimeRemainingResponse struct {
	TimerEnabled     bool `json:"timer_enabled"`
	RemainingSeconds int  `json:"remaining_seconds"`
	IsExpired        bool `json:"is_expired"`
}

// QuestionResponse is either a question or the finished marker
type QuestionResponse struct {
	Finished         bool   `json:"finished"`
	Score            int    `json:"score"`
	HasRevision      bool   `json:"has_revision,omitempty"`
	RevisionCount    int    `json:"revision_count,omitempty"`
	Question         string `json:"question,omitempty"`
	ProposedAnswer   string `json:"reponse_proposee,omitempty"`
	QuestionNumber   int    `json:"question_number,omitempty"`
	TotalQuestions   int    `json:"total_questions,omitempty"`
	RemainingAnswers int    `json:"reponses_restantes,omitempty"`
	SourceCategory   string `json:"source_matiere,omitempty"`
	SourceName       string `json:"source_nom,omitempty"`
	SourceEmoji      string `json:"source_emoji,omitempty"`
}

// ToModel converts to model.QuestionState
func (q QuestionResponse) ToModel() model.QuestionState {
	state := model.QuestionState{
		Finished:      q.Finished,
		Score:         q.Score,
		HasRevision:   q.HasRevision,
		RevisionCount: q.RevisionCount,
	}
	if !q.Finished {
		state.Question = &model.Question{
			Text:             q.Question,
			ProposedAnswer:   q.ProposedAnswer,
			Number:           q.QuestionNumber,
			Total:            q.TotalQuestions,
			Score:            q.Score,
			RemainingAnswers: q.RemainingAnswers,
			SourceCategory:   q.SourceCategory,
			SourceName:       q.SourceName,
			SourceEmoji:      q.SourceEmoji,
		}
	}
	return state
}

// AnswerResponse is the verdict on an answer
type AnswerResponse struct {
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
	Message       string `json:"message"`
	CorrectAnswer string `json:"bonne_reponse"`
	NextQuestion  bool   `json:"next_question"`
	Score         int    `json:"score"`
}

// ToModel converts to model.AnswerResult
func (a AnswerResponse) ToModel() model.AnswerResult {
	return model.AnswerResult{
		Correct:       a.Correct,
		Points:        a.Points,
		Message:       a.Message,
		CorrectAnswer: a.CorrectAnswer,
		NextQuestion:  a.NextQuestion,
		Score:         a.Score,
	}
}

// ScoresResponse is the per-category leaderboard
type ScoresResponse struct {
	Scores       []ScoreEntry `json:"scores"`
	Category     string       `json:"matiere"`
	CategoryName string       `json:"matiere_nom"`
}

// ScoreEntry is one leaderboard row
type ScoreEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
	Date     string `json:"date"`
}

// TotalScoresResponse is the global leaderboard
type TotalScoresResponse struct {
	Scores           []TotalScoreEntry `json:"scores"`
	CurrentUserScore int               `json:"current_user_score"`
}

// TotalScoreEntry is one global leaderboard row
type TotalScoreEntry struct {
	Username    string `json:"username"`
	TotalScore  int    `json:"total_score"`
	GamesPlayed int    `json:"games_played"`
}

// HintResponse is returned when a hint is used
type HintResponse struct {
	Success        bool   `json:"success"`
	IsCorrect      bool   `json:"is_correct"`
	HintsRemaining int    `json:"hints_remaining"`
	Message        string `json:"message"`
}

// HintCountResponse reports the hint balance
type HintCountResponse struct {
	HintsCount int `json:"hints_count"`
}

// Theme is a theme catalog entry
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"nom"`
	Gradient    string `json:"gradient"`
	Price       int    `json:"prix"`
	Description string `json:"description"`
	Owned       bool   `json:"owned"`
	Equipped    bool   `json:"equipped"`
}

// ThemesResponse lists themes and the user's balance
type ThemesResponse struct {
	Themes       []Theme `json:"themes"`
	UserScore    int     `json:"user_score"`
	CurrentTheme string  `json:"current_theme"`
}

// ButtonColor is a button color catalog entry
type ButtonColor struct {
	ID          string `json:"id"`
	Name        string `json:"nom"`
	Color       string `json:"couleur"`
	HoverColor  string `json:"couleur_hover"`
	Price       int    `json:"prix"`
	Description string `json:"description"`
	Owned       bool   `json:"owned"`
	Equipped    bool   `json:"equipped"`
}

// ButtonColorsResponse lists button colors
type ButtonColorsResponse struct {
	Colors    []ButtonColor `json:"colors"`
	UserScore int           `json:"user_score"`
}

// BackgroundColor is a background catalog entry
type BackgroundColor struct {
	ID          string `json:"id"`
	Name        string `json:"nom"`
	Gradient    string `json:"gradient"`
	Price       int    `json:"prix"`
	Description string `json:"description"`
	Owned       bool   `json:"owned"`
	Equipped    bool   `json:"equipped"`
}

// BackgroundColorsResponse lists background colors; the server omits the balance here
type BackgroundColorsResponse struct {
	BackgroundColors []BackgroundColor `json:"background_colors"`
}

// Emote is an emote catalog entry
type Emote struct {
	ID          string `json:"id"`
	Name        string `json:"nom"`
	Emoji       string `json:"emoji"`
	Price       int    `json:"prix"`
	Description string `json:"description"`
	Owned       bool   `json:"owned"`
}

// EmotesResponse lists emotes
type EmotesResponse struct {
	Emotes      []Emote  `json:"emotes"`
	UserScore   int      `json:"user_score"`
	OwnedEmotes []string `json:"owned_emotes"`
}

// PurchaseResponse is returned by every buy endpoint
type PurchaseResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	NewScore   int    `json:"new_score"`
	HintsCount int    `json:"hints_count,omitempty"`
}

// EquipResponse is returned by every equip endpoint
type EquipResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Gradient   string `json:"gradient,omitempty"`
	Color      string `json:"couleur,omitempty"`
	HoverColor string `json:"couleur_hover,omitempty"`
}

// UserButtonColorResponse is the equipped button color
type UserButtonColorResponse struct {
	ColorID    string `json:"color_id"`
	Color      string `json:"couleur"`
	HoverColor string `json:"couleur_hover"`
}

// BattleCreatedResponse is returned when a battle is created
type BattleCreatedResponse struct {
	Success        bool   `json:"success"`
	Code           string `json:"code"`
	BattleID       int    `json:"battle_id"`
	Category       string `json:"matiere"`
	CategoryName   string `json:"matiere_nom"`
	TotalQuestions int    `json:"total_questions"`
}

// BattleJoinedResponse is returned when joining by code
type BattleJoinedResponse struct {
	Success  bool   `json:"success"`
	BattleID int    `json:"battle_id"`
	Category string `json:"matiere"`
}

// MatchmakingResponse is either matched or waiting
type MatchmakingResponse struct {
	Matched  bool   `json:"matched,omitempty"`
	Waiting  bool   `json:"waiting,omitempty"`
	BattleID int    `json:"battle_id"`
	Code     string `json:"code"`
}

// BattleResponse is the battle snapshot
type BattleResponse struct {
	ID           int     `json:"id"`
	Code         string  `json:"code"`
	Category     string  `json:"matiere"`
	Player1Name  string  `json:"player1_name"`
	Player2Name  *string `json:"player2_name"`
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	Status       string  `json:"status"`
	Player1Ready bool    `json:"player1_ready"`
	Player2Ready bool    `json:"player2_ready"`
}

// ToModel converts to model.Battle
func (b BattleResponse) ToModel() model.Battle {
	battle := model.Battle{
		ID:           model.BattleID(b.ID),
		Code:         model.BattleCode(b.Code),
		Category:     model.CategoryCode(b.Category),
		Player1Name:  b.Player1Name,
		Player1Score: b.Player1Score,
		Player2Score: b.Player2Score,
		Status:       model.BattleStatus(b.Status),
		Player1Ready: b.Player1Ready,
		Player2Ready: b.Player2Ready,
	}
	if b.Player2Name != nil {
		battle.Player2Name = *b.Player2Name
	}
	return battle
}
