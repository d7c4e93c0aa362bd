package model

import (
	"fmt"
	"time"
)

// Screen is the screen currently presented to the user
type Screen string

const (
	ScreenAuth         Screen = "auth"
	ScreenHome         Screen = "home"
	ScreenGame         Screen = "game"
	ScreenEnd          Screen = "end"
	ScreenBattleLobby  Screen = "battle_lobby"
	ScreenBattle       Screen = "battle"
	ScreenBattleResult Screen = "battle_result"
	ScreenMatchmaking  Screen = "matchmaking"
	ScreenShop         Screen = "shop"
)

// GameMode selects which questions a single-player session draws from
type GameMode string

const (
	ModeSingle           GameMode = "single"
	ModeMixedCategory    GameMode = "mixed_category"
	ModeMixedAll         GameMode = "mixed_all"
	ModeRevisionCategory GameMode = "revision_category"
)

// ValidGameModes returns all modes accepted by the server
func ValidGameModes() []GameMode {
	return []GameMode{ModeSingle, ModeMixedCategory, ModeMixedAll, ModeRevisionCategory}
}

// Game timing constants
const (
	PointsPerQuestion = 10
	LowTimeThreshold  = 60 * time.Second
	AutoAdvanceDelay  = 1500 * time.Millisecond
)

// StartOptions configures a new single-player session
type StartOptions struct {
	Category     CategoryCode
	TimerMinutes int
	Mode         GameMode
	// Group is the category group mixed by ModeMixedCategory
	Group string
	// RevisionGroup is the category group revised by ModeRevisionCategory
	RevisionGroup string
}

// GameInfo describes a session after start or restore
type GameInfo struct {
	TotalQuestions int          `json:"total_questions"`
	CurrentIndex   int          `json:"current_index"`
	Score          int          `json:"score"`
	Category       CategoryCode `json:"category"`
	CategoryName   string       `json:"category_name"`
	CategoryEmoji  string       `json:"category_emoji"`
	TimerMinutes   int          `json:"timer_minutes"`
}

// TimerEnabled reports whether the session is timed
func (g GameInfo) TimerEnabled() bool {
	return g.TimerMinutes > 0
}

// Question is the current question with one proposed answer
type Question struct {
	Text             string `json:"text"`
	ProposedAnswer   string `json:"proposed_answer"`
	Number           int    `json:"number"`
	Total            int    `json:"total"`
	Score            int    `json:"score"`
	RemainingAnswers int    `json:"remaining_answers"`
	SourceCategory   string `json:"source_category,omitempty"`
	SourceName       string `json:"source_name,omitempty"`
	SourceEmoji      string `json:"source_emoji,omitempty"`
}

// Counter returns the "n / total" progress label
func (q Question) Counter() string {
	return fmt.Sprintf("%d / %d", q.Number, q.Total)
}

// QuestionState is the server's answer to a question fetch
type QuestionState struct {
	Finished      bool      `json:"finished"`
	Score         int       `json:"score"`
	HasRevision   bool      `json:"has_revision"`
	RevisionCount int       `json:"revision_count"`
	Question      *Question `json:"question,omitempty"`
}

// AnswerResult is the server's verdict on an accept/reject decision
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	Points        int    `json:"points"`
	Message       string `json:"message"`
	CorrectAnswer string `json:"correct_answer"`
	NextQuestion  bool   `json:"next_question"`
	Score         int    `json:"score"`
}

// TimeRemaining is the server-computed timer state
type TimeRemaining struct {
	Enabled          bool `json:"enabled"`
	RemainingSeconds int  `json:"remaining_seconds"`
	Expired          bool `json:"expired"`
}

// Remaining returns the remaining time as a duration
func (t TimeRemaining) Remaining() time.Duration {
	return time.Duration(t.RemainingSeconds) * time.Second
}

// HintResult reveals whether the current proposed answer is correct
type HintResult struct {
	Correct        bool   `json:"correct"`
	HintsRemaining int    `json:"hints_remaining"`
	Message        string `json:"message"`
}

// Rating grades a final score against the maximum reachable score
type Rating string

const (
	RatingPerfect   Rating = "perfect"
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingStudy     Rating = "study"
)

// RateScore maps a final score onto a rating tier
func RateScore(score, totalQuestions int) Rating {
	maxScore := totalQuestions * PointsPerQuestion
	switch {
	case score == maxScore:
		return RatingPerfect
	case float64(score) >= float64(maxScore)*0.7:
		return RatingExcellent
	case float64(score) >= float64(maxScore)*0.4:
		return RatingGood
	case score >= 0:
		return RatingFair
	default:
		return RatingStudy
	}
}

// Message returns the end-screen message for the rating
func (r Rating) Message() string {
	switch r {
	case RatingPerfect:
		return "Perfect! Every question answered correctly!"
	case RatingExcellent:
		return "Excellent! Great score!"
	case RatingGood:
		return "Well played! Keep improving!"
	case RatingFair:
		return "Not bad! Keep studying!"
	default:
		return "Keep studying, you will do better next time!"
	}
}

// FormatClock renders seconds as mm:ss
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
