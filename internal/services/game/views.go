package game

import (
	"time"

	"github.com/mcoot/quizgame/internal/model"
)

// HomeView is what the home screen shows for the selected category
type HomeView struct {
	Categories   []model.Category   `json:"categories"`
	Selected     model.CategoryCode `json:"selected"`
	Stats        model.Stats        `json:"stats"`
	HasSavedGame bool               `json:"has_saved_game"`
}

// QuestionView is a freshly loaded question. A new view carries no answer
// message and no hint result, so the previous question's feedback never leaks.
type QuestionView struct {
	Question  model.Question `json:"question"`
	HintCount int            `json:"hint_count"`
	Timed     bool           `json:"timed"`
}

// HintsAvailable reports whether the hint control should be offered
func (v QuestionView) HintsAvailable() bool {
	return v.HintCount > 0
}

// AnswerView is the feedback for an accept or reject decision
type AnswerView struct {
	Result  model.AnswerResult `json:"result"`
	Message string             `json:"message"`
	// AutoAdvance is non-zero when the next proposal loads on its own after the delay
	AutoAdvance time.Duration `json:"auto_advance,omitempty"`
}

// TimerView is one tick of the game timer
type TimerView struct {
	Remaining time.Duration `json:"remaining"`
	Low       bool          `json:"low"`
	Label     string        `json:"label"`
}

// EndView is the end-of-game screen
type EndView struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Rating         model.Rating `json:"rating"`
	Message        string       `json:"message"`
	HasRevision    bool         `json:"has_revision"`
	RevisionCount  int          `json:"revision_count"`
	TimedOut       bool         `json:"timed_out"`
}

func newEndView(score, total int, hasRevision bool, revisionCount int, timedOut bool) EndView {
	rating := model.RateScore(score, total)
	return EndView{
		Score:          score,
		TotalQuestions: total,
		Rating:         rating,
		Message:        rating.Message(),
		HasRevision:    hasRevision,
		RevisionCount:  revisionCount,
		TimedOut:       timedOut,
	}
}

// Observer receives events raised outside of a controller call
type Observer interface {
	TimerTicked(view TimerView)
	GameEnded(view EndView)
}

type nopObserver struct{}

func (nopObserver) TimerTicked(TimerView) {}
func (nopObserver) GameEnded(EndView)     {}
