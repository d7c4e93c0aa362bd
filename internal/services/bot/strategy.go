package bot

import "github.com/mcoot/quizgame/internal/model"

// Strategy decides whether to accept the proposed answer to a question
type Strategy interface {
	// Accept reports whether the proposed answer should be accepted
	Accept(q model.Question) bool
}

// AcceptStrategy accepts every proposed answer
type AcceptStrategy struct{}

func (AcceptStrategy) Accept(model.Question) bool { return true }

// RejectStrategy rejects every proposed answer, cycling through them all
type RejectStrategy struct{}

func (RejectStrategy) Accept(model.Question) bool { return false }
