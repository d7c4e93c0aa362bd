package bot

import (
	"github.com/mcoot/quizgame/internal/dependencies/random"
	"github.com/mcoot/quizgame/internal/model"
)

// RandomStrategy accepts a proposed answer with probability 1/n, where n is the
// number of answers still on offer, so the last remaining answer is always accepted
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Accept picks uniformly among the remaining answers
func (s *RandomStrategy) Accept(q model.Question) bool {
	if q.RemainingAnswers <= 1 {
		return true
	}
	return s.random.Intn(q.RemainingAnswers) == 0
}

// DefaultStrategies returns every built-in strategy keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		model.BotStrategyRandom: NewRandomStrategy(rnd),
		model.BotStrategyAccept: AcceptStrategy{},
		model.BotStrategyReject: RejectStrategy{},
	}
}
