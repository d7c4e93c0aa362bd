package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/game"
)

// MaxBotIterations is a safety limit for the answering loop. Timed sessions
// recycle questions, so only the clock or this limit ends them.
const MaxBotIterations = 1000

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionAccept       BotActionType = "accept"
	ActionReject       BotActionType = "reject"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction is a single decision taken by the bot
type BotAction struct {
	Type     BotActionType `json:"type"`
	Question string        `json:"question"`
	Proposed string        `json:"proposed,omitempty"`
	Points   int           `json:"points"`
	Score    int           `json:"score"`
}

// GamePlayer is a single-player session the bot can drive
type GamePlayer interface {
	LoadQuestion(ctx context.Context) (game.QuestionView, *game.EndView, error)
	Answer(ctx context.Context, accept bool) (game.AnswerView, error)
}

// BattlePlayer is a running battle the bot can drive
type BattlePlayer interface {
	LoadQuestion(ctx context.Context) (*model.Question, error)
	Answer(ctx context.Context, accept bool) (model.AnswerResult, error)
}

// Service plays sessions unattended with a named strategy
type Service struct {
	strategies map[string]Strategy
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		strategies: strategies,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// Strategy looks up a strategy by name
func (s *Service) Strategy(name string) (Strategy, error) {
	strategy, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown bot strategy: %s", name)
	}
	return strategy, nil
}

// PlayGame answers questions until the session ends and returns every action taken
func (s *Service) PlayGame(ctx context.Context, player GamePlayer, strategyName string) ([]BotAction, *game.EndView, error) {
	strategy, err := s.Strategy(strategyName)
	if err != nil {
		return nil, nil, err
	}

	var actions []BotAction
	for range MaxBotIterations {
		if err := ctx.Err(); err != nil {
			return actions, nil, err
		}

		view, end, err := player.LoadQuestion(ctx)
		if err != nil {
			return actions, nil, err
		}
		if end != nil {
			actions = append(actions, BotAction{Type: ActionGameComplete, Score: end.Score})
			s.logger.Info("bot finished game", slog.Int("score", end.Score), slog.Int("actions", len(actions)))
			return actions, end, nil
		}

		accept := strategy.Accept(view.Question)
		result, err := player.Answer(ctx, accept)
		if err != nil {
			return actions, nil, err
		}
		actions = append(actions, action(view.Question, accept, result.Result.Points, result.Result.Score))
	}

	s.logger.Warn("bot reached iteration limit", slog.Int("limit", MaxBotIterations))
	return actions, nil, nil
}

// PlayBattle answers battle questions until they run out or the battle ends
func (s *Service) PlayBattle(ctx context.Context, player BattlePlayer, strategyName string) ([]BotAction, error) {
	strategy, err := s.Strategy(strategyName)
	if err != nil {
		return nil, err
	}

	var actions []BotAction
	for range MaxBotIterations {
		if err := ctx.Err(); err != nil {
			return actions, err
		}

		q, err := player.LoadQuestion(ctx)
		if errors.Is(err, model.ErrNoActiveBattle) {
			break
		}
		if err != nil {
			return actions, err
		}
		if q == nil {
			break
		}

		accept := strategy.Accept(*q)
		result, err := player.Answer(ctx, accept)
		if errors.Is(err, model.ErrNoActiveBattle) {
			break
		}
		if err != nil {
			return actions, err
		}
		actions = append(actions, action(*q, accept, result.Points, result.Score))
	}

	s.logger.Info("bot stopped playing battle", slog.Int("actions", len(actions)))
	return actions, nil
}

func action(q model.Question, accept bool, points, score int) BotAction {
	t := ActionReject
	if accept {
		t = ActionAccept
	}
	return BotAction{Type: t, Question: q.Text, Proposed: q.ProposedAnswer, Points: points, Score: score}
}
