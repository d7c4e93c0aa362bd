package matchmaking

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/quizgame/internal/middleware"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/battle"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/ui"
)

// Client is the part of the API client matchmaking needs
type Client interface {
	EnterMatchmaking(ctx context.Context, category model.CategoryCode) (model.MatchmakingTicket, error)
	Battle(ctx context.Context, id model.BattleID) (model.Battle, error)
	CancelBattle(ctx context.Context, id model.BattleID) error
}

// Battles hands matched battles over to the battle controller
type Battles interface {
	Host(ctx context.Context, id model.BattleID, code model.BattleCode, category model.CategoryCode) (model.BattleView, error)
	EnterMatched(ctx context.Context, id model.BattleID) (model.BattleView, error)
	MarkMatched(ctx context.Context) error
	Subscribe(o battle.Observer) func()
	Leave()
}

// Ensure the battle controller can take matched battles
var _ Battles = (*battle.Controller)(nil)

// Service queues the player for a public battle. A waiting player learns about
// the opponent from the poll or from the push, whichever comes first.
type Service struct {
	client   Client
	battles  Battles
	session  *session.Context
	prompter ui.Prompter
	logger   *slog.Logger

	mu          sync.Mutex
	ticket      model.MatchmakingTicket
	searching   bool
	matched     chan struct{}
	unsubscribe func()
}

// New creates a new matchmaking Service
func New(client Client, battles Battles, sess *session.Context, prompter ui.Prompter, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		battles:  battles,
		session:  sess,
		prompter: prompter,
		logger:   logger.With(slog.String("component", "matchmaking")),
	}
}

// Enqueue enters the queue for a category. A waiting ticket keeps polling
// until an opponent arrives or Cancel is called.
func (s *Service) Enqueue(ctx context.Context, category model.CategoryCode) (model.MatchmakingTicket, error) {
	if category == "" {
		category = s.session.Category()
	}
	if category == "" {
		return model.MatchmakingTicket{}, model.ErrNoCategory
	}

	s.mu.Lock()
	busy := s.searching
	s.mu.Unlock()
	if busy || s.session.BattleID() != 0 {
		return model.MatchmakingTicket{}, model.ErrBattleInProgress
	}

	ticket, err := s.client.EnterMatchmaking(ctx, category)
	if err != nil {
		s.logger.Error("failed to enter matchmaking", slog.String("category", string(category)), slog.String("error", err.Error()))
		return model.MatchmakingTicket{}, err
	}

	matched := make(chan struct{})
	s.mu.Lock()
	s.ticket = ticket
	s.matched = matched
	s.mu.Unlock()

	if ticket.Matched {
		if _, err := s.battles.EnterMatched(ctx, ticket.BattleID); err != nil {
			return model.MatchmakingTicket{}, err
		}
		close(matched)
		s.logger.Info("matched immediately", slog.Int("battle_id", int(ticket.BattleID)))
		return ticket, nil
	}

	if _, err := s.battles.Host(ctx, ticket.BattleID, ticket.Code, category); err != nil {
		s.cancelQuietly(ctx, ticket.BattleID)
		return model.MatchmakingTicket{}, err
	}

	s.mu.Lock()
	s.searching = true
	s.mu.Unlock()

	s.session.Transition(model.ScreenMatchmaking)
	s.session.MatchmakingPoll.Start(ctx, model.MatchmakingInterval, false, s.poll)

	unsubscribe := s.battles.Subscribe(battle.ObserverFunc(func(view model.BattleView) {
		if view.ID == ticket.BattleID && view.Phase == model.PhaseWaiting && view.Player2Name != "" {
			middleware.Go(s.logger, "matchmaking-push", func() {
				s.confirm(context.WithoutCancel(ctx), "push")
			})
		}
	}))
	s.mu.Lock()
	if s.searching {
		s.unsubscribe, unsubscribe = unsubscribe, nil
	}
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}

	s.logger.Info("waiting for an opponent", slog.Int("battle_id", int(ticket.BattleID)))
	return ticket, nil
}

// Wait blocks until the current ticket is matched
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	matched := s.matched
	s.mu.Unlock()
	if matched == nil {
		return model.ErrNotMatchmaking
	}

	select {
	case <-matched:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Searching reports whether a ticket is waiting for an opponent
func (s *Service) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Cancel leaves the queue. Failing to withdraw the battle on the server is only logged.
func (s *Service) Cancel(ctx context.Context) error {
	s.mu.Lock()
	if !s.searching {
		s.mu.Unlock()
		return model.ErrNotMatchmaking
	}
	s.searching = false
	id := s.ticket.BattleID
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	s.session.MatchmakingPoll.Stop()
	if unsubscribe != nil {
		unsubscribe()
	}
	s.cancelQuietly(ctx, id)
	s.battles.Leave()
	s.logger.Info("left matchmaking", slog.Int("battle_id", int(id)))
	return nil
}

func (s *Service) poll(ctx context.Context) bool {
	s.mu.Lock()
	id, searching := s.ticket.BattleID, s.searching
	s.mu.Unlock()
	if !searching {
		return false
	}

	b, err := s.client.Battle(ctx, id)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("matchmaking poll failed", slog.Int("battle_id", int(id)), slog.String("error", err.Error()))
		}
		return true
	}
	if !b.Matched() {
		return true
	}

	// leaving the matchmaking screen cancels ctx, so the hand-over runs detached from it
	s.confirm(context.WithoutCancel(ctx), "poll")
	return false
}

// confirm hands the battle over exactly once, whichever source saw the match first
func (s *Service) confirm(ctx context.Context, source string) {
	s.mu.Lock()
	if !s.searching {
		s.mu.Unlock()
		return
	}
	s.searching = false
	id := s.ticket.BattleID
	matched := s.matched
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	s.session.Transition(model.ScreenBattleLobby)

	if err := s.battles.MarkMatched(ctx); err != nil {
		s.logger.Error("failed to enter matched battle", slog.Int("battle_id", int(id)), slog.String("error", err.Error()))
		s.prompter.Alert("Could not enter the battle")
	}
	close(matched)
	s.logger.Info("opponent found", slog.Int("battle_id", int(id)), slog.String("source", source))
}

func (s *Service) cancelQuietly(ctx context.Context, id model.BattleID) {
	if err := s.client.CancelBattle(ctx, id); err != nil {
		s.logger.Warn("failed to cancel matchmaking battle", slog.Int("battle_id", int(id)), slog.String("error", err.Error()))
	}
}
