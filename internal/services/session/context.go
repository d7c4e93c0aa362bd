package session

import (
	"log/slog"
	"sync"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/timer"
)

// Context is the client session shared by every controller: who is signed in,
// which category and battle are selected, and which screen is showing.
// Each recurring activity has one timer slot owned by the screen that uses it.
type Context struct {
	mu       sync.Mutex
	user     model.User
	category model.CategoryCode
	battleID model.BattleID
	screen   model.Screen
	logger   *slog.Logger

	GameTimer       *timer.Slot
	BattleCountdown *timer.Slot
	MatchmakingPoll *timer.Slot
}

// New creates a session on the auth screen
func New(clk clock.Clock, logger *slog.Logger) *Context {
	return &Context{
		screen:          model.ScreenAuth,
		logger:          logger.With(slog.String("component", "session")),
		GameTimer:       timer.NewSlot("game-timer", clk, logger),
		BattleCountdown: timer.NewSlot("battle-countdown", clk, logger),
		MatchmakingPoll: timer.NewSlot("matchmaking-poll", clk, logger),
	}
}

// User returns the signed-in user
func (c *Context) User() model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// SetUser records the signed-in user
func (c *Context) SetUser(u model.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// Category returns the selected category
func (c *Context) Category() model.CategoryCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

// SetCategory selects a category
func (c *Context) SetCategory(code model.CategoryCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = code
}

// BattleID returns the active battle, zero when none
func (c *Context) BattleID() model.BattleID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.battleID
}

// ClaimBattle makes id the active battle. Only one battle may be active at a time.
func (c *Context) ClaimBattle(id model.BattleID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.battleID != 0 && c.battleID != id {
		return model.ErrBattleInProgress
	}
	c.battleID = id
	return nil
}

// ReleaseBattle clears the active battle if it is id
func (c *Context) ReleaseBattle(id model.BattleID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.battleID == id {
		c.battleID = 0
	}
}

// Screen returns the current screen
func (c *Context) Screen() model.Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

// Transition moves to another screen, stopping the timer owned by the screen being left
func (c *Context) Transition(to model.Screen) {
	c.mu.Lock()
	from := c.screen
	c.screen = to
	c.mu.Unlock()

	if from == to {
		return
	}
	if slot := c.ownedSlot(from); slot != nil {
		slot.Stop()
	}
	c.logger.Debug("screen transition", slog.String("from", string(from)), slog.String("to", string(to)))
}

// Reset stops every timer and forgets the user, battle and category
func (c *Context) Reset() {
	c.GameTimer.Stop()
	c.BattleCountdown.Stop()
	c.MatchmakingPoll.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = model.User{}
	c.category = ""
	c.battleID = 0
	c.screen = model.ScreenAuth
}

func (c *Context) ownedSlot(screen model.Screen) *timer.Slot {
	switch screen {
	case model.ScreenGame:
		return c.GameTimer
	case model.ScreenBattle:
		return c.BattleCountdown
	case model.ScreenMatchmaking:
		return c.MatchmakingPoll
	default:
		return nil
	}
}
