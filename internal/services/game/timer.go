package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/mcoot/quizgame/internal/model"
)

const timerInterval = time.Second

// tick polls the server clock once. Returning false releases the timer slot.
func (c *Controller) tick(ctx context.Context) bool {
	remaining, err := c.client.TimeRemaining(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("failed to read time remaining", slog.String("error", err.Error()))
		}
		return true
	}
	if !remaining.Enabled {
		return false
	}

	view := TimerView{
		Remaining: remaining.Remaining(),
		Low:       remaining.Remaining() < model.LowTimeThreshold,
		Label:     model.FormatClock(remaining.RemainingSeconds),
	}

	c.mu.Lock()
	observer := c.observer
	c.mu.Unlock()
	observer.TimerTicked(view)

	if remaining.Expired || remaining.RemainingSeconds <= 0 {
		// leaving the game screen cancels ctx, so the wrap-up runs detached from it
		c.expire(context.WithoutCancel(ctx))
		return false
	}
	return true
}

func (c *Controller) expire(ctx context.Context) {
	if !c.isActive() {
		return
	}

	c.prompter.Alert("⏰ Time's up!")

	score := c.Score()
	state, err := c.client.Question(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch final score", slog.String("error", err.Error()))
	} else {
		score = state.Score
	}

	c.mu.Lock()
	total := c.info.TotalQuestions
	c.mu.Unlock()
	c.finish(ctx, newEndView(score, total, false, 0, true))
}
