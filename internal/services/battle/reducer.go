package battle

import (
	"strings"
	"time"

	"github.com/mcoot/quizgame/internal/model"
)

// Reduce applies one push event to the battle view. It is the only place
// pushed events change battle state. A finished battle is terminal and a
// battle starts at most once, so replayed or late events are harmless.
func Reduce(view model.BattleView, ev model.Event, now time.Time) model.BattleView {
	if view.Phase == model.PhaseIdle || view.Phase == "" {
		return view
	}

	next := view
	next.Emotes = view.ActiveEmotes(now)

	switch p := ev.Payload.(type) {
	case model.PlayerJoinedPayload:
		if view.Phase == model.PhaseWaiting && p.Player2Name != "" {
			next.Player2Name = p.Player2Name
		}

	case model.PlayerReadyPayload:
		if view.Phase != model.PhaseWaiting {
			break
		}
		if p.PlayerName != "" && p.PlayerName == localName(view) {
			next.LocalReady = true
		}
		if p.BothReady {
			next.BothReady = true
		}

	case model.BattleStartPayload:
		if view.Phase != model.PhaseWaiting {
			break
		}
		next.Phase = model.PhasePlaying
		next.LocalReady = true
		next.BothReady = true
		next.StartedAt = now
		next.Remaining = model.BattleDuration

	case model.ScoresUpdatePayload:
		if view.Phase == model.PhaseFinished {
			break
		}
		next.Player1Score = p.Player1Score
		next.Player2Score = p.Player2Score

	case model.BattleFinishedPayload:
		if view.Phase == model.PhaseFinished {
			break
		}
		result := model.BattleResult(p)
		next.Phase = model.PhaseFinished
		next.Result = &result
		next.Player1Score = p.Player1Score
		next.Player2Score = p.Player2Score
		next.Remaining = 0

	case model.EmoteReceivedPayload:
		next.Emotes = append(next.Emotes, model.EmoteOverlay{
			Sender:    p.Sender,
			EmoteID:   p.EmoteID,
			Emoji:     p.Emoji,
			Name:      p.Name,
			ExpiresAt: now.Add(model.EmoteDisplayTime),
		})
		next.EmotesReceived++
	}

	return next
}

// Countdown returns the time left in a running battle at now
func Countdown(view model.BattleView, now time.Time) time.Duration {
	if view.Phase != model.PhasePlaying {
		return view.Remaining
	}
	return max(0, model.BattleDuration-now.Sub(view.StartedAt))
}

// NormalizeCode trims and uppercases a join code as typed by the user
func NormalizeCode(raw string) model.BattleCode {
	return model.BattleCode(strings.ToUpper(strings.TrimSpace(raw)))
}

func localName(view model.BattleView) string {
	if view.Role == model.RoleGuest {
		return view.Player2Name
	}
	return view.Player1Name
}
