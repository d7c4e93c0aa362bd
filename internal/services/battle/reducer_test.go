package battle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/quizgame/internal/model"
)

var t0 = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func waitingView() model.BattleView {
	return model.BattleView{
		Phase:       model.PhaseWaiting,
		ID:          1,
		Code:        "ABC123",
		Category:    "maths",
		Role:        model.RoleHost,
		Player1Name: "alice",
	}
}

func event(payload any) model.Event {
	return model.Event{Payload: payload}
}

func TestReduceIgnoresEventsWithoutBattle(t *testing.T) {
	view := model.BattleView{Phase: model.PhaseIdle}
	got := Reduce(view, event(model.PlayerJoinedPayload{Player2Name: "bob"}), t0)
	assert.Equal(t, view, got)
}

func TestReducePlayerJoined(t *testing.T) {
	got := Reduce(waitingView(), event(model.PlayerJoinedPayload{Player2Name: "bob"}), t0)
	assert.Equal(t, "bob", got.Player2Name)
}

func TestReducePlayerReady(t *testing.T) {
	view := waitingView()
	view.Player2Name = "bob"

	got := Reduce(view, event(model.PlayerReadyPayload{PlayerName: "bob"}), t0)
	assert.False(t, got.LocalReady)
	assert.False(t, got.BothReady)

	got = Reduce(got, event(model.PlayerReadyPayload{PlayerName: "alice", BothReady: true}), t0)
	assert.True(t, got.LocalReady)
	assert.True(t, got.BothReady)
}

func TestReduceGuestReady(t *testing.T) {
	view := waitingView()
	view.Role = model.RoleGuest
	view.Player2Name = "bob"

	got := Reduce(view, event(model.PlayerReadyPayload{PlayerName: "bob"}), t0)
	assert.True(t, got.LocalReady)
}

func TestReduceBattleStartAppliesOnce(t *testing.T) {
	got := Reduce(waitingView(), event(model.BattleStartPayload{QuestionsCount: 3}), t0)
	assert.Equal(t, model.PhasePlaying, got.Phase)
	assert.Equal(t, t0, got.StartedAt)
	assert.Equal(t, model.BattleDuration, got.Remaining)

	again := Reduce(got, event(model.BattleStartPayload{QuestionsCount: 3}), t0.Add(time.Minute))
	assert.Equal(t, t0, again.StartedAt)
}

func TestReduceScoresVerbatim(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	got := Reduce(view, event(model.ScoresUpdatePayload{Player1Score: 20, Player2Score: -5}), t0)
	assert.Equal(t, 20, got.Player1Score)
	assert.Equal(t, -5, got.Player2Score)
}

func TestReduceFinishedIsTerminal(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	finished := Reduce(view, event(model.BattleFinishedPayload{
		Player1Name:  "alice",
		Player2Name:  "bob",
		Player1Score: 30,
		Player2Score: 10,
		Winner:       "alice",
	}), t0)

	assert.Equal(t, model.PhaseFinished, finished.Phase)
	if assert.NotNil(t, finished.Result) {
		assert.Equal(t, "alice", finished.Result.Winner)
		assert.False(t, finished.Result.Tie())
	}

	tests := []struct {
		name    string
		payload any
	}{
		{"late scores", model.ScoresUpdatePayload{Player1Score: 0, Player2Score: 99}},
		{"second result", model.BattleFinishedPayload{Winner: "bob"}},
		{"restart", model.BattleStartPayload{}},
		{"joined", model.PlayerJoinedPayload{Player2Name: "carol"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(finished, event(tt.payload), t0)
			assert.Equal(t, finished, got)
		})
	}
}

func TestReduceTie(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	got := Reduce(view, event(model.BattleFinishedPayload{Winner: model.TieWinner}), t0)
	assert.True(t, got.Result.Tie())
}

func TestReduceEmotesExpireInArrivalOrder(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "fire", Emoji: "🔥"}), t0)
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "laugh", Emoji: "😂"}), t0.Add(2*time.Second))

	active := view.ActiveEmotes(t0.Add(2 * time.Second))
	if assert.Len(t, active, 2) {
		assert.Equal(t, "fire", active[0].EmoteID)
		assert.Equal(t, "laugh", active[1].EmoteID)
	}

	active = view.ActiveEmotes(t0.Add(3 * time.Second))
	if assert.Len(t, active, 1) {
		assert.Equal(t, "laugh", active[0].EmoteID)
	}

	// expired overlays are dropped on the next event
	view = Reduce(view, event(model.ScoresUpdatePayload{}), t0.Add(10*time.Second))
	assert.Empty(t, view.Emotes)
}

func TestReduceDoesNotShareEmoteSlice(t *testing.T) {
	view := Reduce(waitingView(), event(model.EmoteReceivedPayload{EmoteID: "fire"}), t0)
	a := Reduce(view, event(model.EmoteReceivedPayload{EmoteID: "a"}), t0)
	b := Reduce(view, event(model.EmoteReceivedPayload{EmoteID: "b"}), t0)

	assert.Equal(t, "a", a.Emotes[1].EmoteID)
	assert.Equal(t, "b", b.Emotes[1].EmoteID)
}

func TestReduceEmotesSameInstantAreAllNew(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "fire"}), t0)
	assert.Equal(t, 1, view.EmotesReceived)
	seen := view.EmotesReceived

	// two emotes delivered within the same clock reading share ExpiresAt
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "laugh"}), t0)
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "wave"}), t0)
	fresh := view.NewEmotes(seen)
	if assert.Len(t, fresh, 2) {
		assert.Equal(t, "laugh", fresh[0].EmoteID)
		assert.Equal(t, "wave", fresh[1].EmoteID)
	}
	assert.Equal(t, fresh[0].ExpiresAt, fresh[1].ExpiresAt)
	assert.Empty(t, view.NewEmotes(view.EmotesReceived))

	// the count survives expiry of the overlays themselves
	view = Reduce(view, event(model.ScoresUpdatePayload{}), t0.Add(10*time.Second))
	assert.Empty(t, view.Emotes)
	assert.Equal(t, 3, view.EmotesReceived)
	view = Reduce(view, event(model.EmoteReceivedPayload{Sender: "bob", EmoteID: "fire"}), t0.Add(10*time.Second))
	fresh = view.NewEmotes(3)
	if assert.Len(t, fresh, 1) {
		assert.Equal(t, "fire", fresh[0].EmoteID)
	}
}

func TestCountdown(t *testing.T) {
	view := Reduce(waitingView(), event(model.BattleStartPayload{}), t0)
	assert.Equal(t, 4*time.Minute, Countdown(view, t0.Add(time.Minute)))
	assert.Equal(t, time.Duration(0), Countdown(view, t0.Add(6*time.Minute)))
	assert.Equal(t, time.Duration(0), Countdown(waitingView(), t0))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, model.BattleCode("ABC123"), NormalizeCode("  abc123 "))
}
