package model

import "time"

// BattleID identifies a battle on the server
type BattleID int

// BattleCode is the short join code shared between players
type BattleCode string

// Battle constants
const (
	BattleCodeLength    = 6
	BattleDuration      = 5 * time.Minute
	BattleTimerMinutes  = 5
	EmoteDisplayTime    = 3 * time.Second
	MatchmakingInterval = 2 * time.Second
	// TieWinner is the winner label the server sends on a draw
	TieWinner = "Égalité"
)

// BattleStatus is the server-side battle status
type BattleStatus string

const (
	BattleStatusWaiting  BattleStatus = "waiting"
	BattleStatusPlaying  BattleStatus = "playing"
	BattleStatusFinished BattleStatus = "finished"
)

// Battle is the server's view of a battle
type Battle struct {
	ID           BattleID     `json:"id"`
	Code         BattleCode   `json:"code"`
	Category     CategoryCode `json:"category"`
	Player1Name  string       `json:"player1_name"`
	Player2Name  string       `json:"player2_name,omitempty"`
	Player1Score int          `json:"player1_score"`
	Player2Score int          `json:"player2_score"`
	Status       BattleStatus `json:"status"`
	Player1Ready bool         `json:"player1_ready"`
	Player2Ready bool         `json:"player2_ready"`
}

// Matched reports whether a second player is present and both are ready
func (b Battle) Matched() bool {
	return b.Player2Name != "" && b.Player1Ready && b.Player2Ready
}

// CreatedBattle is returned when a private battle is created
type CreatedBattle struct {
	ID             BattleID     `json:"id"`
	Code           BattleCode   `json:"code"`
	Category       CategoryCode `json:"category"`
	CategoryName   string       `json:"category_name"`
	TotalQuestions int          `json:"total_questions"`
}

// JoinedBattle is returned when joining by code
type JoinedBattle struct {
	ID       BattleID     `json:"id"`
	Category CategoryCode `json:"category"`
}

// MatchmakingTicket is the result of entering the matchmaking queue
type MatchmakingTicket struct {
	Matched  bool       `json:"matched"`
	BattleID BattleID   `json:"battle_id"`
	Code     BattleCode `json:"code"`
}

// BattleRole is the local player's seat in the battle
type BattleRole string

const (
	RoleHost  BattleRole = "player1"
	RoleGuest BattleRole = "player2"
)

// BattlePhase is the client-side battle lifecycle
type BattlePhase string

const (
	PhaseIdle     BattlePhase = "idle"
	PhaseWaiting  BattlePhase = "waiting"
	PhasePlaying  BattlePhase = "playing"
	PhaseFinished BattlePhase = "finished"
)

// BattleResult is the server-declared outcome
type BattleResult struct {
	Player1Name  string `json:"player1_name"`
	Player2Name  string `json:"player2_name"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
	Winner       string `json:"winner"`
}

// Tie reports whether the battle ended in a draw
func (r BattleResult) Tie() bool {
	return r.Winner == TieWinner
}

// EmoteOverlay is a received emote shown until ExpiresAt
type EmoteOverlay struct {
	Sender    string    `json:"sender"`
	EmoteID   string    `json:"emote_id"`
	Emoji     string    `json:"emoji"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BattleView is everything the battle screens render
type BattleView struct {
	Phase        BattlePhase    `json:"phase"`
	ID           BattleID       `json:"id"`
	Code         BattleCode     `json:"code"`
	Category     CategoryCode   `json:"category"`
	Role         BattleRole     `json:"role"`
	Player1Name  string         `json:"player1_name"`
	Player2Name  string         `json:"player2_name,omitempty"`
	Player1Score int            `json:"player1_score"`
	Player2Score int            `json:"player2_score"`
	LocalReady   bool           `json:"local_ready"`
	BothReady    bool           `json:"both_ready"`
	StartedAt    time.Time      `json:"started_at,omitempty"`
	Remaining    time.Duration  `json:"remaining"`
	Result       *BattleResult  `json:"result,omitempty"`
	Emotes       []EmoteOverlay `json:"emotes,omitempty"`
	// EmotesReceived counts every emote this battle has delivered, expired or not
	EmotesReceived int `json:"emotes_received"`
}

// NewEmotes returns the still-visible overlays that arrived after the first
// seen emotes of the battle, oldest first
func (v BattleView) NewEmotes(seen int) []EmoteOverlay {
	fresh := v.EmotesReceived - seen
	if fresh <= 0 {
		return nil
	}
	if fresh > len(v.Emotes) {
		fresh = len(v.Emotes)
	}
	return v.Emotes[len(v.Emotes)-fresh:]
}

// ActiveEmotes returns the overlays still visible at now, in arrival order
func (v BattleView) ActiveEmotes(now time.Time) []EmoteOverlay {
	var active []EmoteOverlay
	for _, e := range v.Emotes {
		if now.Before(e.ExpiresAt) {
			active = append(active, e)
		}
	}
	return active
}
