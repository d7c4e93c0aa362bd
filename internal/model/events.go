package model

import "time"

// EventType identifies a battle channel event
type EventType string

const (
	// Pushed by the server
	EventPlayerJoined   EventType = "player_joined"
	EventPlayerReady    EventType = "player_ready"
	EventBattleStart    EventType = "battle_start"
	EventScoresUpdate   EventType = "scores_update"
	EventBattleFinished EventType = "battle_finished"
	EventEmoteReceived  EventType = "emote_received"

	// Emitted by the client
	EventJoinBattle EventType = "join_battle"
	EventReady      EventType = "ready"
	EventAnswer     EventType = "answer"
	EventBattleEnd  EventType = "battle_end"
	EventSendEmote  EventType = "send_emote"
)

// Event is a decoded push event. Payload holds one of the *Payload types below.
type Event struct {
	Type       EventType
	ReceivedAt time.Time
	Payload    any
}

// PlayerJoinedPayload announces the second player
type PlayerJoinedPayload struct {
	Player2Name string `json:"player2_name"`
}

// PlayerReadyPayload reports one player's readiness
type PlayerReadyPayload struct {
	PlayerName string `json:"player_name"`
	BothReady  bool   `json:"both_ready"`
}

// BattleStartPayload signals that both players are ready and play begins
type BattleStartPayload struct {
	QuestionsCount int    `json:"questions_count"`
	StartTime      string `json:"start_time"`
}

// ScoresUpdatePayload carries the authoritative scores
type ScoresUpdatePayload struct {
	Player1Score int `json:"player1_score"`
	Player2Score int `json:"player2_score"`
}

// BattleFinishedPayload carries the server-declared result
type BattleFinishedPayload struct {
	Player1Name  string `json:"player1_name"`
	Player2Name  string `json:"player2_name"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
	Winner       string `json:"winner"`
}

// EmoteReceivedPayload is an emote sent by the opponent
type EmoteReceivedPayload struct {
	Sender  string `json:"sender"`
	EmoteID string `json:"emote_id"`
	Emoji   string `json:"emoji"`
	Name    string `json:"nom"`
}

// JoinBattleMessage subscribes the connection to a battle room
type JoinBattleMessage struct {
	BattleID BattleID `json:"battle_id"`
}

// ReadyMessage declares the local player ready
type ReadyMessage struct {
	BattleID BattleID `json:"battle_id"`
}

// AnswerMessage mirrors a local answer outcome to the opponent
type AnswerMessage struct {
	BattleID  BattleID `json:"battle_id"`
	IsCorrect bool     `json:"is_correct"`
	Points    int      `json:"points"`
}

// BattleEndMessage asks the server to settle the battle
type BattleEndMessage struct {
	BattleID BattleID `json:"battle_id"`
}

// SendEmoteMessage sends an owned emote to the opponent
type SendEmoteMessage struct {
	BattleID BattleID `json:"battle_id"`
	EmoteID  string   `json:"emote_id"`
}
