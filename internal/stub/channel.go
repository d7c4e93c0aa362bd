package stub

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/realtime"
)

type outbound struct {
	battle  model.BattleID
	event   model.EventType
	payload any
	exclude *Peer
}

// handleFrame applies one client frame. Frames from unknown users or for
// unknown battles are ignored, like the real server does.
func (b *Backend) handleFrame(p *Peer, frame realtime.Frame) {
	b.mu.Lock()
	b.recorded = append(b.recorded, RecordedEvent{User: p.user, Event: frame.Event, Data: frame.Data})
	out := b.applyFrame(p, frame)
	b.mu.Unlock()

	for _, o := range out {
		if err := b.hub.Broadcast(o.battle, o.event, o.payload, o.exclude); err != nil {
			b.logger.Error("broadcast failed", slog.String("error", err.Error()))
		}
	}
}

func (b *Backend) applyFrame(p *Peer, frame realtime.Frame) []outbound {
	var msg struct {
		BattleID  model.BattleID `json:"battle_id"`
		IsCorrect bool           `json:"is_correct"`
		Points    int            `json:"points"`
		EmoteID   string         `json:"emote_id"`
	}
	if err := json.Unmarshal(frame.Data, &msg); err != nil || msg.BattleID == 0 {
		return nil
	}

	if frame.Event == model.EventJoinBattle {
		b.hub.Join(p, msg.BattleID)
		return nil
	}

	if p.user == "" {
		return nil
	}
	bt, ok := b.battles[msg.BattleID]
	if !ok {
		return nil
	}

	switch frame.Event {
	case model.EventReady:
		return b.onReady(p, bt)
	case model.EventAnswer:
		switch p.user {
		case bt.player1:
			bt.p1Score += msg.Points
		case bt.player2:
			bt.p2Score += msg.Points
		}
		return []outbound{{battle: bt.id, event: model.EventScoresUpdate, payload: model.ScoresUpdatePayload{
			Player1Score: bt.p1Score,
			Player2Score: bt.p2Score,
		}}}
	case model.EventBattleEnd:
		return b.onBattleEnd(bt)
	case model.EventSendEmote:
		return b.onEmote(p, bt, msg.EmoteID)
	}
	return nil
}

func (b *Backend) onReady(p *Peer, bt *battle) []outbound {
	switch p.user {
	case bt.player1:
		bt.p1Ready = true
	case bt.player2:
		bt.p2Ready = true
	}

	out := []outbound{{battle: bt.id, event: model.EventPlayerReady, payload: model.PlayerReadyPayload{
		PlayerName: p.user,
		BothReady:  bt.p1Ready && bt.p2Ready,
	}}}

	if bt.p1Ready && bt.p2Ready && bt.status == model.BattleStatusWaiting {
		bt.status = model.BattleStatusPlaying
		bt.start = b.clock.Now()
		out = append(out, outbound{battle: bt.id, event: model.EventBattleStart, payload: model.BattleStartPayload{
			QuestionsCount: len(b.questionsFor(bt.subject)),
			StartTime:      bt.start.UTC().Format("2006-01-02T15:04:05.000000"),
		}})
	}
	return out
}

// onBattleEnd settles the battle once the duration has elapsed. Earlier requests are ignored.
func (b *Backend) onBattleEnd(bt *battle) []outbound {
	if bt.start.IsZero() || b.clock.Now().Sub(bt.start) < b.opts.BattleDuration {
		return nil
	}

	winner := model.TieWinner
	switch {
	case bt.p1Score > bt.p2Score:
		winner = bt.player1
	case bt.p2Score > bt.p1Score:
		winner = bt.player2
	}

	if !bt.finished {
		bt.finished = true
		bt.status = model.BattleStatusFinished
		b.settleBattle(bt, winner)
	}

	player2 := bt.player2
	if player2 == "" {
		player2 = "Aucun"
	}
	return []outbound{{battle: bt.id, event: model.EventBattleFinished, payload: model.BattleFinishedPayload{
		Player1Name:  bt.player1,
		Player2Name:  player2,
		Player1Score: bt.p1Score,
		Player2Score: bt.p2Score,
		Winner:       winner,
	}}}
}

func (b *Backend) settleBattle(bt *battle, winner string) {
	p1, p2 := b.users[bt.player1], b.users[bt.player2]
	if winner != model.TieWinner && p1 != nil && p2 != nil {
		if winner == bt.player1 {
			p1.addScore(battleStake)
			p2.addScore(-battleStake)
		} else {
			p2.addScore(battleStake)
			p1.addScore(-battleStake)
		}
	}

	now := b.clock.Now()
	durationSeconds := int(model.BattleDuration.Seconds())
	if p1 != nil {
		p1.addScore(bt.p1Score)
		b.saves = append(b.saves, &savedGame{user: p1.name, subject: bt.subject, completed: true, duration: durationSeconds, score: bt.p1Score, createdAt: now})
	}
	if p2 != nil {
		p2.addScore(bt.p2Score)
		b.saves = append(b.saves, &savedGame{user: p2.name, subject: bt.subject, completed: true, duration: durationSeconds, score: bt.p2Score, createdAt: now})
	}
}

func (b *Backend) onEmote(p *Peer, bt *battle, emoteID string) []outbound {
	u := b.users[p.user]
	if u == nil || !u.ownsEmote(emoteID) || !bt.has(p.user) {
		return nil
	}
	emote, ok := findCosmetic(b.emotes, emoteID)
	if !ok {
		return nil
	}
	return []outbound{{battle: bt.id, event: model.EventEmoteReceived, exclude: p, payload: model.EmoteReceivedPayload{
		Sender:  p.user,
		EmoteID: emote.id,
		Emoji:   emote.emoji,
		Name:    emote.name,
	}}}
}
