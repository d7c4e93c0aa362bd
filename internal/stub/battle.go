package stub

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

func (b *Backend) newBattle(subject, player1 string, public bool) *battle {
	bt := &battle{
		id:      b.nextID,
		code:    b.battleCode(),
		subject: subject,
		public:  public,
		player1: player1,
		status:  model.BattleStatusWaiting,
	}
	b.nextID++
	b.battles[bt.id] = bt
	return bt
}

func (b *Backend) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subj, ok := b.subject(req.Category)
	if !ok {
		badRequest(w, "Matière invalide")
		return
	}
	bt := b.newBattle(subj.code, currentUser(r), false)
	b.logger.Info("battle created", slog.Int("battle_id", int(bt.id)), slog.String("code", string(bt.code)))

	response.OK(w, response.BattleCreatedResponse{
		Success:        true,
		Code:           string(bt.code),
		BattleID:       int(bt.id),
		Category:       subj.code,
		CategoryName:   subj.name,
		TotalQuestions: len(subj.questions),
	})
}

func (b *Backend) handleJoinBattle(w http.ResponseWriter, r *http.Request) {
	code := model.BattleCode(strings.ToUpper(mux.Vars(r)["code"]))
	username := currentUser(r)

	b.mu.Lock()
	var bt *battle
	for _, candidate := range b.battles {
		if candidate.code == code {
			bt = candidate
			break
		}
	}
	switch {
	case bt == nil:
		b.mu.Unlock()
		apierr.WriteError(w, http.StatusNotFound, "Code de battle invalide")
		return
	case bt.status != model.BattleStatusWaiting:
		b.mu.Unlock()
		badRequest(w, "Cette battle a déjà commencé")
		return
	case bt.player1 == username:
		b.mu.Unlock()
		badRequest(w, "Vous ne pouvez pas rejoindre votre propre battle")
		return
	case bt.player2 != "":
		b.mu.Unlock()
		badRequest(w, "Cette battle est complète")
		return
	}
	bt.player2 = username
	id, subject := bt.id, bt.subject
	b.mu.Unlock()

	b.announceJoin(id, username)
	response.OK(w, response.BattleJoinedResponse{Success: true, BattleID: int(id), Category: subject})
}

func (b *Backend) handleMatchmaking(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}
	username := currentUser(r)

	b.mu.Lock()
	if _, ok := b.subject(req.Category); !ok {
		b.mu.Unlock()
		badRequest(w, "Matière invalide")
		return
	}

	var match *battle
	for id := model.BattleID(1); id < b.nextID; id++ {
		candidate, ok := b.battles[id]
		if !ok {
			continue
		}
		if candidate.public && candidate.subject == req.Category && candidate.status == model.BattleStatusWaiting &&
			candidate.player2 == "" && candidate.player1 != username {
			match = candidate
			break
		}
	}

	if match == nil {
		bt := b.newBattle(req.Category, username, true)
		id, code := bt.id, bt.code
		b.mu.Unlock()
		response.OK(w, response.MatchmakingResponse{Waiting: true, BattleID: int(id), Code: string(code)})
		return
	}

	match.player2 = username
	match.p1Ready = true
	match.p2Ready = true
	id, code := match.id, match.code
	b.mu.Unlock()

	b.announceJoin(id, username)
	response.OK(w, response.MatchmakingResponse{Matched: true, BattleID: int(id), Code: string(code)})
}

func (b *Backend) announceJoin(id model.BattleID, player2 string) {
	if err := b.hub.Broadcast(id, model.EventPlayerJoined, model.PlayerJoinedPayload{Player2Name: player2}, nil); err != nil {
		b.logger.Error("broadcast failed", slog.String("error", err.Error()))
	}
}

func (b *Backend) handleCancelBattle(w http.ResponseWriter, r *http.Request) {
	id, err := battleID(r)
	if err != nil {
		badRequest(w, "Identifiant invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bt, ok := b.battles[id]
	if !ok {
		apierr.WriteError(w, http.StatusNotFound, "Battle introuvable")
		return
	}
	if bt.player1 != currentUser(r) || bt.player2 != "" {
		apierr.WriteError(w, http.StatusForbidden, "Non autorisé")
		return
	}
	delete(b.battles, id)
	response.Done(w, "")
}

func (b *Backend) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	id, err := battleID(r)
	if err != nil {
		badRequest(w, "Identifiant invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bt, ok := b.battles[id]
	if !ok {
		apierr.WriteError(w, http.StatusNotFound, "Battle introuvable")
		return
	}
	if !bt.has(currentUser(r)) {
		apierr.WriteError(w, http.StatusForbidden, "Non autorisé")
		return
	}

	resp := response.BattleResponse{
		ID:           int(bt.id),
		Code:         string(bt.code),
		Category:     bt.subject,
		Player1Name:  bt.player1,
		Player1Score: bt.p1Score,
		Player2Score: bt.p2Score,
		Status:       string(bt.status),
		Player1Ready: bt.p1Ready,
		Player2Ready: bt.p2Ready,
	}
	if bt.player2 != "" {
		p2 := bt.player2
		resp.Player2Name = &p2
	}
	response.OK(w, resp)
}

func battleID(r *http.Request) (model.BattleID, error) {
	n, err := strconv.Atoi(mux.Vars(r)["id"])
	return model.BattleID(n), err
}
