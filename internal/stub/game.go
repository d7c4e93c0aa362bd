package stub

import (
	"cmp"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/mcoot/quizgame/internal/api/apierr"
	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"

	wrongPenalty       = -5
	leaderboardSize    = 10
	leaderboardSeconds = 300
)

func (b *Backend) handleSubjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := response.CategoriesResponse{Categories: make([]response.Category, 0, len(b.subjects))}
	for _, s := range b.subjects {
		resp.Categories = append(resp.Categories, response.Category{
			Code: s.code, Name: s.name, Emoji: s.emoji, QuestionCount: len(s.questions),
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleGroups(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resp := response.GroupsResponse{Groups: make([]response.Group, 0, len(b.groups))}
	for _, g := range b.groups {
		members := make([]response.GroupMember, 0, len(g.subjects))
		for _, code := range g.subjects {
			if s, ok := b.subject(code); ok {
				members = append(members, response.GroupMember{ID: s.code, Name: s.name, Emoji: s.emoji})
			}
		}
		resp.Groups = append(resp.Groups, response.Group{
			ID: g.id, Name: g.name, Emoji: g.emoji, Categories: members, HasSubcategories: len(members) > 1,
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleStart(w http.ResponseWriter, r *http.Request) {
	var req request.StartRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	username := currentUser(r)
	if req.Category == "" {
		req.Category = b.subjects[0].code
	}
	mode := model.GameMode(req.Mode)
	if mode == "" {
		mode = model.ModeSingle
	}
	subj, known := b.subject(req.Category)
	if !known && mode == model.ModeSingle {
		badRequest(w, "Matière invalide")
		return
	}

	var qs []question
	switch mode {
	case model.ModeRevisionCategory:
		g, ok := b.group(req.RevisionCategory)
		if !ok {
			badRequest(w, "Catégorie invalide pour la révision")
			return
		}
		qs = b.questionsFor(g.subjects...)
	case model.ModeMixedAll:
		for _, s := range b.subjects {
			qs = append(qs, s.questions...)
		}
	case model.ModeMixedCategory:
		target := req.Group
		if target == "" {
			target = subj.group
		}
		if g, ok := b.group(target); ok {
			qs = b.questionsFor(g.subjects...)
		} else {
			qs = b.questionsFor(req.Category)
		}
	default:
		qs = b.questionsFor(req.Category)
	}
	if len(qs) == 0 {
		badRequest(w, "Aucune question trouvée")
		return
	}

	if req.TimerMinutes > 0 {
		u := b.users[username]
		var practice []question
		for _, q := range qs {
			if status := u.progress[q.source][q.text]; status != statusSuccess {
				practice = append(practice, q)
			}
		}
		if len(practice) > 0 {
			qs = practice
		}
	}
	qs = slices.Clone(qs)
	b.shuffleQuestions(qs)

	game := &gameSession{
		user:         username,
		subject:      req.Category,
		questions:    qs,
		timerMinutes: req.TimerMinutes,
	}
	if req.TimerMinutes > 0 {
		game.startTime = b.clock.Now()
	}
	b.games[sessionToken(r)] = game

	response.OK(w, response.GameResponse{
		Success:        true,
		TotalQuestions: len(qs),
		Category:       req.Category,
		CategoryName:   subj.name,
		CategoryEmoji:  subj.emoji,
		TimerMinutes:   req.TimerMinutes,
	})
}

// activeGame returns the game bound to the request's session
func (b *Backend) activeGame(r *http.Request) (*gameSession, bool) {
	g, ok := b.games[sessionToken(r)]
	return g, ok
}

func (b *Backend) handleTimeRemaining(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}
	if g.timerMinutes == 0 || g.startTime.IsZero() {
		response.OK(w, response.TimeRemainingResponse{TimerEnabled: false})
		return
	}

	total := time.Duration(g.timerMinutes) * time.Minute
	remaining := max(0, total-b.clock.Now().Sub(g.startTime))
	response.OK(w, response.TimeRemainingResponse{
		TimerEnabled:     true,
		RemainingSeconds: int(remaining.Seconds()),
		IsExpired:        remaining <= 0,
	})
}

func (b *Backend) handleQuestion(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}

	if g.index >= len(g.questions) {
		if g.timerMinutes == 0 {
			response.OK(w, response.QuestionResponse{
				Finished:      true,
				Score:         g.score,
				HasRevision:   len(g.review) > 0,
				RevisionCount: len(g.review),
			})
			return
		}
		// Timed games cycle through the questions again until the clock runs out
		g.index = 0
		g.remaining = nil
		b.shuffleQuestions(g.questions)
	}

	if len(g.remaining) == 0 {
		q := g.questions[g.index]
		answers := append([]string{q.correct}, q.wrong...)
		b.random.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
		g.remaining = answers
	}

	q := g.questions[g.index]
	src, _ := b.subject(q.source)

	response.OK(w, response.QuestionResponse{
		Question:         q.text,
		ProposedAnswer:   g.remaining[0],
		QuestionNumber:   g.index + 1,
		TotalQuestions:   len(g.questions),
		Score:            g.score,
		RemainingAnswers: len(g.remaining),
		SourceCategory:   q.source,
		SourceName:       src.name,
		SourceEmoji:      src.emoji,
	})
}

func (b *Backend) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req request.AnswerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}
	if g.index >= len(g.questions) || len(g.remaining) == 0 {
		badRequest(w, "Invalid state")
		return
	}

	q := g.questions[g.index]
	proposedCorrect := g.remaining[0] == q.correct
	resp := response.AnswerResponse{CorrectAnswer: q.correct}

	switch {
	case req.Answer && proposedCorrect:
		g.score += model.PointsPerQuestion
		resp.Correct = true
		resp.Points = model.PointsPerQuestion
		resp.Message = "✅ CORRECT! C'était bien la bonne réponse! Vous gagnez 10 points! 🎉"
		resp.NextQuestion = true
		g.correct = append(g.correct, g.index)
		b.recordProgress(g, q, statusSuccess)
		g.advance()
	case req.Answer:
		g.score += wrongPenalty
		resp.Points = wrongPenalty
		resp.Message = "❌ FAUX! Ce n'était pas la bonne réponse. Vous perdez 5 points! 😞"
		resp.NextQuestion = true
		g.markForReview()
		b.recordProgress(g, q, statusFailed)
		g.advance()
	default:
		g.remaining = g.remaining[1:]
		if len(g.remaining) == 0 {
			resp.Message = fmt.Sprintf("❓ Vous avez refusé toutes les réponses.\n\nLa bonne réponse était: %s\n\nAucun point gagné ou perdu.", q.correct)
			resp.NextQuestion = true
			g.markForReview()
			g.advance()
		} else {
			resp.Message = "➡️ Vous passez à une autre réponse..."
		}
	}

	resp.Score = g.score
	response.OK(w, resp)
}

func (g *gameSession) advance() {
	g.index++
	g.remaining = nil
}

func (g *gameSession) markForReview() {
	if !slices.Contains(g.review, g.index) {
		g.review = append(g.review, g.index)
	}
}

func (b *Backend) recordProgress(g *gameSession, q question, status string) {
	u := b.users[g.user]
	if u == nil {
		return
	}
	if u.progress[q.source] == nil {
		u.progress[q.source] = make(map[string]string)
	}
	u.progress[q.source][q.text] = status
}

func (b *Backend) handleStartRevision(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}
	if len(g.review) == 0 {
		badRequest(w, "No questions to review")
		return
	}

	revision := make([]question, 0, len(g.review))
	for _, i := range g.review {
		revision = append(revision, g.questions[i])
	}
	b.shuffleQuestions(revision)

	g.questions = revision
	g.index = 0
	g.remaining = nil
	g.review = nil

	response.OK(w, response.RevisionResponse{Success: true, TotalQuestions: len(revision)})
}

func (b *Backend) handleStats(w http.ResponseWriter, r *http.Request) {
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

	success, failed := 0, 0
	for _, status := range b.users[currentUser(r)].progress[subj.code] {
		switch status {
		case statusSuccess:
			success++
		case statusFailed:
			failed++
		}
	}
	total := len(subj.questions)
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(success)/float64(total)*1000) / 10
	}

	response.OK(w, response.StatsResponse{
		Category:          subj.code,
		CategoryName:      subj.name,
		CategoryEmoji:     subj.emoji,
		TotalQuestions:    total,
		SuccessCount:      success,
		FailedCount:       failed,
		NeverSeenCount:    max(0, total-success-failed),
		CompletionPercent: percent,
	})
}

func (b *Backend) handleScores(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var best []*savedGame
	for _, s := range b.saves {
		if s.completed && s.subject == req.Category && s.duration == leaderboardSeconds {
			best = append(best, s)
		}
	}
	slices.SortStableFunc(best, func(a, c *savedGame) int { return cmp.Compare(c.score, a.score) })
	best = best[:min(len(best), leaderboardSize)]

	subj, _ := b.subject(req.Category)
	resp := response.ScoresResponse{Scores: []response.ScoreEntry{}, Category: req.Category, CategoryName: subj.name}
	for _, s := range best {
		resp.Scores = append(resp.Scores, response.ScoreEntry{
			Username: s.user,
			Score:    s.score,
			Date:     s.createdAt.Format("02/01/2006 15:04"),
		})
	}
	response.OK(w, resp)
}

func (b *Backend) handleTotalScores(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ranked []*user
	for _, u := range b.users {
		if u.totalScore > 0 {
			ranked = append(ranked, u)
		}
	}
	slices.SortFunc(ranked, func(a, c *user) int {
		if n := cmp.Compare(c.totalScore, a.totalScore); n != 0 {
			return n
		}
		return cmp.Compare(a.name, c.name)
	})
	ranked = ranked[:min(len(ranked), leaderboardSize)]

	resp := response.TotalScoresResponse{Scores: []response.TotalScoreEntry{}}
	for _, u := range ranked {
		played := 0
		for _, s := range b.saves {
			if s.user == u.name && s.completed && s.duration == leaderboardSeconds {
				played++
			}
		}
		resp.Scores = append(resp.Scores, response.TotalScoreEntry{Username: u.name, TotalScore: u.totalScore, GamesPlayed: played})
	}
	if u := b.users[currentUser(r)]; u != nil {
		resp.CurrentUserScore = u.totalScore
	}
	response.OK(w, resp)
}

func (b *Backend) handleSave(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}

	elapsed := 0
	if g.timerMinutes > 0 && !g.startTime.IsZero() {
		elapsed = int(b.clock.Now().Sub(g.startTime).Seconds())
	}
	b.dropUnfinished(g.user, g.subject)
	b.saves = append(b.saves, &savedGame{
		user:      g.user,
		subject:   g.subject,
		game:      g.snapshot(),
		elapsed:   elapsed,
		score:     g.score,
		createdAt: b.clock.Now(),
	})

	response.Done(w, "Partie sauvegardée")
}

func (b *Backend) handleCheckSaved(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, found := b.unfinished(currentUser(r), req.Category)
	response.OK(w, response.CheckSavedResponse{HasSavedGame: found, Category: req.Category})
}

func (b *Backend) handleCompleteGame(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "No active game")
		return
	}

	duration := 0
	if g.timerMinutes > 0 && !g.startTime.IsZero() {
		duration = g.timerMinutes * 60
	}
	b.dropUnfinished(g.user, g.subject)
	b.saves = append(b.saves, &savedGame{
		user:      g.user,
		subject:   g.subject,
		game:      g.snapshot(),
		completed: true,
		duration:  duration,
		score:     g.score,
		createdAt: b.clock.Now(),
	})
	if u := b.users[g.user]; u != nil {
		u.addScore(g.score)
	}

	response.Done(w, "")
}

func (b *Backend) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req request.CategoryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "Requête invalide")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	saved, ok := b.unfinished(currentUser(r), req.Category)
	if !ok {
		apierr.WriteError(w, http.StatusNotFound, "Aucune partie sauvegardée trouvée")
		return
	}

	g := saved.game.snapshot()
	if g.timerMinutes > 0 {
		g.startTime = b.clock.Now().Add(-time.Duration(saved.elapsed) * time.Second)
	}
	b.games[sessionToken(r)] = &g

	subj, _ := b.subject(req.Category)
	response.OK(w, response.GameResponse{
		Success:        true,
		TotalQuestions: len(g.questions),
		CurrentIndex:   g.index,
		Score:          g.score,
		Category:       req.Category,
		CategoryName:   subj.name,
		CategoryEmoji:  subj.emoji,
		TimerMinutes:   g.timerMinutes,
	})
}

func (b *Backend) handleUseHint(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.activeGame(r)
	if !ok {
		badRequest(w, "Aucune partie en cours")
		return
	}
	u := b.users[currentUser(r)]
	if u.hints <= 0 {
		badRequest(w, "Vous n'avez plus d'indices !")
		return
	}
	if g.index >= len(g.questions) || len(g.remaining) == 0 {
		badRequest(w, "Aucune réponse proposée")
		return
	}

	u.hints--
	correct := g.remaining[0] == g.questions[g.index].correct
	msg := "❌ Ce n'est pas la bonne réponse !"
	if correct {
		msg = "✅ C'est la bonne réponse !"
	}
	response.OK(w, response.HintResponse{Success: true, IsCorrect: correct, HintsRemaining: u.hints, Message: msg})
}

func (b *Backend) handleHintCount(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	response.OK(w, response.HintCountResponse{HintsCount: b.users[currentUser(r)].hints})
}

func (b *Backend) unfinished(username, subject string) (*savedGame, bool) {
	for i := len(b.saves) - 1; i >= 0; i-- {
		s := b.saves[i]
		if s.user == username && s.subject == subject && !s.completed {
			return s, true
		}
	}
	return nil, false
}

func (b *Backend) dropUnfinished(username, subject string) {
	b.saves = slices.DeleteFunc(b.saves, func(s *savedGame) bool {
		return s.user == username && s.subject == subject && !s.completed
	})
}

// snapshot deep-copies the mutable parts of a game
func (g *gameSession) snapshot() gameSession {
	c := *g
	c.questions = slices.Clone(g.questions)
	c.remaining = slices.Clone(g.remaining)
	c.correct = slices.Clone(g.correct)
	c.review = slices.Clone(g.review)
	return c
}
