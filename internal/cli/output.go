package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/bot"
	"github.com/mcoot/quizgame/internal/services/game"
)

// Output handles formatting output based on the configured format
type Output struct {
	mu     sync.Mutex
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// JSON reports whether machine-readable output was requested
func (o *Output) JSON() bool {
	return o.format == "json"
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.JSON() {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.User:
		o.printUser(v)
	case StatusResult:
		o.printStatus(v)
	case []model.Category:
		o.printCategories(v)
	case []model.CategoryGroup:
		o.printGroups(v)
	case game.HomeView:
		o.printHome(v)
	case model.GameInfo:
		o.printGameInfo(v)
	case game.QuestionView:
		o.printQuestion(v)
	case game.AnswerView:
		o.printf("%s\n", v.Message)
	case game.EndView:
		o.printEnd(v)
	case model.HintResult:
		o.printf("%s\n💡 %d hint(s) left\n", v.Message, v.HintsRemaining)
	case model.Leaderboard:
		o.printLeaderboard(v)
	case model.GlobalLeaderboard:
		o.printGlobalLeaderboard(v)
	case model.BattleView:
		o.printBattle(v)
	case *model.Question:
		o.printBattleQuestion(v)
	case model.Catalog:
		o.printCatalog(v)
	case model.Purchase:
		o.printPurchase(v)
	case model.Equipment:
		o.printf("%s\n", v.Message)
	case HintBalance:
		o.printf("💡 Hints: %d\n", v.Hints)
	case []bot.BotAction:
		o.printBotActions(v)
	case model.Event:
		o.printEvent(v)
	case []ProfileSummary:
		o.printProfiles(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// StatusResult describes the active profile and session
type StatusResult struct {
	Profile    model.ProfileName  `json:"profile"`
	Server     string             `json:"server"`
	User       model.User         `json:"user"`
	Category   model.CategoryCode `json:"category,omitempty"`
	Appearance model.Appearance   `json:"appearance"`
}

// HintBalance is the hint count response
type HintBalance struct {
	Hints int `json:"hints"`
}

// ProfileSummary is one stored profile
type ProfileSummary struct {
	Name      model.ProfileName `json:"name"`
	Server    string            `json:"server"`
	Username  string            `json:"username,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
	Active    bool              `json:"active"`
}

func (o *Output) printUser(u model.User) {
	if !u.Authenticated {
		o.printf("Not logged in\n")
		return
	}
	o.printf("Logged in as %s\n", u.Username)
}

func (o *Output) printStatus(s StatusResult) {
	o.printf("Profile: %s\n", s.Profile)
	o.printf("Server: %s\n", s.Server)
	o.printUser(s.User)
	if s.Category != "" {
		o.printf("Category: %s\n", s.Category)
	}
	if s.Appearance.ThemeGradient != "" {
		o.printf("Theme: %s\n", s.Appearance.ThemeGradient)
	}
	if s.Appearance.ButtonColor != "" {
		o.printf("Buttons: %s (hover %s)\n", s.Appearance.ButtonColor, s.Appearance.ButtonHoverColor)
	}
	if s.Appearance.BackgroundGradient != "" {
		o.printf("Background: %s\n", s.Appearance.BackgroundGradient)
	}
}

func (o *Output) printCategories(categories []model.Category) {
	for _, c := range categories {
		o.printf("  %-20s %s (%d questions)\n", c.Code, c.Label(), c.QuestionCount)
	}
}

func (o *Output) printGroups(groups []model.CategoryGroup) {
	for _, g := range groups {
		o.printf("%s %s [%s]\n", g.Emoji, g.Name, g.ID)
		o.printCategories(g.Categories)
	}
}

func (o *Output) printHome(h game.HomeView) {
	s := h.Stats
	o.printf("%s %s\n", s.CategoryEmoji, s.CategoryName)
	o.printf("Questions: %d\n", s.TotalQuestions)
	o.printf("✅ Mastered: %d\n", s.SuccessCount)
	o.printf("❌ To review: %d\n", s.FailedCount)
	o.printf("🆕 Never seen: %d\n", s.NeverSeenCount)
	o.printf("Completion: %.0f%%\n", s.CompletionPercent)
	if h.HasSavedGame {
		o.printf("💾 A saved game is waiting (quizgame resume)\n")
	}
}

func (o *Output) printGameInfo(g model.GameInfo) {
	o.printf("%s %s: %d questions", g.CategoryEmoji, g.CategoryName, g.TotalQuestions)
	if g.TimerEnabled() {
		o.printf(", %d minute timer", g.TimerMinutes)
	}
	o.printf("\n")
	if g.CurrentIndex > 0 {
		o.printf("Resuming at question %d with %d points\n", g.CurrentIndex+1, g.Score)
	}
}

func (o *Output) printQuestion(v game.QuestionView) {
	q := v.Question
	o.printf("\n[%s] Score: %d", q.Counter(), q.Score)
	if v.HintCount > 0 {
		o.printf("  💡 %d", v.HintCount)
	}
	o.printf("\n")
	if q.SourceName != "" {
		o.printf("%s %s\n", q.SourceEmoji, q.SourceName)
	}
	o.printf("%s\n", q.Text)
	o.printf("  → %s  (%d answer(s) left)\n", q.ProposedAnswer, q.RemainingAnswers)
}

func (o *Output) printBattleQuestion(q *model.Question) {
	o.printf("\n[%s]\n%s\n  → %s\n", q.Counter(), q.Text, q.ProposedAnswer)
}

func (o *Output) printEnd(e game.EndView) {
	if e.TimedOut {
		o.printf("⏰ Time's up!\n")
	}
	o.printf("\nFinal score: %d / %d\n", e.Score, e.TotalQuestions*model.PointsPerQuestion)
	o.printf("%s\n", e.Message)
	if e.HasRevision {
		o.printf("📚 %d question(s) to revise\n", e.RevisionCount)
	}
}

func (o *Output) printLeaderboard(l model.Leaderboard) {
	o.printf("🏆 %s\n", l.CategoryName)
	if len(l.Entries) == 0 {
		o.printf("No timed games yet\n")
		return
	}
	for i, e := range l.Entries {
		o.printf("%2d. %-20s %5d  %s\n", i+1, e.Username, e.Score, e.Date)
	}
}

func (o *Output) printGlobalLeaderboard(l model.GlobalLeaderboard) {
	o.printf("🌍 Global leaderboard\n")
	for i, e := range l.Entries {
		o.printf("%2d. %-20s %6d  (%d games)\n", i+1, e.Username, e.TotalScore, e.GamesPlayed)
	}
	o.printf("Your total: %d\n", l.CurrentUserScore)
}

func (o *Output) printBattle(v model.BattleView) {
	switch v.Phase {
	case model.PhaseIdle:
		o.printf("No active battle\n")
		return
	case model.PhaseWaiting:
		o.printf("Battle %s (%s)\n", v.Code, v.Category)
		opponent := v.Player2Name
		if v.Role == model.RoleGuest {
			opponent = v.Player1Name
		}
		if opponent == "" {
			o.printf("  waiting for an opponent...\n")
		} else {
			o.printf("  opponent: %s\n", opponent)
		}
		o.printf("  you: %s\n", readyMark(v.LocalReady))
		if v.BothReady {
			o.printf("  both players ready\n")
		}
	case model.PhasePlaying:
		o.printf("%s %d - %d %s  [%s]\n", v.Player1Name, v.Player1Score, v.Player2Score, v.Player2Name,
			model.FormatClock(int(v.Remaining/time.Second)))
	case model.PhaseFinished:
		if v.Result == nil {
			return
		}
		r := v.Result
		o.printf("\n%s %d - %d %s\n", r.Player1Name, r.Player1Score, r.Player2Score, r.Player2Name)
		if r.Tie() {
			o.printf("🤝 Draw!\n")
		} else {
			o.printf("🏆 Winner: %s\n", r.Winner)
		}
	}
	for _, e := range v.Emotes {
		o.printf("  %s %s: %s\n", e.Emoji, e.Sender, e.Name)
	}
}

func readyMark(ready bool) string {
	if ready {
		return "✅ ready"
	}
	return "⏳ not ready"
}

func (o *Output) printCatalog(c model.Catalog) {
	if c.Balance >= 0 {
		o.printf("💰 %d points\n", c.Balance)
	}
	for _, item := range c.Items {
		status := fmt.Sprintf("%d pts", item.Price)
		switch {
		case item.Equipped:
			status = "equipped"
		case item.Owned:
			status = "owned"
		case item.Price == 0:
			status = "free"
		}
		label := item.Name
		if item.Visual.Emoji != "" {
			label = item.Visual.Emoji + " " + label
		}
		o.printf("  %-14s %-28s %s\n", item.ID, label, status)
	}
}

func (o *Output) printPurchase(p model.Purchase) {
	o.printf("%s\n", p.Message)
	o.printf("💰 Balance: %d\n", p.NewBalance)
	if p.HintCount > 0 {
		o.printf("💡 Hints: %d\n", p.HintCount)
	}
}

func (o *Output) printBotActions(actions []bot.BotAction) {
	for _, a := range actions {
		switch a.Type {
		case bot.ActionGameComplete:
			o.printf("🤖 game complete, score %d\n", a.Score)
		default:
			o.printf("🤖 %-6s %s → %s (%+d)\n", a.Type, a.Question, a.Proposed, a.Points)
		}
	}
}

func (o *Output) printEvent(ev model.Event) {
	payload, _ := json.Marshal(ev.Payload)
	data := strings.ReplaceAll(string(payload), "\n", " ")
	if len(data) > 100 {
		data = data[:100] + "..."
	}
	o.printf("[%s] %s: %s\n", ev.ReceivedAt.Format("2006-01-02 15:04:05"), ev.Type, data)
}

func (o *Output) printProfiles(profiles []ProfileSummary) {
	for _, p := range profiles {
		marker := " "
		if p.Active {
			marker = "*"
		}
		user := p.Username
		if user == "" {
			user = "-"
		}
		o.printf("%s %-12s %-16s %s\n", marker, p.Name, user, p.Server)
	}
}
