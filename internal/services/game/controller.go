package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/ui"
)

// Client is the part of the API client the game controller needs
type Client interface {
	Categories(ctx context.Context) ([]model.Category, error)
	CategoryGroups(ctx context.Context) ([]model.CategoryGroup, error)
	Stats(ctx context.Context, category model.CategoryCode) (model.Stats, error)
	HasSavedGame(ctx context.Context, category model.CategoryCode) (bool, error)
	Start(ctx context.Context, opts model.StartOptions) (model.GameInfo, error)
	Restore(ctx context.Context, category model.CategoryCode) (model.GameInfo, error)
	TimeRemaining(ctx context.Context) (model.TimeRemaining, error)
	Question(ctx context.Context) (model.QuestionState, error)
	Answer(ctx context.Context, accept bool) (model.AnswerResult, error)
	StartRevision(ctx context.Context) (int, error)
	Save(ctx context.Context) (string, error)
	CompleteGame(ctx context.Context) error
	Leaderboard(ctx context.Context, category model.CategoryCode) (model.Leaderboard, error)
	GlobalLeaderboard(ctx context.Context) (model.GlobalLeaderboard, error)
	HintCount(ctx context.Context) (int, error)
	UseHint(ctx context.Context) (model.HintResult, error)
}

// Controller runs the single-player loop: home, game and end screens
type Controller struct {
	client   Client
	session  *session.Context
	prompter ui.Prompter
	logger   *slog.Logger

	mu         sync.Mutex
	observer   Observer
	categories []model.Category
	info       model.GameInfo
	score      int
	hints      int
	active     bool
	completed  bool
	hasSaved   bool
	end        *EndView
}

// NewController creates a new game Controller
func NewController(client Client, sess *session.Context, prompter ui.Prompter, logger *slog.Logger) *Controller {
	return &Controller{
		client:   client,
		session:  sess,
		prompter: prompter,
		logger:   logger.With(slog.String("component", "game")),
		observer: nopObserver{},
	}
}

// SetObserver registers the receiver of timer ticks and background game ends
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// LoadCategories fetches the category list. The first category becomes the
// selection when nothing is selected yet.
func (c *Controller) LoadCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := c.client.Categories(ctx)
	if err != nil {
		c.logger.Error("failed to load categories", slog.String("error", err.Error()))
		return nil, err
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()

	if c.session.Category() == "" && len(categories) > 0 {
		c.session.SetCategory(categories[0].Code)
	}
	return categories, nil
}

// CategoryGroups lists the groups used by the mixed and revision modes
func (c *Controller) CategoryGroups(ctx context.Context) ([]model.CategoryGroup, error) {
	return c.client.CategoryGroups(ctx)
}

// SelectCategory changes the selected category and reloads the home view for it
func (c *Controller) SelectCategory(ctx context.Context, code model.CategoryCode) (HomeView, error) {
	categories, err := c.ensureCategories(ctx)
	if err != nil {
		return HomeView{}, err
	}

	found := false
	for _, cat := range categories {
		if cat.Code == code {
			found = true
			break
		}
	}
	if !found {
		return HomeView{}, fmt.Errorf("%w: unknown category %q", model.ErrNoCategory, code)
	}

	c.session.SetCategory(code)
	return c.Home(ctx)
}

// Home returns the home screen for the selected category
func (c *Controller) Home(ctx context.Context) (HomeView, error) {
	categories, err := c.ensureCategories(ctx)
	if err != nil {
		return HomeView{}, err
	}

	selected := c.session.Category()
	if selected == "" {
		return HomeView{}, model.ErrNoCategory
	}

	stats, err := c.client.Stats(ctx, selected)
	if err != nil {
		c.logger.Error("failed to load stats", slog.String("category", string(selected)), slog.String("error", err.Error()))
		return HomeView{}, err
	}

	hasSaved, err := c.refreshSaved(ctx)
	if err != nil {
		return HomeView{}, err
	}

	return HomeView{
		Categories:   categories,
		Selected:     selected,
		Stats:        stats,
		HasSavedGame: hasSaved,
	}, nil
}

// Start begins a new game. An existing save for the category is only
// overwritten after the user confirms.
func (c *Controller) Start(ctx context.Context, opts model.StartOptions) (model.GameInfo, error) {
	if opts.Category == "" {
		opts.Category = c.session.Category()
	}
	if opts.Mode == "" {
		opts.Mode = model.ModeSingle
	}
	if opts.Category == "" && opts.Mode != model.ModeMixedAll {
		return model.GameInfo{}, model.ErrNoCategory
	}

	if opts.Category != "" {
		c.session.SetCategory(opts.Category)
		hasSaved, err := c.client.HasSavedGame(ctx, opts.Category)
		if err != nil {
			return model.GameInfo{}, err
		}
		if hasSaved {
			ok, err := c.prompter.Confirm(ctx, "You have a game in progress. Start a new one anyway? (The save will be erased)")
			if err != nil {
				return model.GameInfo{}, err
			}
			if !ok {
				return model.GameInfo{}, model.ErrDeclined
			}
		}
	}

	info, err := c.client.Start(ctx, opts)
	if err != nil {
		c.logger.Error("failed to start game",
			slog.String("category", string(opts.Category)),
			slog.String("mode", string(opts.Mode)),
			slog.String("error", err.Error()),
		)
		return model.GameInfo{}, err
	}

	c.begin(ctx, info)
	c.logger.Info("game started",
		slog.String("category", string(info.Category)),
		slog.String("mode", string(opts.Mode)),
		slog.Int("total_questions", info.TotalQuestions),
		slog.Int("timer_minutes", info.TimerMinutes),
	)
	return info, nil
}

// Resume restores the saved game for the selected category
func (c *Controller) Resume(ctx context.Context) (model.GameInfo, error) {
	category := c.session.Category()
	if category == "" {
		return model.GameInfo{}, model.ErrNoCategory
	}

	info, err := c.client.Restore(ctx, category)
	if err != nil {
		c.logger.Error("failed to restore game", slog.String("category", string(category)), slog.String("error", err.Error()))
		return model.GameInfo{}, err
	}

	c.begin(ctx, info)
	c.logger.Info("game resumed", slog.String("category", string(category)), slog.Int("score", info.Score))
	return info, nil
}

// LoadQuestion fetches the current question. When the game is over it
// returns the end view instead.
func (c *Controller) LoadQuestion(ctx context.Context) (QuestionView, *EndView, error) {
	if !c.isActive() {
		if end := c.lastEnd(); end != nil {
			return QuestionView{}, end, nil
		}
		return QuestionView{}, nil, model.ErrNoActiveGame
	}

	state, err := c.client.Question(ctx)
	if err != nil {
		c.logger.Error("failed to load question", slog.String("error", err.Error()))
		return QuestionView{}, nil, err
	}

	if state.Finished {
		c.mu.Lock()
		total := c.info.TotalQuestions
		c.mu.Unlock()
		end := c.finish(ctx, newEndView(state.Score, total, state.HasRevision, state.RevisionCount, false))
		return QuestionView{}, &end, nil
	}

	hints, err := c.client.HintCount(ctx)
	if err != nil {
		c.logger.Warn("failed to load hint count", slog.String("error", err.Error()))
		hints = 0
	}

	c.mu.Lock()
	c.score = state.Question.Score
	c.hints = hints
	timed := c.info.TimerEnabled()
	c.mu.Unlock()

	return QuestionView{Question: *state.Question, HintCount: hints, Timed: timed}, nil, nil
}

// Answer accepts or rejects the proposed answer
func (c *Controller) Answer(ctx context.Context, accept bool) (AnswerView, error) {
	if !c.isActive() {
		return AnswerView{}, model.ErrNoActiveGame
	}

	result, err := c.client.Answer(ctx, accept)
	if err != nil {
		c.logger.Error("failed to submit answer", slog.Bool("accept", accept), slog.String("error", err.Error()))
		return AnswerView{}, err
	}

	c.mu.Lock()
	c.score = result.Score
	c.mu.Unlock()

	view := AnswerView{Result: result, Message: result.Message}
	if result.Points < 0 {
		view.Message += fmt.Sprintf("\n\nThe correct answer was: %s", result.CorrectAnswer)
	}
	if !result.NextQuestion {
		view.AutoAdvance = model.AutoAdvanceDelay
	}
	return view, nil
}

// UseHint reveals whether the current proposed answer is correct
func (c *Controller) UseHint(ctx context.Context) (model.HintResult, error) {
	if !c.isActive() {
		return model.HintResult{}, model.ErrNoActiveGame
	}

	c.mu.Lock()
	hints := c.hints
	c.mu.Unlock()
	if hints <= 0 {
		return model.HintResult{}, model.ErrNoHints
	}

	result, err := c.client.UseHint(ctx)
	if err != nil {
		c.logger.Error("failed to use hint", slog.String("error", err.Error()))
		return model.HintResult{}, err
	}

	c.mu.Lock()
	c.hints = result.HintsRemaining
	c.mu.Unlock()
	return result, nil
}

// StartRevision replays the questions missed in the finished game
func (c *Controller) StartRevision(ctx context.Context) (int, error) {
	total, err := c.client.StartRevision(ctx)
	if err != nil {
		c.logger.Error("failed to start revision", slog.String("error", err.Error()))
		return 0, err
	}

	c.mu.Lock()
	c.info.TotalQuestions = total
	c.info.TimerMinutes = 0
	c.active = true
	c.completed = false
	c.end = nil
	c.mu.Unlock()

	c.session.Transition(model.ScreenGame)
	c.logger.Info("revision started", slog.Int("total_questions", total))
	return total, nil
}

// SaveAndQuit saves the running game and returns home
func (c *Controller) SaveAndQuit(ctx context.Context) error {
	if !c.isActive() {
		return model.ErrNoActiveGame
	}

	ok, err := c.prompter.Confirm(ctx, "Save the game and return to the home screen?")
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDeclined
	}

	if _, err := c.client.Save(ctx); err != nil {
		c.logger.Error("failed to save game", slog.String("error", err.Error()))
		return err
	}

	c.session.GameTimer.Stop()
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
	c.session.Transition(model.ScreenHome)

	if _, err := c.refreshSaved(ctx); err != nil {
		c.logger.Warn("failed to refresh save indicator", slog.String("error", err.Error()))
	}
	c.logger.Info("game saved", slog.String("category", string(c.session.Category())))
	return nil
}

// Leaderboard returns the best timed games for the selected category
func (c *Controller) Leaderboard(ctx context.Context) (model.Leaderboard, error) {
	category := c.session.Category()
	if category == "" {
		return model.Leaderboard{}, model.ErrNoCategory
	}
	return c.client.Leaderboard(ctx, category)
}

// GlobalLeaderboard ranks every user by accumulated points
func (c *Controller) GlobalLeaderboard(ctx context.Context) (model.GlobalLeaderboard, error) {
	return c.client.GlobalLeaderboard(ctx)
}

// Score returns the last score reported by the server
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// HasSavedGame reports the last known save indicator for the selected category
func (c *Controller) HasSavedGame() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSaved
}

// Active reports whether a game is in progress
func (c *Controller) Active() bool {
	return c.isActive()
}

func (c *Controller) begin(ctx context.Context, info model.GameInfo) {
	c.mu.Lock()
	c.info = info
	c.score = info.Score
	c.active = true
	c.completed = false
	c.end = nil
	c.mu.Unlock()

	c.session.Transition(model.ScreenGame)
	if info.TimerEnabled() {
		c.session.GameTimer.Start(ctx, timerInterval, true, c.tick)
	} else {
		c.session.GameTimer.Stop()
	}
}

// finish shows the end screen. The game is reported complete at most once per session.
func (c *Controller) finish(ctx context.Context, view EndView) EndView {
	c.mu.Lock()
	if !c.active && c.end != nil {
		end := *c.end
		c.mu.Unlock()
		return end
	}
	c.active = false
	report := !c.completed
	c.completed = true
	c.end = &view
	observer := c.observer
	c.mu.Unlock()

	if report {
		if err := c.client.CompleteGame(ctx); err != nil {
			c.logger.Error("failed to record completed game", slog.String("error", err.Error()))
		}
	}
	if _, err := c.refreshSaved(ctx); err != nil {
		c.logger.Warn("failed to refresh save indicator", slog.String("error", err.Error()))
	}

	c.session.Transition(model.ScreenEnd)
	observer.GameEnded(view)
	c.logger.Info("game ended",
		slog.Int("score", view.Score),
		slog.String("rating", string(view.Rating)),
		slog.Bool("timed_out", view.TimedOut),
	)
	return view
}

func (c *Controller) ensureCategories(ctx context.Context) ([]model.Category, error) {
	c.mu.Lock()
	categories := c.categories
	c.mu.Unlock()
	if categories != nil {
		return categories, nil
	}
	return c.LoadCategories(ctx)
}

func (c *Controller) refreshSaved(ctx context.Context) (bool, error) {
	category := c.session.Category()
	if category == "" {
		return false, nil
	}
	hasSaved, err := c.client.HasSavedGame(ctx, category)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.hasSaved = hasSaved
	c.mu.Unlock()
	return hasSaved, nil
}

func (c *Controller) isActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) lastEnd() *EndView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.end == nil {
		return nil
	}
	end := *c.end
	return &end
}
