package battle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/middleware"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/realtime"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/ui"
)

const countdownInterval = time.Second

// Client is the part of the API client the battle controller needs
type Client interface {
	CreateBattle(ctx context.Context, category model.CategoryCode) (model.CreatedBattle, error)
	JoinBattle(ctx context.Context, code model.BattleCode) (model.JoinedBattle, error)
	Battle(ctx context.Context, id model.BattleID) (model.Battle, error)
	CancelBattle(ctx context.Context, id model.BattleID) error
	Catalog(ctx context.Context, kind model.CatalogKind) (model.Catalog, error)
	Start(ctx context.Context, opts model.StartOptions) (model.GameInfo, error)
	Question(ctx context.Context) (model.QuestionState, error)
	Answer(ctx context.Context, accept bool) (model.AnswerResult, error)
}

// Observer is notified with a fresh view whenever the battle changes
type Observer interface {
	BattleUpdated(view model.BattleView)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(view model.BattleView)

func (f ObserverFunc) BattleUpdated(view model.BattleView) {
	f(view)
}

// endTrigger names a reason for asking the server to settle the battle
type endTrigger string

const (
	endCountdown endTrigger = "countdown"
	endExhausted endTrigger = "questions_exhausted"
)

// Controller runs one head-to-head battle at a time. State changes driven by
// the server go through Reduce; the controller only adds local intent.
type Controller struct {
	client    Client
	connector realtime.Connector
	session   *session.Context
	prompter  ui.Prompter
	clock     clock.Clock
	logger    *slog.Logger

	mu           sync.Mutex
	view         model.BattleView
	channel      realtime.Channel
	loopCtx      context.Context
	cancel       context.CancelFunc
	owned        map[string]bool
	endSent      map[endTrigger]bool
	observers    map[int]Observer
	nextObserver int
}

// NewController creates a new battle Controller
func NewController(
	client Client,
	connector realtime.Connector,
	sess *session.Context,
	prompter ui.Prompter,
	clk clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		client:    client,
		connector: connector,
		session:   sess,
		prompter:  prompter,
		clock:     clk,
		logger:    logger.With(slog.String("component", "battle")),
		view:      model.BattleView{Phase: model.PhaseIdle},
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns a function that removes it
func (c *Controller) Subscribe(o Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = o
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// View returns the battle as it should be rendered now
func (c *Controller) View() model.BattleView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderLocked()
}

// Create opens a private battle and waits in its lobby
func (c *Controller) Create(ctx context.Context, category model.CategoryCode) (model.BattleView, error) {
	if category == "" {
		category = c.session.Category()
	}
	if category == "" {
		return model.BattleView{}, model.ErrNoCategory
	}
	if c.session.BattleID() != 0 {
		return model.BattleView{}, model.ErrBattleInProgress
	}

	created, err := c.client.CreateBattle(ctx, category)
	if err != nil {
		c.logger.Error("failed to create battle", slog.String("category", string(category)), slog.String("error", err.Error()))
		return model.BattleView{}, err
	}

	view := model.BattleView{
		Phase:       model.PhaseWaiting,
		ID:          created.ID,
		Code:        created.Code,
		Category:    created.Category,
		Role:        model.RoleHost,
		Player1Name: c.session.User().Username,
	}
	if err := c.open(ctx, view); err != nil {
		return model.BattleView{}, err
	}

	c.logger.Info("battle created", slog.Int("battle_id", int(created.ID)), slog.String("code", string(created.Code)))
	return c.View(), nil
}

// Join enters a private battle by its code. The code is validated before any request.
func (c *Controller) Join(ctx context.Context, raw string) (model.BattleView, error) {
	code := NormalizeCode(raw)
	if utf8.RuneCountInString(string(code)) != model.BattleCodeLength {
		return model.BattleView{}, model.ErrInvalidJoinCode
	}
	if c.session.BattleID() != 0 {
		return model.BattleView{}, model.ErrBattleInProgress
	}

	joined, err := c.client.JoinBattle(ctx, code)
	if err != nil {
		c.logger.Error("failed to join battle", slog.String("code", string(code)), slog.String("error", err.Error()))
		return model.BattleView{}, err
	}

	view := model.BattleView{
		Phase:       model.PhaseWaiting,
		ID:          joined.ID,
		Code:        code,
		Category:    joined.Category,
		Role:        model.RoleGuest,
		Player2Name: c.session.User().Username,
	}
	if err := c.open(ctx, view); err != nil {
		return model.BattleView{}, err
	}
	c.refreshNames(ctx)

	c.logger.Info("battle joined", slog.Int("battle_id", int(joined.ID)))
	return c.View(), nil
}

// Host opens a public battle that is still waiting for an opponent
func (c *Controller) Host(ctx context.Context, id model.BattleID, code model.BattleCode, category model.CategoryCode) (model.BattleView, error) {
	view := model.BattleView{
		Phase:       model.PhaseWaiting,
		ID:          id,
		Code:        code,
		Category:    category,
		Role:        model.RoleHost,
		Player1Name: c.session.User().Username,
	}
	if err := c.open(ctx, view); err != nil {
		return model.BattleView{}, err
	}
	return c.View(), nil
}

// EnterMatched opens a battle the matchmaker already paired. Readiness was
// granted by the server, so ready is announced without asking.
func (c *Controller) EnterMatched(ctx context.Context, id model.BattleID) (model.BattleView, error) {
	if c.session.BattleID() != 0 && c.session.BattleID() != id {
		return model.BattleView{}, model.ErrBattleInProgress
	}

	b, err := c.client.Battle(ctx, id)
	if err != nil {
		c.logger.Error("failed to load matched battle", slog.Int("battle_id", int(id)), slog.String("error", err.Error()))
		return model.BattleView{}, err
	}

	role := model.RoleHost
	if b.Player2Name == c.session.User().Username {
		role = model.RoleGuest
	}
	view := model.BattleView{
		Phase:       model.PhaseWaiting,
		ID:          b.ID,
		Code:        b.Code,
		Category:    b.Category,
		Role:        role,
		Player1Name: b.Player1Name,
		Player2Name: b.Player2Name,
	}
	if err := c.open(ctx, view); err != nil {
		return model.BattleView{}, err
	}
	if err := c.MarkMatched(ctx); err != nil {
		return model.BattleView{}, err
	}
	return c.View(), nil
}

// MarkMatched records that the opponent was found and announces readiness
func (c *Controller) MarkMatched(ctx context.Context) error {
	c.mu.Lock()
	if c.view.Phase == model.PhasePlaying {
		c.mu.Unlock()
		return nil
	}
	if c.view.Phase != model.PhaseWaiting || c.channel == nil {
		c.mu.Unlock()
		return model.ErrNoActiveBattle
	}
	c.view.LocalReady = true
	c.view.BothReady = true
	ch, id := c.channel, c.view.ID
	view := c.renderLocked()
	c.mu.Unlock()

	c.notify(view)
	if err := ch.Emit(ctx, model.EventReady, model.ReadyMessage{BattleID: id}); err != nil {
		c.logger.Error("failed to announce readiness", slog.String("error", err.Error()))
		return err
	}

	c.refreshNames(ctx)
	c.syncStarted(ctx)
	return nil
}

// Ready marks the local player ready. The flag is set before the server
// confirms it; play only begins on the pushed start.
func (c *Controller) Ready(ctx context.Context) error {
	c.mu.Lock()
	if c.view.Phase != model.PhaseWaiting || c.channel == nil {
		c.mu.Unlock()
		return model.ErrNoActiveBattle
	}
	c.view.LocalReady = true
	ch, id := c.channel, c.view.ID
	view := c.renderLocked()
	c.mu.Unlock()

	c.notify(view)
	if err := ch.Emit(ctx, model.EventReady, model.ReadyMessage{BattleID: id}); err != nil {
		c.logger.Error("failed to send ready", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// LoadQuestion fetches the next battle question. A nil question means the
// questions ran out and the server was asked to settle the battle.
func (c *Controller) LoadQuestion(ctx context.Context) (*model.Question, error) {
	if c.View().Phase != model.PhasePlaying {
		return nil, model.ErrNoActiveBattle
	}

	state, err := c.client.Question(ctx)
	if err != nil {
		c.logger.Error("failed to load battle question", slog.String("error", err.Error()))
		return nil, err
	}
	if state.Finished {
		return nil, c.emitEnd(ctx, endExhausted)
	}
	return state.Question, nil
}

// Answer submits a decision and mirrors its outcome to the opponent
func (c *Controller) Answer(ctx context.Context, accept bool) (model.AnswerResult, error) {
	c.mu.Lock()
	phase, ch, id := c.view.Phase, c.channel, c.view.ID
	c.mu.Unlock()
	if phase != model.PhasePlaying || ch == nil {
		return model.AnswerResult{}, model.ErrNoActiveBattle
	}

	result, err := c.client.Answer(ctx, accept)
	if err != nil {
		c.logger.Error("failed to submit battle answer", slog.String("error", err.Error()))
		return model.AnswerResult{}, err
	}

	msg := model.AnswerMessage{BattleID: id, IsCorrect: result.Correct, Points: result.Points}
	if err := ch.Emit(ctx, model.EventAnswer, msg); err != nil {
		c.logger.Error("failed to mirror answer", slog.String("error", err.Error()))
		return result, fmt.Errorf("mirror answer: %w", err)
	}
	return result, nil
}

// SendEmote sends one of the player's emotes to the opponent
func (c *Controller) SendEmote(ctx context.Context, emoteID string) error {
	c.mu.Lock()
	phase, ch, id := c.view.Phase, c.channel, c.view.ID
	owned := c.owned[emoteID]
	c.mu.Unlock()

	if ch == nil || (phase != model.PhaseWaiting && phase != model.PhasePlaying) {
		return model.ErrNoActiveBattle
	}
	if !owned {
		return model.ErrEmoteNotOwned
	}
	return ch.Emit(ctx, model.EventSendEmote, model.SendEmoteMessage{BattleID: id, EmoteID: emoteID})
}

// OwnedEmotes lists the emotes that may be sent in this battle
func (c *Controller) OwnedEmotes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.owned))
	for id := range c.owned {
		ids = append(ids, id)
	}
	return ids
}

// Cancel withdraws a battle nobody has joined yet, then leaves it
func (c *Controller) Cancel(ctx context.Context) error {
	c.mu.Lock()
	view := c.view
	c.mu.Unlock()

	if view.Phase != model.PhaseWaiting {
		return model.ErrNoActiveBattle
	}
	if err := c.client.CancelBattle(ctx, view.ID); err != nil {
		c.logger.Error("failed to cancel battle", slog.Int("battle_id", int(view.ID)), slog.String("error", err.Error()))
		return err
	}
	c.Leave()
	return nil
}

// Leave closes the battle channel and returns home
func (c *Controller) Leave() {
	c.mu.Lock()
	id := c.view.ID
	c.closeLocked()
	c.view = model.BattleView{Phase: model.PhaseIdle}
	view := c.view
	c.mu.Unlock()

	c.session.BattleCountdown.Stop()
	if id != 0 {
		c.session.ReleaseBattle(id)
	}
	c.session.Transition(model.ScreenHome)
	c.notify(view)
}

func (c *Controller) open(ctx context.Context, view model.BattleView) error {
	if err := c.session.ClaimBattle(view.ID); err != nil {
		return err
	}

	ch, err := c.connector.Connect(ctx)
	if err != nil {
		c.session.ReleaseBattle(view.ID)
		c.logger.Error("failed to connect battle channel", slog.String("error", err.Error()))
		return err
	}
	if err := ch.Emit(ctx, model.EventJoinBattle, model.JoinBattleMessage{BattleID: view.ID}); err != nil {
		_ = ch.Close()
		c.session.ReleaseBattle(view.ID)
		c.logger.Error("failed to join battle room", slog.String("error", err.Error()))
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.closeLocked()
	c.view = view
	c.channel = ch
	c.loopCtx = loopCtx
	c.cancel = cancel
	c.endSent = make(map[endTrigger]bool)
	c.owned = nil
	c.mu.Unlock()

	c.loadOwnedEmotes(ctx)

	middleware.Go(c.logger, "battle-events", func() {
		c.listen(loopCtx, ch)
	})

	c.session.Transition(model.ScreenBattleLobby)
	c.notify(c.View())
	return nil
}

func (c *Controller) listen(ctx context.Context, ch realtime.Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch.Events():
			if !ok {
				if ctx.Err() == nil && c.View().Phase == model.PhasePlaying {
					c.logger.Warn("battle channel closed during play")
					c.prompter.Alert("Connection to the battle was lost")
				}
				return
			}
			c.apply(ctx, ev)
		}
	}
}

func (c *Controller) apply(ctx context.Context, ev model.Event) {
	c.mu.Lock()
	before := c.view
	c.view = Reduce(before, ev, c.clock.Now())
	after := c.view
	view := c.renderLocked()
	c.mu.Unlock()

	c.logger.Debug("battle event", slog.String("event", string(ev.Type)), slog.String("phase", string(after.Phase)))

	if before.Phase != model.PhasePlaying && after.Phase == model.PhasePlaying {
		c.beginPlay(ctx, after)
	}
	if before.Phase != model.PhaseFinished && after.Phase == model.PhaseFinished {
		c.finished(after)
	}
	c.notify(view)
}

func (c *Controller) beginPlay(ctx context.Context, view model.BattleView) {
	c.session.Transition(model.ScreenBattle)

	opts := model.StartOptions{Category: view.Category, TimerMinutes: model.BattleTimerMinutes}
	if _, err := c.client.Start(ctx, opts); err != nil {
		c.logger.Error("failed to start battle questions", slog.String("error", err.Error()))
		c.prompter.Alert("Could not load the battle questions")
	}

	c.session.BattleCountdown.Start(ctx, countdownInterval, false, c.countdown)
	c.logger.Info("battle started", slog.Int("battle_id", int(view.ID)))
}

func (c *Controller) countdown(ctx context.Context) bool {
	c.mu.Lock()
	if c.view.Phase != model.PhasePlaying {
		c.mu.Unlock()
		return false
	}
	c.view.Remaining = Countdown(c.view, c.clock.Now())
	remaining := c.view.Remaining
	view := c.renderLocked()
	c.mu.Unlock()

	c.notify(view)
	if remaining > 0 {
		return true
	}
	if err := c.emitEnd(ctx, endCountdown); err != nil {
		c.logger.Error("failed to end battle", slog.String("error", err.Error()))
	}
	return false
}

// emitEnd asks the server to settle the battle, at most once per trigger
func (c *Controller) emitEnd(ctx context.Context, trigger endTrigger) error {
	c.mu.Lock()
	if c.view.Phase != model.PhasePlaying || c.channel == nil || c.endSent[trigger] {
		c.mu.Unlock()
		return nil
	}
	c.endSent[trigger] = true
	ch, id := c.channel, c.view.ID
	c.mu.Unlock()

	c.logger.Info("requesting battle end", slog.Int("battle_id", int(id)), slog.String("trigger", string(trigger)))
	return ch.Emit(ctx, model.EventBattleEnd, model.BattleEndMessage{BattleID: id})
}

func (c *Controller) finished(view model.BattleView) {
	c.session.BattleCountdown.Stop()
	c.session.ReleaseBattle(view.ID)
	c.session.Transition(model.ScreenBattleResult)
	c.logger.Info("battle finished",
		slog.Int("battle_id", int(view.ID)),
		slog.String("winner", view.Result.Winner),
		slog.Int("player1_score", view.Result.Player1Score),
		slog.Int("player2_score", view.Result.Player2Score),
	)
}

// refreshNames fills both player names from the server
func (c *Controller) refreshNames(ctx context.Context) {
	c.mu.Lock()
	id := c.view.ID
	c.mu.Unlock()

	b, err := c.client.Battle(ctx, id)
	if err != nil {
		c.logger.Warn("failed to load battle details", slog.Int("battle_id", int(id)), slog.String("error", err.Error()))
		return
	}

	c.mu.Lock()
	if c.view.ID != id || c.view.Phase == model.PhaseFinished {
		c.mu.Unlock()
		return
	}
	c.view.Player1Name = b.Player1Name
	if b.Player2Name != "" {
		c.view.Player2Name = b.Player2Name
	}
	view := c.renderLocked()
	c.mu.Unlock()
	c.notify(view)
}

// syncStarted covers a start pushed before this client joined the room
func (c *Controller) syncStarted(ctx context.Context) {
	c.mu.Lock()
	id, loopCtx := c.view.ID, c.loopCtx
	c.mu.Unlock()

	b, err := c.client.Battle(ctx, id)
	if err != nil || b.Status != model.BattleStatusPlaying {
		return
	}
	c.apply(loopCtx, model.Event{Type: model.EventBattleStart, ReceivedAt: c.clock.Now(), Payload: model.BattleStartPayload{}})
}

func (c *Controller) loadOwnedEmotes(ctx context.Context) {
	catalog, err := c.client.Catalog(ctx, model.KindEmote)
	if err != nil {
		c.logger.Warn("failed to load owned emotes", slog.String("error", err.Error()))
		return
	}

	owned := make(map[string]bool)
	for _, id := range catalog.Owned() {
		owned[id] = true
	}

	c.mu.Lock()
	c.owned = owned
	c.mu.Unlock()
}

func (c *Controller) notify(view model.BattleView) {
	c.mu.Lock()
	observers := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		observers = append(observers, o)
	}
	c.mu.Unlock()

	for _, o := range observers {
		o.BattleUpdated(view)
	}
}

func (c *Controller) renderLocked() model.BattleView {
	now := c.clock.Now()
	view := c.view
	view.Emotes = c.view.ActiveEmotes(now)
	view.Remaining = Countdown(c.view, now)
	return view
}

func (c *Controller) closeLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Debug("closing battle channel", slog.String("error", err.Error()))
		}
		c.channel = nil
	}
}
