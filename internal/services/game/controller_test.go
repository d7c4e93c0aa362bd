package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

type recordingObserver struct {
	mu    sync.Mutex
	ticks []TimerView
	ends  []EndView
}

func (o *recordingObserver) TimerTicked(view TimerView) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ticks = append(o.ticks, view)
}

func (o *recordingObserver) GameEnded(view EndView) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ends = append(o.ends, view)
}

func (o *recordingObserver) lastTick() (TimerView, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.ticks) == 0 {
		return TimerView{}, false
	}
	return o.ticks[len(o.ticks)-1], true
}

func (o *recordingObserver) endings() []EndView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]EndView(nil), o.ends...)
}

type ControllerSuite struct {
	suite.Suite
	env        *stubenv.Env
	session    *session.Context
	prompter   *testutil.FakePrompter
	observer   *recordingObserver
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.env = stubenv.New(s.T())
	s.session = session.New(s.env.Clock, testutil.NopLogger())
	s.prompter = testutil.NewFakePrompter()
	s.observer = &recordingObserver{}
	s.controller = NewController(s.env.Login(s.T(), "alice"), s.session, s.prompter, testutil.NopLogger())
	s.controller.SetObserver(s.observer)
	s.ctx = context.Background()
	s.T().Cleanup(s.session.Reset)
}

func (s *ControllerSuite) start(timer int) model.GameInfo {
	info, err := s.controller.Start(s.ctx, model.StartOptions{Category: "maths", TimerMinutes: timer})
	s.Require().NoError(err)
	return info
}

func (s *ControllerSuite) question() QuestionView {
	view, end, err := s.controller.LoadQuestion(s.ctx)
	s.Require().NoError(err)
	s.Require().Nil(end)
	return view
}

func (s *ControllerSuite) answer(accept bool) AnswerView {
	view, err := s.controller.Answer(s.ctx, accept)
	s.Require().NoError(err)
	return view
}

// Home tests

func (s *ControllerSuite) TestLoadCategoriesSelectsFirst() {
	categories, err := s.controller.LoadCategories(s.ctx)
	s.Require().NoError(err)
	s.Len(categories, 4)
	s.Equal(model.CategoryCode("maths"), s.session.Category())
}

func (s *ControllerSuite) TestLoadCategoriesKeepsSelection() {
	s.session.SetCategory("anglais")
	_, err := s.controller.LoadCategories(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.CategoryCode("anglais"), s.session.Category())
}

func (s *ControllerSuite) TestSelectCategoryReloadsHome() {
	home, err := s.controller.SelectCategory(s.ctx, "physique_thermo")
	s.Require().NoError(err)

	s.Equal(model.CategoryCode("physique_thermo"), home.Selected)
	s.Equal(2, home.Stats.TotalQuestions)
	s.Equal(2, home.Stats.NeverSeenCount)
	s.False(home.HasSavedGame)
}

func (s *ControllerSuite) TestSelectUnknownCategory() {
	_, err := s.controller.SelectCategory(s.ctx, "chimie")
	s.ErrorIs(err, model.ErrNoCategory)
}

// Game loop tests

func (s *ControllerSuite) TestPlayToPerfectEnd() {
	info := s.start(0)
	s.Equal(3, info.TotalQuestions)
	s.Equal(model.ScreenGame, s.session.Screen())
	s.False(s.session.GameTimer.Running())

	for i := 1; i <= 3; i++ {
		view := s.question()
		s.Equal(i, view.Question.Number)
		s.False(view.Timed)

		result := s.answer(true)
		s.True(result.Result.Correct)
		s.Zero(result.AutoAdvance)
	}

	_, end, err := s.controller.LoadQuestion(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(end)
	s.Equal(30, end.Score)
	s.Equal(model.RatingPerfect, end.Rating)
	s.False(end.HasRevision)
	s.Equal(model.ScreenEnd, s.session.Screen())
	s.Len(s.observer.endings(), 1)

	global, err := s.controller.GlobalLeaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(30, global.CurrentUserScore)
}

func (s *ControllerSuite) TestCompletionReportedOnce() {
	s.start(0)
	for range 3 {
		s.question()
		s.answer(true)
	}

	for range 2 {
		_, end, err := s.controller.LoadQuestion(s.ctx)
		s.Require().NoError(err)
		s.Require().NotNil(end)
	}

	global, err := s.controller.GlobalLeaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(30, global.CurrentUserScore)
}

func (s *ControllerSuite) TestRejectAutoAdvances() {
	s.start(0)
	first := s.question()
	s.Equal("2x", first.Question.ProposedAnswer)

	rejected := s.answer(false)
	s.False(rejected.Result.NextQuestion)
	s.Equal(model.AutoAdvanceDelay, rejected.AutoAdvance)

	next := s.question()
	s.Equal(1, next.Question.Number)
	s.Equal("x", next.Question.ProposedAnswer)
}

func (s *ControllerSuite) TestWrongAnswerShowsCorrectOne() {
	s.start(0)
	s.question()
	s.answer(false)
	s.question()

	result := s.answer(true)
	s.Equal(-5, result.Result.Points)
	s.Contains(result.Message, "The correct answer was: 2x")
	s.Equal(-5, s.controller.Score())
}

func (s *ControllerSuite) TestAnswerWithoutGame() {
	_, err := s.controller.Answer(s.ctx, true)
	s.ErrorIs(err, model.ErrNoActiveGame)

	_, _, err = s.controller.LoadQuestion(s.ctx)
	s.ErrorIs(err, model.ErrNoActiveGame)
}

func (s *ControllerSuite) TestRevisionAfterMistake() {
	s.start(0)
	for range 3 {
		s.question()
		s.answer(false)
	}
	for range 2 {
		s.question()
		s.answer(true)
	}

	_, end, err := s.controller.LoadQuestion(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(end)
	s.True(end.HasRevision)
	s.Equal(1, end.RevisionCount)
	s.Equal(model.RatingGood, end.Rating)

	total, err := s.controller.StartRevision(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal(model.ScreenGame, s.session.Screen())

	view := s.question()
	s.Equal("Dérivée de x² ?", view.Question.Text)
	s.answer(true)

	_, end, err = s.controller.LoadQuestion(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(end)
	s.Len(s.observer.endings(), 2)
}

// Save tests

func (s *ControllerSuite) TestSaveAndQuit() {
	s.start(0)
	s.question()
	s.answer(true)

	s.Require().NoError(s.controller.SaveAndQuit(s.ctx))
	s.Equal(model.ScreenHome, s.session.Screen())
	s.True(s.controller.HasSavedGame())
	s.False(s.controller.Active())
}

func (s *ControllerSuite) TestSaveAndQuitDeclined() {
	s.start(0)
	s.prompter.QueueConfirm(false)

	s.ErrorIs(s.controller.SaveAndQuit(s.ctx), model.ErrDeclined)
	s.Equal(model.ScreenGame, s.session.Screen())
	s.True(s.controller.Active())
}

func (s *ControllerSuite) TestStartOverSaveNeedsConfirm() {
	s.start(0)
	s.Require().NoError(s.controller.SaveAndQuit(s.ctx))

	s.prompter.QueueConfirm(false)
	_, err := s.controller.Start(s.ctx, model.StartOptions{Category: "maths"})
	s.ErrorIs(err, model.ErrDeclined)
	s.Equal(model.ScreenHome, s.session.Screen())
	s.Equal(2, s.prompter.ConfirmCount())

	s.start(0)
	s.Equal(3, s.prompter.ConfirmCount())
}

func (s *ControllerSuite) TestResume() {
	s.start(0)
	s.question()
	s.answer(true)
	s.Require().NoError(s.controller.SaveAndQuit(s.ctx))

	info, err := s.controller.Resume(s.ctx)
	s.Require().NoError(err)
	s.Equal(10, info.Score)
	s.Equal(model.ScreenGame, s.session.Screen())

	view := s.question()
	s.Equal(2, view.Question.Number)
}

func (s *ControllerSuite) TestResumeWithoutSave() {
	s.session.SetCategory("maths")
	_, err := s.controller.Resume(s.ctx)
	s.Require().Error(err)
}

// Timer tests

func (s *ControllerSuite) TestTimedGameExpires() {
	s.start(5)
	s.True(s.session.GameTimer.Running())

	view := s.question()
	s.True(view.Timed)
	s.answer(true)

	s.Eventually(func() bool {
		tick, ok := s.observer.lastTick()
		return ok && tick.Label == "05:00"
	}, time.Second, 5*time.Millisecond)

	s.env.Clock.Advance(4*time.Minute + 30*time.Second)
	s.Eventually(func() bool {
		tick, ok := s.observer.lastTick()
		return ok && tick.Low && tick.Label == "00:30"
	}, time.Second, 5*time.Millisecond)

	s.env.Clock.Advance(30 * time.Second)
	s.Eventually(func() bool {
		return len(s.observer.endings()) == 1
	}, time.Second, 5*time.Millisecond)

	end := s.observer.endings()[0]
	s.True(end.TimedOut)
	s.Equal(10, end.Score)
	s.Equal([]string{"⏰ Time's up!"}, s.prompter.AlertMessages())
	s.Eventually(func() bool { return !s.session.GameTimer.Running() }, time.Second, 5*time.Millisecond)
	s.Equal(model.ScreenEnd, s.session.Screen())

	board, err := s.controller.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(board.Entries, 1)
	s.Equal(10, board.Entries[0].Score)
}

func (s *ControllerSuite) TestOneMinuteTimerTurnsLowBelowSixtySeconds() {
	s.start(1)
	s.question()

	s.Eventually(func() bool {
		tick, ok := s.observer.lastTick()
		return ok && tick.Label == "01:00"
	}, time.Second, 5*time.Millisecond)
	tick, _ := s.observer.lastTick()
	s.Equal(60*time.Second, tick.Remaining)
	s.False(tick.Low, "exactly a minute left is not low")

	s.env.Clock.Advance(time.Second)
	s.Eventually(func() bool {
		tick, ok := s.observer.lastTick()
		return ok && tick.Label == "00:59"
	}, time.Second, 5*time.Millisecond)
	tick, _ = s.observer.lastTick()
	s.True(tick.Low)
}

// Hint tests

func (s *ControllerSuite) TestHintsRequireBalance() {
	s.start(0)
	view := s.question()
	s.False(view.HintsAvailable())

	_, err := s.controller.UseHint(s.ctx)
	s.ErrorIs(err, model.ErrNoHints)
}

func (s *ControllerSuite) TestUseHint() {
	s.env.Backend.SetHints("alice", 2)
	s.start(0)
	view := s.question()
	s.Equal(2, view.HintCount)

	hint, err := s.controller.UseHint(s.ctx)
	s.Require().NoError(err)
	s.True(hint.Correct)
	s.Equal(1, hint.HintsRemaining)
}
