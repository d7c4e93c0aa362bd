package battle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/api"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

const wait = 2 * time.Second

// exhaustedClient reports every question as already answered
type exhaustedClient struct {
	*api.Client
}

func (exhaustedClient) Question(ctx context.Context) (model.QuestionState, error) {
	return model.QuestionState{Finished: true}, nil
}

type player struct {
	name     string
	client   *api.Client
	session  *session.Context
	prompter *testutil.FakePrompter
	ctrl     *Controller
}

type ControllerSuite struct {
	suite.Suite
	env   *stubenv.Env
	alice *player
	bob   *player
	ctx   context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.env = stubenv.New(s.T())
	s.env.Random.QueueString("ABC123", "XYZ789")
	s.ctx = context.Background()
	s.alice = s.newPlayer("alice", nil)
	s.bob = s.newPlayer("bob", nil)
}

func (s *ControllerSuite) newPlayer(name string, wrap func(*api.Client) Client) *player {
	client := s.env.Login(s.T(), name)
	sess := session.New(s.env.Clock, testutil.NopLogger())
	sess.SetUser(model.User{Authenticated: true, Username: name})
	prompter := testutil.NewFakePrompter()

	var c Client = client
	if wrap != nil {
		c = wrap(client)
	}
	ctrl := NewController(c, s.env.Dialer(s.T(), client), sess, prompter, s.env.Clock, testutil.NopLogger())
	s.T().Cleanup(ctrl.Leave)
	s.T().Cleanup(sess.Reset)

	return &player{name: name, client: client, session: sess, prompter: prompter, ctrl: ctrl}
}

func (s *ControllerSuite) waitRoom(id model.BattleID, size int) {
	s.Require().Eventually(func() bool {
		return s.env.Backend.Hub().RoomSize(id) == size
	}, wait, 5*time.Millisecond)
}

func (s *ControllerSuite) waitPlaying(p *player) {
	s.Require().Eventually(func() bool {
		return p.ctrl.View().Phase == model.PhasePlaying && p.session.BattleCountdown.Running()
	}, wait, 5*time.Millisecond)
}

func (s *ControllerSuite) waitFinished(p *player) model.BattleView {
	s.Require().Eventually(func() bool {
		return p.ctrl.View().Phase == model.PhaseFinished
	}, wait, 5*time.Millisecond)
	return p.ctrl.View()
}

func (s *ControllerSuite) openBattle() model.BattleID {
	created, err := s.alice.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)
	s.waitRoom(created.ID, 1)

	_, err = s.bob.ctrl.Join(s.ctx, string(created.Code))
	s.Require().NoError(err)
	s.waitRoom(created.ID, 2)
	return created.ID
}

func (s *ControllerSuite) startBattle() model.BattleID {
	id := s.openBattle()
	s.Require().NoError(s.alice.ctrl.Ready(s.ctx))
	s.Require().NoError(s.bob.ctrl.Ready(s.ctx))
	s.waitPlaying(s.alice)
	s.waitPlaying(s.bob)
	return id
}

// Lobby tests

func (s *ControllerSuite) TestCreateBattle() {
	view, err := s.alice.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)

	s.Equal(model.PhaseWaiting, view.Phase)
	s.Equal(model.BattleCode("ABC123"), view.Code)
	s.Equal(model.RoleHost, view.Role)
	s.Equal("alice", view.Player1Name)
	s.Equal(view.ID, s.alice.session.BattleID())
	s.Equal(model.ScreenBattleLobby, s.alice.session.Screen())
}

func (s *ControllerSuite) TestCreateUsesSelectedCategory() {
	_, err := s.alice.ctrl.Create(s.ctx, "")
	s.ErrorIs(err, model.ErrNoCategory)

	s.alice.session.SetCategory("anglais")
	view, err := s.alice.ctrl.Create(s.ctx, "")
	s.Require().NoError(err)
	s.Equal(model.CategoryCode("anglais"), view.Category)
}

func (s *ControllerSuite) TestOneBattleAtATime() {
	_, err := s.alice.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)

	_, err = s.alice.ctrl.Create(s.ctx, "maths")
	s.ErrorIs(err, model.ErrBattleInProgress)
}

func (s *ControllerSuite) TestJoinByCode() {
	created, err := s.alice.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)
	s.waitRoom(created.ID, 1)

	view, err := s.bob.ctrl.Join(s.ctx, "  abc123 ")
	s.Require().NoError(err)
	s.Equal(model.RoleGuest, view.Role)
	s.Equal("alice", view.Player1Name)
	s.Equal("bob", view.Player2Name)
	s.Equal(model.BattleCode("ABC123"), view.Code)

	s.Eventually(func() bool {
		return s.alice.ctrl.View().Player2Name == "bob"
	}, wait, 5*time.Millisecond)
}

func (s *ControllerSuite) TestJoinValidatesCodeLocally() {
	for _, code := range []string{"", "ABC", "ABC1234"} {
		_, err := s.bob.ctrl.Join(s.ctx, code)
		s.ErrorIs(err, model.ErrInvalidJoinCode, code)
	}
	s.Zero(s.bob.session.BattleID())
}

func (s *ControllerSuite) TestJoinUnknownCode() {
	_, err := s.bob.ctrl.Join(s.ctx, "ZZZZZZ")
	s.Require().Error(err)
	s.Zero(s.bob.session.BattleID())
	s.Equal(model.PhaseIdle, s.bob.ctrl.View().Phase)
}

func (s *ControllerSuite) TestReadyIsOptimistic() {
	s.openBattle()

	s.Require().NoError(s.alice.ctrl.Ready(s.ctx))
	view := s.alice.ctrl.View()
	s.True(view.LocalReady)
	s.Equal(model.PhaseWaiting, view.Phase)

	s.Eventually(func() bool {
		return len(s.env.Backend.RecordedOf(model.EventReady)) == 1
	}, wait, 5*time.Millisecond)
}

func (s *ControllerSuite) TestCancelWaitingBattle() {
	created, err := s.alice.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)

	s.Require().NoError(s.alice.ctrl.Cancel(s.ctx))
	s.Equal(model.PhaseIdle, s.alice.ctrl.View().Phase)
	s.Zero(s.alice.session.BattleID())
	s.Equal(model.ScreenHome, s.alice.session.Screen())

	_, ok := s.env.Backend.Battle(created.ID)
	s.False(ok)
}

// Play tests

func (s *ControllerSuite) TestBattleFlow() {
	s.startBattle()
	s.Equal(model.ScreenBattle, s.alice.session.Screen())
	s.Equal(model.BattleDuration, s.alice.ctrl.View().Remaining)

	q, err := s.alice.ctrl.LoadQuestion(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(q)
	s.Equal("Dérivée de x² ?", q.Text)

	result, err := s.alice.ctrl.Answer(s.ctx, true)
	s.Require().NoError(err)
	s.Equal(10, result.Points)

	s.Eventually(func() bool {
		return s.bob.ctrl.View().Player1Score == 10
	}, wait, 5*time.Millisecond)

	answers := s.env.Backend.RecordedOf(model.EventAnswer)
	s.Require().Len(answers, 1)
	s.JSONEq(`{"battle_id": 1, "is_correct": true, "points": 10}`, string(answers[0].Data))

	s.env.Clock.Advance(model.BattleDuration)

	aliceView := s.waitFinished(s.alice)
	bobView := s.waitFinished(s.bob)
	s.Require().NotNil(aliceView.Result)
	s.Equal("alice", aliceView.Result.Winner)
	s.Equal(10, bobView.Result.Player1Score)
	s.Equal(0, bobView.Result.Player2Score)

	s.Eventually(func() bool {
		return s.alice.session.Screen() == model.ScreenBattleResult && !s.alice.session.BattleCountdown.Running()
	}, wait, 5*time.Millisecond)
	s.Zero(s.alice.session.BattleID())

	_, err = s.alice.ctrl.Answer(s.ctx, true)
	s.ErrorIs(err, model.ErrNoActiveBattle)
}

func (s *ControllerSuite) TestCountdownEndsOncePerPlayer() {
	s.startBattle()

	s.env.Clock.Advance(model.BattleDuration)
	s.waitFinished(s.alice)
	s.waitFinished(s.bob)

	s.env.Clock.Advance(model.BattleDuration)
	s.Eventually(func() bool {
		return len(s.env.Backend.RecordedOf(model.EventBattleEnd)) == 2
	}, wait, 5*time.Millisecond)
	s.Never(func() bool {
		return len(s.env.Backend.RecordedOf(model.EventBattleEnd)) > 2
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func (s *ControllerSuite) TestExhaustedQuestionsEndOnce() {
	carol := s.newPlayer("carol", func(c *api.Client) Client { return exhaustedClient{c} })

	created, err := carol.ctrl.Create(s.ctx, "maths")
	s.Require().NoError(err)
	s.waitRoom(created.ID, 1)
	_, err = s.bob.ctrl.Join(s.ctx, string(created.Code))
	s.Require().NoError(err)
	s.waitRoom(created.ID, 2)
	s.Require().NoError(carol.ctrl.Ready(s.ctx))
	s.Require().NoError(s.bob.ctrl.Ready(s.ctx))
	s.waitPlaying(carol)

	for range 2 {
		q, err := carol.ctrl.LoadQuestion(s.ctx)
		s.Require().NoError(err)
		s.Nil(q)
	}

	s.Eventually(func() bool {
		return len(s.env.Backend.RecordedOf(model.EventBattleEnd)) == 1
	}, wait, 5*time.Millisecond)

	// the early end request is ignored, so the result still waits for the clock
	s.Equal(model.PhasePlaying, carol.ctrl.View().Phase)

	s.env.Clock.Advance(model.BattleDuration)
	view := s.waitFinished(carol)
	s.True(view.Result.Tie())
}

func (s *ControllerSuite) TestEmotes() {
	s.env.Backend.GrantEmote("alice", "fire")
	s.startBattle()

	s.ErrorIs(s.bob.ctrl.SendEmote(s.ctx, "fire"), model.ErrEmoteNotOwned)
	s.Require().NoError(s.alice.ctrl.SendEmote(s.ctx, "fire"))

	s.Eventually(func() bool {
		return len(s.bob.ctrl.View().Emotes) == 1
	}, wait, 5*time.Millisecond)
	emote := s.bob.ctrl.View().Emotes[0]
	s.Equal("alice", emote.Sender)
	s.Equal("🔥", emote.Emoji)
	s.Empty(s.alice.ctrl.View().Emotes)

	s.env.Clock.Advance(model.EmoteDisplayTime)
	s.Empty(s.bob.ctrl.View().Emotes)
}

func (s *ControllerSuite) TestObserversSeeUpdates() {
	views := make(chan model.BattleView, 64)
	unsubscribe := s.alice.ctrl.Subscribe(ObserverFunc(func(v model.BattleView) { views <- v }))
	defer unsubscribe()

	s.startBattle()

	timeout := time.After(wait)
	for {
		select {
		case v := <-views:
			if v.Phase == model.PhasePlaying {
				return
			}
		case <-timeout:
			s.FailNow("no playing update observed")
		}
	}
}

func (s *ControllerSuite) TestLeave() {
	s.startBattle()

	s.alice.ctrl.Leave()
	s.Equal(model.PhaseIdle, s.alice.ctrl.View().Phase)
	s.Equal(model.ScreenHome, s.alice.session.Screen())
	s.False(s.alice.session.BattleCountdown.Running())
	s.Zero(s.alice.session.BattleID())
}
