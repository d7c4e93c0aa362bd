package bot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/bot"
	"github.com/mcoot/quizgame/internal/services/game"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

type ServiceSuite struct {
	suite.Suite
	env        *stubenv.Env
	controller *game.Controller
	botService *bot.Service
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.env = stubenv.New(s.T())
	logger := testutil.NopLogger()
	sess := session.New(s.env.Clock, logger)
	s.T().Cleanup(sess.Reset)

	s.controller = game.NewController(s.env.Login(s.T(), "alice"), sess, testutil.NewFakePrompter(), logger)
	s.botService = bot.NewService(bot.DefaultStrategies(s.env.Random), logger)
	s.ctx = context.Background()

	_, err := s.controller.Start(s.ctx, model.StartOptions{Category: "maths"})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestUnknownStrategy() {
	_, _, err := s.botService.PlayGame(s.ctx, s.controller, "psychic")
	s.Require().Error(err)
	s.Contains(err.Error(), "unknown bot strategy")
}

func (s *ServiceSuite) TestAcceptStrategyPlaysPerfectGame() {
	// the stub proposes the correct answer first
	actions, end, err := s.botService.PlayGame(s.ctx, s.controller, model.BotStrategyAccept)
	s.Require().NoError(err)
	s.Require().NotNil(end)

	s.Equal(30, end.Score)
	s.Require().Len(actions, 4)
	s.Equal(bot.ActionAccept, actions[0].Type)
	s.Equal("2x", actions[0].Proposed)
	s.Equal(10, actions[0].Points)
	s.Equal(bot.ActionGameComplete, actions[3].Type)
}

func (s *ServiceSuite) TestRejectStrategyQueuesEveryQuestionForRevision() {
	actions, end, err := s.botService.PlayGame(s.ctx, s.controller, model.BotStrategyReject)
	s.Require().NoError(err)
	s.Require().NotNil(end)

	s.Equal(0, end.Score)
	s.True(end.HasRevision)
	s.Equal(3, end.RevisionCount)
	// every proposal of every question is refused
	s.Len(actions, 3+3+3+1)
}

func (s *ServiceSuite) TestRandomStrategy() {
	// reject "2x", then accept "x"; the remaining questions accept on an empty queue
	s.env.Random.QueueIntn(1, 0)

	actions, end, err := s.botService.PlayGame(s.ctx, s.controller, model.BotStrategyRandom)
	s.Require().NoError(err)
	s.Require().NotNil(end)

	s.Equal(bot.ActionReject, actions[0].Type)
	s.Equal(bot.ActionAccept, actions[1].Type)
	s.Equal(-5, actions[1].Points)
	s.Equal(15, end.Score)
}
