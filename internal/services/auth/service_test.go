package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

type ServiceSuite struct {
	suite.Suite
	env      *stubenv.Env
	session  *session.Context
	prompter *testutil.FakePrompter
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.env = stubenv.New(s.T())
	s.session = session.New(s.env.Clock, testutil.NopLogger())
	s.prompter = testutil.NewFakePrompter()
	s.service = New(s.env.NewClient(s.T()), s.session, s.prompter, testutil.NopLogger())
	s.ctx = context.Background()
}

// Register tests

func (s *ServiceSuite) TestRegisterSignsIn() {
	user, err := s.service.Register(s.ctx, "  alice ", "secret1", "secret1")
	s.Require().NoError(err)

	s.Equal("alice", user.Username)
	s.Equal("alice", s.session.User().Username)
	s.Equal(model.ScreenHome, s.session.Screen())
}

func (s *ServiceSuite) TestRegisterRejectsEmptyFields() {
	_, err := s.service.Register(s.ctx, "", "secret1", "secret1")
	s.ErrorIs(err, model.ErrMissingCredentials)

	_, err = s.service.Register(s.ctx, "alice", "secret1", "")
	s.ErrorIs(err, model.ErrMissingCredentials)
}

func (s *ServiceSuite) TestRegisterRejectsMismatchBeforeRequest() {
	_, err := s.service.Register(s.ctx, "alice", "secret1", "secret2")
	s.ErrorIs(err, model.ErrPasswordMismatch)

	// nothing reached the server, so the name is still free
	_, err = s.service.Register(s.ctx, "alice", "secret1", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterSurfacesServerError() {
	_, err := s.service.Register(s.ctx, "alice", "abc", "abc")
	s.Require().Error(err)
	s.Equal(model.ScreenAuth, s.session.Screen())
}

// Login tests

func (s *ServiceSuite) TestLogin() {
	s.env.Backend.AddUser("alice", "password")

	user, err := s.service.Login(s.ctx, "alice", "password")
	s.Require().NoError(err)
	s.True(user.Authenticated)
	s.Equal(model.ScreenHome, s.session.Screen())
}

func (s *ServiceSuite) TestLoginWithBadPassword() {
	s.env.Backend.AddUser("alice", "password")

	_, err := s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, model.ErrNotAuthenticated)
	s.False(s.session.User().Authenticated)
}

func (s *ServiceSuite) TestLoginRequiresBothFields() {
	_, err := s.service.Login(s.ctx, " ", "password")
	s.ErrorIs(err, model.ErrMissingCredentials)
}

// Session tests

func (s *ServiceSuite) TestRequireUserWhenAnonymous() {
	_, err := s.service.RequireUser(s.ctx)
	s.ErrorIs(err, model.ErrNotAuthenticated)
	s.Equal(model.ScreenAuth, s.session.Screen())
}

func (s *ServiceSuite) TestRequireUserAfterLogin() {
	s.env.Backend.AddUser("alice", "password")
	_, err := s.service.Login(s.ctx, "alice", "password")
	s.Require().NoError(err)

	user, err := s.service.RequireUser(s.ctx)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

// Logout tests

func (s *ServiceSuite) TestLogoutDeclined() {
	s.env.Backend.AddUser("alice", "password")
	_, err := s.service.Login(s.ctx, "alice", "password")
	s.Require().NoError(err)

	s.prompter.QueueConfirm(false)
	s.ErrorIs(s.service.Logout(s.ctx), model.ErrDeclined)

	user, err := s.service.RequireUser(s.ctx)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
}

func (s *ServiceSuite) TestLogoutResetsSession() {
	s.env.Backend.AddUser("alice", "password")
	_, err := s.service.Login(s.ctx, "alice", "password")
	s.Require().NoError(err)
	s.session.SetCategory("maths")

	s.Require().NoError(s.service.Logout(s.ctx))
	s.Equal(1, s.prompter.ConfirmCount())
	s.Equal(model.ScreenAuth, s.session.Screen())
	s.Empty(s.session.Category())

	_, err = s.service.RequireUser(s.ctx)
	s.ErrorIs(err, model.ErrNotAuthenticated)
}
