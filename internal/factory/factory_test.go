package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage/memory"
	"github.com/mcoot/quizgame/internal/testutil"
	"github.com/mcoot/quizgame/internal/testutil/stubenv"
)

type FactorySuite struct {
	suite.Suite
	env   *stubenv.Env
	store *memory.Storage
	ctx   context.Context
}

func TestFactorySuite(t *testing.T) {
	suite.Run(t, new(FactorySuite))
}

func (s *FactorySuite) SetupTest() {
	s.env = stubenv.New(s.T())
	s.store = memory.New()
	s.ctx = context.Background()
}

func (s *FactorySuite) TestNewRequiresPrompter() {
	_, err := New(s.ctx, Config{StorageType: StorageTypeMemory})
	s.Require().Error(err)
}

func (s *FactorySuite) TestNewRejectsUnknownStorage() {
	_, err := New(s.ctx, Config{StorageType: "tape", Prompter: testutil.NewFakePrompter()})
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid StorageType")
}

func (s *FactorySuite) TestNewRequiresRedisConfig() {
	_, err := New(s.ctx, Config{StorageType: StorageTypeRedis, Prompter: testutil.NewFakePrompter()})
	s.Require().Error(err)
}

func (s *FactorySuite) TestNewDefaultsServerURL() {
	app, err := New(s.ctx, Config{StorageType: StorageTypeMemory, Prompter: testutil.NewFakePrompter()})
	s.Require().NoError(err)
	defer func() { _ = app.Close() }()

	s.Equal(DefaultServerURL, app.Profile.ServerURL)
	s.Equal(model.DefaultProfile, app.Profile.Name)
}

func (s *FactorySuite) TestSessionSurvivesBetweenInvocations() {
	s.env.Backend.AddUser("alice", stubenv.DefaultPassword)

	first := NewTestAppFor(s.T(), s.env, s.store, model.DefaultProfile)
	_, err := first.AuthService.Login(s.ctx, "alice", stubenv.DefaultPassword)
	s.Require().NoError(err)
	_, err = first.GameController.SelectCategory(s.ctx, "anglais")
	s.Require().NoError(err)
	s.Require().NoError(first.SaveProfile(s.ctx))

	second := NewTestAppFor(s.T(), s.env, s.store, model.DefaultProfile)
	s.Equal("alice", second.Session.User().Username)
	s.Equal(model.CategoryCode("anglais"), second.Session.Category())

	user, err := second.AuthService.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.True(user.Authenticated)
	s.Equal("alice", user.Username)
}

func (s *FactorySuite) TestProfilesAreIndependent() {
	s.env.Backend.AddUser("alice", stubenv.DefaultPassword)

	first := NewTestAppFor(s.T(), s.env, s.store, "work")
	_, err := first.AuthService.Login(s.ctx, "alice", stubenv.DefaultPassword)
	s.Require().NoError(err)
	s.Require().NoError(first.SaveProfile(s.ctx))

	other := NewTestAppFor(s.T(), s.env, s.store, "home")
	user, err := other.AuthService.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.False(user.Authenticated)
}

func (s *FactorySuite) TestServerChangeDropsSession() {
	s.Require().NoError(s.store.SaveProfile(s.ctx, &model.Profile{
		Name:      model.DefaultProfile,
		ServerURL: "http://elsewhere.invalid",
		Username:  "alice",
		Cookies:   []model.SessionCookie{{Name: "session", Value: "stale"}},
		Category:  "maths",
	}))

	app := NewTestAppFor(s.T(), s.env, s.store, model.DefaultProfile)
	s.Equal(s.env.Server.URL, app.Profile.ServerURL)
	s.Empty(app.Profile.Cookies)
	s.Empty(app.Session.User().Username)
	s.Equal(model.CategoryCode("maths"), app.Session.Category())
}

func (s *FactorySuite) TestEquippedAppearanceIsSaved() {
	app := NewTestAppFor(s.T(), s.env, s.store, model.DefaultProfile)
	s.env.Backend.AddUser("alice", stubenv.DefaultPassword)
	_, err := app.AuthService.Login(s.ctx, "alice", stubenv.DefaultPassword)
	s.Require().NoError(err)
	s.env.Backend.SetPoints("alice", 500)

	_, _, err = app.ShopService.Buy(s.ctx, model.KindTheme, "ocean")
	s.Require().NoError(err)
	_, _, err = app.ShopService.Equip(s.ctx, model.KindTheme, "ocean")
	s.Require().NoError(err)
	s.Require().NoError(app.SaveProfile(s.ctx))

	stored, err := s.store.GetProfile(s.ctx, model.DefaultProfile)
	s.Require().NoError(err)
	s.Contains(stored.Appearance.ThemeGradient, "#1BFFFF")
}
