package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetProfile() {
	profile := &model.Profile{
		Name:      "alice",
		ServerURL: "http://localhost:5001",
		Username:  "alice",
		Cookies:   []model.SessionCookie{{Name: "session", Value: "abc"}},
		Category:  "histoire",
		UpdatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	got, err := s.storage.GetProfile(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(*profile, *got)
}

func (s *StorageSuite) TestGetProfileNotFound() {
	_, err := s.storage.GetProfile(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestStoredProfileIsIsolatedFromCaller() {
	profile := &model.Profile{Name: "alice", Cookies: []model.SessionCookie{{Name: "session", Value: "abc"}}}
	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	profile.Cookies[0].Value = "changed"
	profile.Username = "mallory"

	got, err := s.storage.GetProfile(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("abc", got.Cookies[0].Value)
	s.Empty(got.Username)
}

func (s *StorageSuite) TestDeleteAndListProfiles() {
	for _, name := range []model.ProfileName{"zed", "alice", "bob"} {
		s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Name: name}))
	}

	names, err := s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.ProfileName{"alice", "bob", "zed"}, names)

	s.Require().NoError(s.storage.DeleteProfile(s.ctx, "bob"))
	_, err = s.storage.GetProfile(s.ctx, "bob")
	s.ErrorIs(err, model.ErrProfileNotFound)

	names, err = s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.ProfileName{"alice", "zed"}, names)
}
