package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/quizgame/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.ProfileTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSaveAndGetProfile() {
	profile := &model.Profile{
		Name:      "default",
		ServerURL: "http://localhost:5001",
		Username:  "alice",
		Cookies:   []model.SessionCookie{{Name: "session", Value: "abc"}},
		Category:  "histoire",
		UpdatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	s.Require().NoError(s.storage.SaveProfile(s.ctx, profile))

	got, err := s.storage.GetProfile(s.ctx, "default")
	s.Require().NoError(err)
	s.Equal(*profile, *got)
	s.True(s.mini.Exists("quizgame:profile:default"))
}

func (s *StorageSuite) TestGetProfileNotFound() {
	_, err := s.storage.GetProfile(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProfileNotFound)
}

func (s *StorageSuite) TestProfileTTL() {
	s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Name: "default"}))

	s.Equal(time.Hour, s.mini.TTL("quizgame:profile:default"))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetProfile(s.ctx, "default")
	s.ErrorIs(err, model.ErrProfileNotFound)

	names, err := s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(names)

	s.False(s.mini.Exists("quizgame:idx:profiles"))
}

func (s *StorageSuite) TestDeleteProfile() {
	s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Name: "a"}))
	s.Require().NoError(s.storage.SaveProfile(s.ctx, &model.Profile{Name: "b"}))

	s.Require().NoError(s.storage.DeleteProfile(s.ctx, "a"))

	_, err := s.storage.GetProfile(s.ctx, "a")
	s.ErrorIs(err, model.ErrProfileNotFound)

	names, err := s.storage.ListProfiles(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.ProfileName{"b"}, names)
}
