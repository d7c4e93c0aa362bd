package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu       sync.RWMutex
	profiles map[model.ProfileName]model.Profile
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		profiles: make(map[model.ProfileName]model.Profile),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *profile
	p.Cookies = slices.Clone(profile.Cookies)
	s.profiles[p.Name] = p
	return nil
}

func (s *Storage) GetProfile(ctx context.Context, name model.ProfileName) (*model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	if !ok {
		return nil, model.ErrProfileNotFound
	}
	p.Cookies = slices.Clone(p.Cookies)
	return &p, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, name model.ProfileName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, name)
	return nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]model.ProfileName, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]model.ProfileName, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
