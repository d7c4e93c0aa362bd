package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage"
)

const profileExt = ".json"

// Storage keeps one JSON file per profile under a directory
type Storage struct {
	mu  sync.Mutex
	dir string
}

// New creates a file storage rooted at dir. The directory is created on first save.
func New(dir string) *Storage {
	return &Storage{dir: dir}
}

// DefaultDir returns ~/.quizgame/profiles
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".quizgame", "profiles")
	}
	return filepath.Join(home, ".quizgame", "profiles")
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) path(name model.ProfileName) (string, error) {
	n := string(name)
	if n == "" || strings.ContainsAny(n, `/\`) || n == "." || n == ".." {
		return "", fmt.Errorf("invalid profile name %q", name)
	}
	return filepath.Join(s.dir, n+profileExt), nil
}

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	path, err := s.path(profile.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	// Write then rename so a crash never leaves a truncated profile
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Storage) GetProfile(ctx context.Context, name model.ProfileName) (*model.Profile, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("corrupt profile %s: %w", name, err)
	}
	return &profile, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, name model.ProfileName) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]model.ProfileName, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var names []model.ProfileName
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), profileExt) {
			continue
		}
		names = append(names, model.ProfileName(strings.TrimSuffix(e.Name(), profileExt)))
	}
	slices.Sort(names)
	return names, nil
}
