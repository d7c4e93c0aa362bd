package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// It lets several machines share one login profile.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, profileKey(profile.Name), data, s.cfg.ProfileTTL)
	pipe.SAdd(ctx, profileIndexKey(), string(profile.Name))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetProfile(ctx context.Context, name model.ProfileName) (*model.Profile, error) {
	data, err := s.client.Get(ctx, profileKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrProfileNotFound
		}
		return nil, err
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Storage) DeleteProfile(ctx context.Context, name model.ProfileName) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, profileKey(name))
	pipe.SRem(ctx, profileIndexKey(), string(name))
	_, err := pipe.Exec(ctx)
	return err
}

// ListProfiles returns indexed profiles whose key still exists; expired entries are pruned
func (s *Storage) ListProfiles(ctx context.Context) ([]model.ProfileName, error) {
	members, err := s.client.SMembers(ctx, profileIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	names := make([]model.ProfileName, 0, len(members))
	var stale []any
	for _, m := range members {
		n, err := s.client.Exists(ctx, profileKey(model.ProfileName(m))).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			stale = append(stale, m)
			continue
		}
		names = append(names, model.ProfileName(m))
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, profileIndexKey(), stale...).Err(); err != nil {
			return nil, err
		}
	}

	slices.Sort(names)
	return names, nil
}
