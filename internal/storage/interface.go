package storage

import (
	"context"

	"github.com/mcoot/quizgame/internal/model"
)

// Storage persists client profiles between command invocations
type Storage interface {
	SaveProfile(ctx context.Context, profile *model.Profile) error
	GetProfile(ctx context.Context, name model.ProfileName) (*model.Profile, error)
	DeleteProfile(ctx context.Context, name model.ProfileName) error
	// ListProfiles returns profile names in lexical order
	ListProfiles(ctx context.Context) ([]model.ProfileName, error)
}
