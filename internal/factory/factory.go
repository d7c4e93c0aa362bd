package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/quizgame/internal/api"
	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/dependencies/random"
	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/realtime"
	"github.com/mcoot/quizgame/internal/services/auth"
	"github.com/mcoot/quizgame/internal/services/battle"
	"github.com/mcoot/quizgame/internal/services/bot"
	"github.com/mcoot/quizgame/internal/services/game"
	"github.com/mcoot/quizgame/internal/services/matchmaking"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/services/shop"
	"github.com/mcoot/quizgame/internal/storage"
	"github.com/mcoot/quizgame/internal/storage/file"
	"github.com/mcoot/quizgame/internal/storage/memory"
	redisstorage "github.com/mcoot/quizgame/internal/storage/redis"
	"github.com/mcoot/quizgame/internal/ui"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// DefaultServerURL is the local development server
const DefaultServerURL = "http://127.0.0.1:5000"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Profile *model.Profile

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Transport
	Client *api.Client
	Dialer *realtime.Dialer

	// Presentation hooks
	Prompter   ui.Prompter
	Appearance ui.Appearance

	// Services
	Session            *session.Context
	AuthService        *auth.Service
	GameController     *game.Controller
	BattleController   *battle.Controller
	MatchmakingService *matchmaking.Service
	ShopService        *shop.Service
	BotService         *bot.Service

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// ServerURL is the quiz server. If empty, the profile's server or DefaultServerURL is used.
	ServerURL string
	// WSPath is the battle channel path (optional, defaults to /ws)
	WSPath string
	// Timeout bounds each HTTP request (optional)
	Timeout time.Duration
	// Profile names the stored client profile. If empty, defaults to model.DefaultProfile.
	Profile model.ProfileName
	// Prompter shows confirmations and alerts (required)
	Prompter ui.Prompter
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the profile store ("memory", "file" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// StorageDir is the profile directory for file storage (optional)
	StorageDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.Prompter == nil {
		return nil, errors.New("Prompter is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("client_id", uuid.NewString()))

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(ctx, store, cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(cfg, store, profile, clock.New(), random.New(), logger)
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeFile:
		dir := cfg.StorageDir
		if dir == "" {
			dir = file.DefaultDir()
		}
		return file.New(dir), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}
}

// loadProfile reads the stored profile. A server change discards the stored session.
func loadProfile(ctx context.Context, store storage.Storage, cfg Config) (*model.Profile, error) {
	name := cfg.Profile
	if name == "" {
		name = model.DefaultProfile
	}

	profile, err := store.GetProfile(ctx, name)
	switch {
	case errors.Is(err, model.ErrProfileNotFound):
		profile = &model.Profile{Name: name}
	case err != nil:
		return nil, fmt.Errorf("load profile %s: %w", name, err)
	}

	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = profile.ServerURL
	}
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	if profile.ServerURL != serverURL {
		profile.ServerURL = serverURL
		profile.Username = ""
		profile.Cookies = nil
		profile.BattleID = 0
	}
	return profile, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg Config,
	store storage.Storage,
	profile *model.Profile,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) (*App, error) {
	client, err := api.NewClient(api.Config{
		BaseURL: profile.ServerURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	client.SetCookies(toHTTPCookies(profile.Cookies))

	dialer, err := realtime.NewDialer(realtime.Config{
		ServerURL: profile.ServerURL,
		Path:      cfg.WSPath,
		Jar:       client.Jar(),
		Clock:     clk,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	sess := session.New(clk, logger)
	if profile.Username != "" {
		sess.SetUser(model.User{Authenticated: true, Username: profile.Username})
	}
	if profile.Category != "" {
		sess.SetCategory(profile.Category)
	}

	appearance := ui.AppearanceState{State: &profile.Appearance}

	// Create services
	authService := auth.New(client, sess, cfg.Prompter, logger)
	gameController := game.NewController(client, sess, cfg.Prompter, logger)
	battleController := battle.NewController(client, dialer, sess, cfg.Prompter, clk, logger)
	matchmakingService := matchmaking.New(client, battleController, sess, cfg.Prompter, logger)
	shopService := shop.New(client, cfg.Prompter, appearance, logger)
	botService := bot.NewService(bot.DefaultStrategies(rnd), logger)

	return &App{
		Storage:            store,
		Profile:            profile,
		Clock:              clk,
		Random:             rnd,
		Client:             client,
		Dialer:             dialer,
		Prompter:           cfg.Prompter,
		Appearance:         appearance,
		Session:            sess,
		AuthService:        authService,
		GameController:     gameController,
		BattleController:   battleController,
		MatchmakingService: matchmakingService,
		ShopService:        shopService,
		BotService:         botService,
		Logger:             logger,
	}, nil
}

// SaveProfile persists the session cookie, user and selected category.
// Profile.BattleID is left to the battle commands.
func (a *App) SaveProfile(ctx context.Context) error {
	user := a.Session.User()
	a.Profile.Username = user.Username
	a.Profile.Cookies = fromHTTPCookies(a.Client.Cookies())
	a.Profile.Category = a.Session.Category()
	a.Profile.UpdatedAt = a.Clock.Now()

	if err := a.Storage.SaveProfile(ctx, a.Profile); err != nil {
		a.Logger.Error("failed to save profile",
			slog.String("profile", string(a.Profile.Name)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Close stops timers and releases the storage connection
func (a *App) Close() error {
	a.Session.GameTimer.Stop()
	a.Session.BattleCountdown.Stop()
	a.Session.MatchmakingPoll.Stop()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func toHTTPCookies(cookies []model.SessionCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return out
}

// fromHTTPCookies keeps what a cookie jar reports, which is only name and value
func fromHTTPCookies(cookies []*http.Cookie) []model.SessionCookie {
	out := make([]model.SessionCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, model.SessionCookie{Name: c.Name, Value: c.Value})
	}
	return out
}
