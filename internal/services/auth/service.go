package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mcoot/quizgame/internal/model"
	"github.com/mcoot/quizgame/internal/services/session"
	"github.com/mcoot/quizgame/internal/ui"
)

// Client is the part of the API client the auth service needs
type Client interface {
	CurrentUser(ctx context.Context) (model.User, error)
	Login(ctx context.Context, username, password string) (model.User, error)
	Register(ctx context.Context, username, password string) (model.User, error)
	Logout(ctx context.Context) error
}

// Service signs users in and out and keeps the session user current
type Service struct {
	client   Client
	session  *session.Context
	prompter ui.Prompter
	logger   *slog.Logger
}

// New creates a new auth Service
func New(client Client, sess *session.Context, prompter ui.Prompter, logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		session:  sess,
		prompter: prompter,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Login signs in. The server's error message is returned verbatim on failure.
func (s *Service) Login(ctx context.Context, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, model.ErrMissingCredentials
	}

	user, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.logger.Warn("login failed", slog.String("username", username), slog.String("error", err.Error()))
		return model.User{}, err
	}

	s.signedIn(user)
	return user, nil
}

// Register creates an account and signs in. Fields are validated before any request.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirm == "" {
		return model.User{}, model.ErrMissingCredentials
	}
	if password != confirm {
		return model.User{}, model.ErrPasswordMismatch
	}

	user, err := s.client.Register(ctx, username, password)
	if err != nil {
		s.logger.Warn("registration failed", slog.String("username", username), slog.String("error", err.Error()))
		return model.User{}, err
	}

	s.signedIn(user)
	return user, nil
}

// Logout asks for confirmation, ends the server session and resets the local one
func (s *Service) Logout(ctx context.Context) error {
	ok, err := s.prompter.Confirm(ctx, "Do you really want to log out?")
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrDeclined
	}

	if err := s.client.Logout(ctx); err != nil {
		s.logger.Error("logout failed", slog.String("error", err.Error()))
		return err
	}

	s.session.Reset()
	s.logger.Info("logged out")
	return nil
}

// CurrentUser asks the server who the session belongs to and records the answer
func (s *Service) CurrentUser(ctx context.Context) (model.User, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}

	if !user.Authenticated {
		s.session.SetUser(model.User{})
		s.session.Transition(model.ScreenAuth)
		return user, nil
	}

	s.signedIn(user)
	return user, nil
}

// RequireUser returns the signed-in user or model.ErrNotAuthenticated
func (s *Service) RequireUser(ctx context.Context) (model.User, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !user.Authenticated {
		return model.User{}, model.ErrNotAuthenticated
	}
	return user, nil
}

func (s *Service) signedIn(user model.User) {
	s.session.SetUser(user)
	if s.session.Screen() == model.ScreenAuth {
		s.session.Transition(model.ScreenHome)
	}
	s.logger.Info("signed in", slog.String("username", user.Username))
}
