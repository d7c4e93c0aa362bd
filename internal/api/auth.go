package api

import (
	"context"

	"github.com/mcoot/quizgame/internal/api/request"
	"github.com/mcoot/quizgame/internal/api/response"
	"github.com/mcoot/quizgame/internal/model"
)

// CurrentUser reports who the session belongs to
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var resp response.CurrentUserResponse
	if err := c.Get(ctx, "/api/current_user", &resp); err != nil {
		return model.User{}, err
	}
	return model.User{Authenticated: resp.Authenticated, Username: resp.Username}, nil
}

// Login signs in and stores the session cookie
func (c *Client) Login(ctx context.Context, username, password string) (model.User, error) {
	var resp response.AuthResponse
	if err := c.Post(ctx, "/api/login", request.CredentialsRequest{Username: username, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	return model.User{Authenticated: true, Username: resp.Username}, nil
}

// Register creates an account and signs in
func (c *Client) Register(ctx context.Context, username, password string) (model.User, error) {
	var resp response.AuthResponse
	if err := c.Post(ctx, "/api/register", request.CredentialsRequest{Username: username, Password: password}, &resp); err != nil {
		return model.User{}, err
	}
	return model.User{Authenticated: true, Username: resp.Username}, nil
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	return c.Post(ctx, "/api/logout", nil, nil)
}
