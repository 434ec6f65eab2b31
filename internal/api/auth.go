package api

import (
	"context"
	"fmt"

	"github.com/tvu/careboard/internal/model"
)

// AuthResponse is returned by the login and signup endpoints.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login authenticates with email and password. On success the returned
// token is installed on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var resp AuthResponse
	if err := c.Post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if resp.Token != "" {
		c.SetToken(resp.Token)
	}
	return &resp, nil
}

// Signup registers a new account and, like Login, installs the returned
// token on the client.
func (c *Client) Signup(ctx context.Context, email, password, username string) (*AuthResponse, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
		"username": username,
	}

	var resp AuthResponse
	if err := c.Post(ctx, "/auth/signup", body, &resp); err != nil {
		return nil, fmt.Errorf("signing up: %w", err)
	}

	if resp.Token != "" {
		c.SetToken(resp.Token)
	}
	return &resp, nil
}

// CurrentUser fetches the account for the active session.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me", &user); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &user, nil
}

// ListUsers fetches all staff accounts, used for assignee selection.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.Get(ctx, "/auth/users", &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
