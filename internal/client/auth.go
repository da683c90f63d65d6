package client

import (
	"context"
	"net/http"

	"github.com/talktotext/talktotext/internal/models"
)

// Credentials are the login fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up fields.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// AuthResult is returned by login and register.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, creds Credentials) Response[AuthResult] {
	return c.authenticate(ctx, "/api/auth/login", creds)
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, reg Registration) Response[AuthResult] {
	return c.authenticate(ctx, "/api/auth/register", reg)
}

func (c *Client) authenticate(ctx context.Context, endpoint string, payload any) Response[AuthResult] {
	resp := Do[AuthResult](ctx, c, http.MethodPost, endpoint, payload)
	if !resp.OK() {
		return resp
	}
	if resp.Data.Token != "" {
		if err := c.SetToken(resp.Data.Token); err != nil {
			return failed[AuthResult]("store token: %v", err)
		}
	}
	return resp
}
