package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/golang-jwt/jwt/v5"
)

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenBody struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         userBody `json:"user"`
}

// SignInWithPassword exchanges email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (backend.Session, error) {
	var out tokenBody
	err := c.do(ctx, "supabase.SignInWithPassword", request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": strings.TrimSpace(email), "password": password},
	}, &out)
	if err != nil {
		return backend.Session{}, authFailure(err)
	}
	return sessionFromToken(out), nil
}

// GetUser resolves the user behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (backend.User, error) {
	if strings.TrimSpace(accessToken) == "" {
		return backend.User{}, backend.ErrUnauthenticated
	}
	var out userBody
	err := c.do(ctx, "supabase.GetUser", request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	}, &out)
	if err != nil {
		return backend.User{}, err
	}
	if out.ID == "" {
		return backend.User{}, backend.ErrUnauthenticated
	}
	return backend.User{ID: out.ID, Email: out.Email}, nil
}

// Refresh exchanges a refresh token for a new session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (backend.Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return backend.Session{}, backend.ErrUnauthenticated
	}
	var out tokenBody
	err := c.do(ctx, "supabase.Refresh", request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": refreshToken},
	}, &out)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusBadRequest {
			return backend.Session{}, backend.ErrUnauthenticated
		}
		return backend.Session{}, err
	}
	return sessionFromToken(out), nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return backend.ErrUnauthenticated
	}
	return c.do(ctx, "supabase.SignOut", request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	}, nil)
}

func authFailure(err error) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	if statusErr.Status == http.StatusBadRequest || statusErr.Status == http.StatusUnauthorized {
		message := statusErr.Message
		if message == "" {
			message = "Invalid login credentials"
		}
		return &backend.AuthError{Message: message, Err: backend.ErrInvalidCredentials}
	}
	return &backend.AuthError{Message: statusErr.Message, Err: err}
}

func sessionFromToken(out tokenBody) backend.Session {
	session := backend.Session{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         backend.User{ID: out.User.ID, Email: out.User.Email},
	}
	switch {
	case out.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(out.ExpiresAt, 0).UTC()
	default:
		session.ExpiresAt = tokenExpiry(out.AccessToken)
	}
	return session
}

// tokenExpiry reads exp without verifying the signature; the backend is the
// only party that validates its own tokens.
func tokenExpiry(raw string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time.UTC()
}
