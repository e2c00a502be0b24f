package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer  = "pfalexn-local"
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	TokenUse  string `json:"token_use"`
}

// SignInWithPassword checks the credentials and opens a new session.
func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) (backend.Session, error) {
	if err := b.ready(); err != nil {
		return backend.Session{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return backend.Session{}, &backend.AuthError{Message: "Email and password are required", Err: backend.ErrInvalidCredentials}
	}
	row, err := b.userByEmail(ctx, email)
	if errors.Is(err, backend.ErrNotFound) {
		return backend.Session{}, &backend.AuthError{Message: "Invalid login credentials", Err: backend.ErrInvalidCredentials}
	}
	if err != nil {
		return backend.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(row.passwordHash), []byte(password)) != nil {
		return backend.Session{}, &backend.AuthError{Message: "Invalid login credentials", Err: backend.ErrInvalidCredentials}
	}

	now := b.now().UTC()
	sessionID := uuid.NewString()
	if _, err := b.sqlDB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sessionID, row.ID, toMillis(now), toMillis(now.Add(b.refreshTTL)),
	); err != nil {
		return backend.Session{}, fmt.Errorf("create session: %w", err)
	}
	return b.issue(sessionID, row.User, now)
}

// GetUser resolves the user behind a live access token.
func (b *Backend) GetUser(ctx context.Context, accessToken string) (backend.User, error) {
	if err := b.ready(); err != nil {
		return backend.User{}, err
	}
	claims, err := b.parse(accessToken, tokenAccess)
	if err != nil {
		return backend.User{}, err
	}
	if err := b.sessionLive(ctx, claims.SessionID, claims.Subject); err != nil {
		return backend.User{}, err
	}
	user, err := b.userByID(ctx, claims.Subject)
	if errors.Is(err, backend.ErrNotFound) {
		return backend.User{}, backend.ErrUnauthenticated
	}
	return user, err
}

// Refresh exchanges a refresh token for a new pair on the same session and
// extends the session's expiry.
func (b *Backend) Refresh(ctx context.Context, refreshToken string) (backend.Session, error) {
	if err := b.ready(); err != nil {
		return backend.Session{}, err
	}
	claims, err := b.parse(refreshToken, tokenRefresh)
	if err != nil {
		return backend.Session{}, err
	}
	if err := b.sessionLive(ctx, claims.SessionID, claims.Subject); err != nil {
		return backend.Session{}, err
	}
	user, err := b.userByID(ctx, claims.Subject)
	if errors.Is(err, backend.ErrNotFound) {
		return backend.Session{}, backend.ErrUnauthenticated
	}
	if err != nil {
		return backend.Session{}, err
	}
	now := b.now().UTC()
	if _, err := b.sqlDB.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ? WHERE id = ?`,
		toMillis(now.Add(b.refreshTTL)), claims.SessionID,
	); err != nil {
		return backend.Session{}, fmt.Errorf("extend session: %w", err)
	}
	return b.issue(claims.SessionID, user, now)
}

// SignOut revokes the session behind the access token. Expired tokens still
// revoke their session; unknown sessions are ignored.
func (b *Backend) SignOut(ctx context.Context, accessToken string) error {
	if err := b.ready(); err != nil {
		return err
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims, b.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || claims.SessionID == "" {
		return backend.ErrUnauthenticated
	}
	if _, err := b.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, claims.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (b *Backend) issue(sessionID string, user backend.User, now time.Time) (backend.Session, error) {
	accessExp := now.Add(b.accessTTL)
	access, err := b.sign(sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
			ID:        uuid.NewString(),
		},
		SessionID: sessionID,
		Email:     user.Email,
		TokenUse:  tokenAccess,
	})
	if err != nil {
		return backend.Session{}, err
	}
	refresh, err := b.sign(sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.refreshTTL)),
			ID:        uuid.NewString(),
		},
		SessionID: sessionID,
		TokenUse:  tokenRefresh,
	})
	if err != nil {
		return backend.Session{}, err
	}
	return backend.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp.Truncate(time.Second),
		User:         user,
	}, nil
}

func (b *Backend) sign(claims sessionClaims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (b *Backend) keyFunc(*jwt.Token) (any, error) {
	return b.secret, nil
}

func (b *Backend) parse(raw string, use string) (sessionClaims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sessionClaims{}, backend.ErrUnauthenticated
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, b.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return sessionClaims{}, fmt.Errorf("%w: %v", backend.ErrUnauthenticated, err)
	}
	if claims.TokenUse != use || claims.SessionID == "" || claims.Subject == "" {
		return sessionClaims{}, backend.ErrUnauthenticated
	}
	return claims, nil
}

func (b *Backend) sessionLive(ctx context.Context, sessionID, userID string) error {
	var expiresAt int64
	err := b.sqlDB.QueryRowContext(ctx,
		`SELECT expires_at FROM sessions WHERE id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.ErrUnauthenticated
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if !fromMillis(expiresAt).After(b.now()) {
		return backend.ErrUnauthenticated
	}
	return nil
}
