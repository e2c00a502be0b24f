package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// ErrUserExists indicates the email is already registered.
var ErrUserExists = errors.New("user already exists")

// CreateUser registers an account. The local site has no sign-up flow, so
// this is only reached from the owner tool.
func (b *Backend) CreateUser(ctx context.Context, email, password string) (backend.User, error) {
	if err := b.ready(); err != nil {
		return backend.User{}, err
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return backend.User{}, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return backend.User{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return backend.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := backend.User{ID: uuid.NewString(), Email: email}
	_, err = b.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, string(hash), toMillis(b.now()),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return backend.User{}, ErrUserExists
		}
		return backend.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

type userRow struct {
	backend.User
	passwordHash string
}

func (b *Backend) userByEmail(ctx context.Context, email string) (userRow, error) {
	var row userRow
	err := b.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		strings.TrimSpace(email),
	).Scan(&row.ID, &row.Email, &row.passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return userRow{}, backend.ErrNotFound
	}
	if err != nil {
		return userRow{}, fmt.Errorf("get user: %w", err)
	}
	return row, nil
}

func (b *Backend) userByID(ctx context.Context, id string) (backend.User, error) {
	var user backend.User
	err := b.sqlDB.QueryRowContext(ctx, `SELECT id, email FROM users WHERE id = ?`, id).Scan(&user.ID, &user.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.User{}, backend.ErrNotFound
	}
	if err != nil {
		return backend.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
