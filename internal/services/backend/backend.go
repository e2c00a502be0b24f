package backend

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound indicates the requested row does not exist or is not visible.
	ErrNotFound = errors.New("backend: not found")
	// ErrInvalidCredentials indicates a rejected email/password pair.
	ErrInvalidCredentials = errors.New("backend: invalid credentials")
	// ErrUnauthenticated indicates a missing, expired, or revoked token.
	ErrUnauthenticated = errors.New("backend: unauthenticated")
)

// AuthError carries the backend's message for a failed auth call so it can
// be shown to the person signing in.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// User is the authenticated identity.
type User struct {
	ID    string
	Email string
}

// Session is the token pair returned by sign-in and refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Post is one row of the posts table.
type Post struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	Draft     bool
}

// PostInput holds the writable post columns.
type PostInput struct {
	Title   string
	Content string
	Draft   bool
}

// PostQuery narrows reads of the posts table.
type PostQuery struct {
	// PublishedOnly excludes rows with draft set.
	PublishedOnly bool
}

// Auth is the password authentication surface.
type Auth interface {
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	GetUser(ctx context.Context, accessToken string) (User, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// PostTable is the posts table. Reads return newest first; writes require a
// valid access token.
type PostTable interface {
	ListPosts(ctx context.Context, accessToken string, query PostQuery) ([]Post, error)
	GetPost(ctx context.Context, accessToken string, id int64, query PostQuery) (Post, error)
	InsertPost(ctx context.Context, accessToken string, input PostInput) (Post, error)
	UpdatePost(ctx context.Context, accessToken string, id int64, input PostInput) (Post, error)
	DeletePost(ctx context.Context, accessToken string, id int64) error
}

// ObjectStore holds uploaded post images.
type ObjectStore interface {
	Upload(ctx context.Context, accessToken, path, contentType string, body io.Reader) error
	PublicURL(path string) string
}

// Backend bundles every surface the site uses.
type Backend interface {
	Auth
	PostTable
	ObjectStore
	Close() error
}
