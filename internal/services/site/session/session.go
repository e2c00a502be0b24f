// Package session resolves the signed-in viewer for each request from the
// backend's auth state and tells subscribers when that state changes.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/sessioncookie"
)

// Event names an auth state change.
type Event string

const (
	SignedIn       Event = "signed_in"
	SignedOut      Event = "signed_out"
	TokenRefreshed Event = "token_refreshed"
)

// Change is delivered to listeners. Viewer is anonymous for SignedOut.
type Change struct {
	Event  Event
	Viewer ideas.Viewer
}

// Listener receives auth state changes. It runs on the request goroutine
// that caused the change and must not block.
type Listener func(Change)

// Options configures a Provider.
type Options struct {
	SchemePolicy requestmeta.SchemePolicy
	Logger       *zap.Logger
}

// Provider reads the backend's auth state for requests.
type Provider struct {
	auth   backend.Auth
	scheme requestmeta.SchemePolicy
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// NewProvider builds a Provider over auth.
func NewProvider(auth backend.Auth, opts Options) (*Provider, error) {
	if auth == nil {
		return nil, errors.New("session auth backend is required")
	}
	return &Provider{
		auth:      auth,
		scheme:    opts.SchemePolicy,
		logger:    logging.OrNop(opts.Logger),
		listeners: make(map[uint64]Listener),
	}, nil
}

// Subscribe registers l and returns the function that removes it. The
// returned function is safe to call more than once.
func (p *Provider) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Listeners reports how many listeners are registered.
func (p *Provider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

func (p *Provider) emit(change Change) {
	p.mu.Lock()
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.Unlock()
	for _, l := range listeners {
		l(change)
	}
}

// Resolve returns the viewer for r. An expired access token is refreshed
// once with the refresh cookie and the new tokens are written to w. Cookies
// the backend rejects are cleared. Transport failures leave the cookies in
// place and resolve to an anonymous viewer.
func (p *Provider) Resolve(w http.ResponseWriter, r *http.Request) ideas.Viewer {
	tokens, ok := sessioncookie.Read(r)
	if !ok {
		return ideas.Viewer{}
	}
	ctx := r.Context()
	if tokens.Access != "" {
		user, err := p.auth.GetUser(ctx, tokens.Access)
		if err == nil {
			return viewerOf(user, tokens.Access)
		}
		if !errors.Is(err, backend.ErrUnauthenticated) {
			p.logger.Warn("resolve session user", zap.Error(err))
			return ideas.Viewer{}
		}
	}
	if tokens.Refresh == "" {
		sessioncookie.Clear(w, r, p.scheme)
		return ideas.Viewer{}
	}
	refreshed, err := p.auth.Refresh(ctx, tokens.Refresh)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthenticated) || errors.Is(err, backend.ErrInvalidCredentials) {
			sessioncookie.Clear(w, r, p.scheme)
		} else {
			p.logger.Warn("refresh session", zap.Error(err))
		}
		return ideas.Viewer{}
	}
	sessioncookie.Write(w, r, tokensOf(refreshed), p.scheme)
	viewer := viewerOf(refreshed.User, refreshed.AccessToken)
	p.emit(Change{Event: TokenRefreshed, Viewer: viewer})
	return viewer
}

// SignIn exchanges credentials for a session and stores it in cookies.
// A rejected login returns the backend's *backend.AuthError.
func (p *Provider) SignIn(ctx context.Context, w http.ResponseWriter, r *http.Request, email, password string) (ideas.Viewer, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ideas.Viewer{}, &backend.AuthError{Message: "Email and password are required", Err: backend.ErrInvalidCredentials}
	}
	sess, err := p.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return ideas.Viewer{}, err
	}
	sessioncookie.Write(w, r, tokensOf(sess), p.scheme)
	viewer := viewerOf(sess.User, sess.AccessToken)
	p.logger.Info("signed in", zap.String("user_id", viewer.UserID))
	p.emit(Change{Event: SignedIn, Viewer: viewer})
	return viewer, nil
}

// SignOut revokes the current session and clears the cookies. The cookies
// are cleared even when the backend call fails.
func (p *Provider) SignOut(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tokens, _ := sessioncookie.Read(r)
	sessioncookie.Clear(w, r, p.scheme)
	var err error
	if tokens.Access != "" {
		if err = p.auth.SignOut(ctx, tokens.Access); errors.Is(err, backend.ErrUnauthenticated) {
			err = nil
		}
	}
	p.emit(Change{Event: SignedOut})
	return err
}

// Middleware resolves the viewer once and stores it in the request context.
func (p *Provider) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := p.Resolve(w, r)
			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}

type viewerKey struct{}

// WithViewer returns ctx carrying viewer.
func WithViewer(ctx context.Context, viewer ideas.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFromContext returns the viewer stored by Middleware, or an anonymous
// viewer.
func ViewerFromContext(ctx context.Context) ideas.Viewer {
	if ctx == nil {
		return ideas.Viewer{}
	}
	viewer, _ := ctx.Value(viewerKey{}).(ideas.Viewer)
	return viewer
}

// Authenticated reports whether r carries a signed-in viewer.
func Authenticated(r *http.Request) bool {
	if r == nil {
		return false
	}
	return ViewerFromContext(r.Context()).Authenticated()
}

func viewerOf(user backend.User, accessToken string) ideas.Viewer {
	return ideas.Viewer{UserID: user.ID, Email: user.Email, AccessToken: accessToken}
}

func tokensOf(sess backend.Session) sessioncookie.Tokens {
	return sessioncookie.Tokens{Access: sess.AccessToken, Refresh: sess.RefreshToken}
}
