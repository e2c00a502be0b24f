package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/sessioncookie"
)

type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]backend.User
	refreshes map[string]backend.Session
	getErr    error
	signedOut []string
	getCalls  int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users:     map[string]backend.User{"live": {ID: "u1", Email: "alex@example.com"}},
		refreshes: map[string]backend.Session{},
	}
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, password string) (backend.Session, error) {
	if email != "alex@example.com" || password != "correct horse" {
		return backend.Session{}, &backend.AuthError{Message: "Invalid login credentials", Err: backend.ErrInvalidCredentials}
	}
	return backend.Session{AccessToken: "live", RefreshToken: "r1", User: backend.User{ID: "u1", Email: email}}, nil
}

func (f *fakeAuth) GetUser(_ context.Context, token string) (backend.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return backend.User{}, f.getErr
	}
	user, ok := f.users[token]
	if !ok {
		return backend.User{}, backend.ErrUnauthenticated
	}
	return user, nil
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (backend.Session, error) {
	sess, ok := f.refreshes[token]
	if !ok {
		return backend.Session{}, &backend.AuthError{Message: "Invalid Refresh Token", Err: backend.ErrInvalidCredentials}
	}
	return sess, nil
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

func requestWith(tokens sessioncookie.Tokens) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/Write", nil)
	if tokens.Access != "" {
		req.AddCookie(&http.Cookie{Name: sessioncookie.AccessName, Value: tokens.Access})
	}
	if tokens.Refresh != "" {
		req.AddCookie(&http.Cookie{Name: sessioncookie.RefreshName, Value: tokens.Refresh})
	}
	return req
}

func mustProvider(t *testing.T, auth backend.Auth) *Provider {
	t.Helper()
	p, err := NewProvider(auth, Options{})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	return p
}

func TestNewProviderRequiresAuth(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil auth")
	}
}

func TestResolveWithoutCookiesMakesNoCalls(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	p := mustProvider(t, auth)
	viewer := p.Resolve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if viewer.Authenticated() {
		t.Fatalf("viewer = %+v, want anonymous", viewer)
	}
	if auth.getCalls != 0 {
		t.Fatalf("GetUser calls = %d, want 0", auth.getCalls)
	}
}

func TestResolveLiveToken(t *testing.T) {
	t.Parallel()

	p := mustProvider(t, newFakeAuth())
	viewer := p.Resolve(httptest.NewRecorder(), requestWith(sessioncookie.Tokens{Access: "live"}))
	want := ideas.Viewer{UserID: "u1", Email: "alex@example.com", AccessToken: "live"}
	if viewer != want {
		t.Fatalf("viewer = %+v, want %+v", viewer, want)
	}
}

func TestResolveRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	auth.users["fresh"] = backend.User{ID: "u1", Email: "alex@example.com"}
	auth.refreshes["r1"] = backend.Session{AccessToken: "fresh", RefreshToken: "r2", User: backend.User{ID: "u1", Email: "alex@example.com"}}
	p := mustProvider(t, auth)

	var events []Event
	unsubscribe := p.Subscribe(func(c Change) { events = append(events, c.Event) })
	defer unsubscribe()

	rr := httptest.NewRecorder()
	viewer := p.Resolve(rr, requestWith(sessioncookie.Tokens{Access: "stale", Refresh: "r1"}))
	if viewer.AccessToken != "fresh" || viewer.UserID != "u1" {
		t.Fatalf("viewer = %+v", viewer)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 2 || cookies[0].Value != "fresh" || cookies[1].Value != "r2" {
		t.Fatalf("cookies = %+v", cookies)
	}
	if len(events) != 1 || events[0] != TokenRefreshed {
		t.Fatalf("events = %v", events)
	}
}

func TestResolveClearsRejectedCookies(t *testing.T) {
	t.Parallel()

	p := mustProvider(t, newFakeAuth())
	rr := httptest.NewRecorder()
	viewer := p.Resolve(rr, requestWith(sessioncookie.Tokens{Access: "stale", Refresh: "unknown"}))
	if viewer.Authenticated() {
		t.Fatalf("viewer = %+v, want anonymous", viewer)
	}
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge >= 0 {
			t.Fatalf("cookie %s not cleared", cookie.Name)
		}
	}
	if len(rr.Result().Cookies()) != 2 {
		t.Fatalf("cookies = %d, want 2", len(rr.Result().Cookies()))
	}
}

func TestResolveKeepsCookiesOnTransportFailure(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	auth.getErr = errors.New("dial tcp: connection refused")
	p := mustProvider(t, auth)
	rr := httptest.NewRecorder()
	viewer := p.Resolve(rr, requestWith(sessioncookie.Tokens{Access: "live", Refresh: "r1"}))
	if viewer.Authenticated() {
		t.Fatalf("viewer = %+v, want anonymous", viewer)
	}
	if got := len(rr.Result().Cookies()); got != 0 {
		t.Fatalf("cookies written = %d, want 0", got)
	}
}

func TestSignInAndSignOut(t *testing.T) {
	t.Parallel()

	auth := newFakeAuth()
	p := mustProvider(t, auth)
	var events []Change
	unsubscribe := p.Subscribe(func(c Change) { events = append(events, c) })
	defer unsubscribe()

	req := httptest.NewRequest(http.MethodPost, "/Login", nil)
	rr := httptest.NewRecorder()
	viewer, err := p.SignIn(req.Context(), rr, req, " alex@example.com ", "correct horse")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if viewer.UserID != "u1" || len(rr.Result().Cookies()) != 2 {
		t.Fatalf("viewer = %+v cookies = %d", viewer, len(rr.Result().Cookies()))
	}

	out := httptest.NewRecorder()
	if err := p.SignOut(req.Context(), out, requestWith(sessioncookie.Tokens{Access: "live", Refresh: "r1"})); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if len(auth.signedOut) != 1 || auth.signedOut[0] != "live" {
		t.Fatalf("signed out tokens = %v", auth.signedOut)
	}
	if len(events) != 2 || events[0].Event != SignedIn || events[1].Event != SignedOut || events[1].Viewer.Authenticated() {
		t.Fatalf("events = %+v", events)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	p := mustProvider(t, newFakeAuth())
	req := httptest.NewRequest(http.MethodPost, "/Login", nil)
	rr := httptest.NewRecorder()
	_, err := p.SignIn(req.Context(), rr, req, "alex@example.com", "nope")
	var authErr *backend.AuthError
	if !errors.As(err, &authErr) || authErr.Message != "Invalid login credentials" {
		t.Fatalf("SignIn() error = %v", err)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("cookies written on failed sign-in")
	}
	if _, err := p.SignIn(req.Context(), rr, req, "", ""); !errors.Is(err, backend.ErrInvalidCredentials) {
		t.Fatalf("SignIn(empty) error = %v", err)
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	t.Parallel()

	p := mustProvider(t, newFakeAuth())
	first := p.Subscribe(func(Change) {})
	second := p.Subscribe(func(Change) {})
	if got := p.Listeners(); got != 2 {
		t.Fatalf("Listeners() = %d, want 2", got)
	}
	first()
	first()
	if got := p.Listeners(); got != 1 {
		t.Fatalf("Listeners() = %d, want 1", got)
	}
	second()
	if got := p.Listeners(); got != 0 {
		t.Fatalf("Listeners() = %d, want 0", got)
	}
	p.Subscribe(nil)()
}

func TestMiddlewareStoresViewer(t *testing.T) {
	t.Parallel()

	p := mustProvider(t, newFakeAuth())
	var seen ideas.Viewer
	var authenticated bool
	h := p.Middleware()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = ViewerFromContext(r.Context())
		authenticated = Authenticated(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), requestWith(sessioncookie.Tokens{Access: "live"}))
	if seen.UserID != "u1" || !authenticated {
		t.Fatalf("viewer = %+v authenticated = %v", seen, authenticated)
	}
	if ViewerFromContext(context.Background()).Authenticated() {
		t.Fatalf("empty context resolved a viewer")
	}
}
