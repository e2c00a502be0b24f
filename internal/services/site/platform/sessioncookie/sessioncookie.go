// Package sessioncookie stores backend session tokens in browser cookies.
package sessioncookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
)

const (
	// AccessName holds the backend access token.
	AccessName = "pfalexn_session"
	// RefreshName holds the refresh token used once the access token expires.
	RefreshName = "pfalexn_refresh"
)

// MaxAge bounds how long the browser keeps either cookie.
const MaxAge = 30 * 24 * time.Hour

// Tokens is the cookie view of a backend session.
type Tokens struct {
	Access  string
	Refresh string
}

// Read returns the tokens present on r. ok is false when neither cookie is set.
func Read(r *http.Request) (tokens Tokens, ok bool) {
	tokens.Access = value(r, AccessName)
	tokens.Refresh = value(r, RefreshName)
	return tokens, tokens.Access != "" || tokens.Refresh != ""
}

// Present reports whether r carries either session cookie.
func Present(r *http.Request) bool {
	_, ok := Read(r)
	return ok
}

// Write stores tokens on the response. An empty refresh token clears the
// refresh cookie.
func Write(w http.ResponseWriter, r *http.Request, tokens Tokens, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	set(w, r, AccessName, tokens.Access, policy)
	set(w, r, RefreshName, tokens.Refresh, policy)
}

// Clear expires both session cookies.
func Clear(w http.ResponseWriter, r *http.Request, policy requestmeta.SchemePolicy) {
	if w == nil {
		return
	}
	set(w, r, AccessName, "", policy)
	set(w, r, RefreshName, "", policy)
}

func set(w http.ResponseWriter, r *http.Request, name string, val string, policy requestmeta.SchemePolicy) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    strings.TrimSpace(val),
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(MaxAge / time.Second),
	}
	if cookie.Value == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

func value(r *http.Request, name string) string {
	if r == nil {
		return ""
	}
	cookie, err := r.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
