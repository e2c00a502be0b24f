package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
)

func TestReadTrimsAndReportsPresence(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := Read(req); ok {
		t.Fatalf("Read() ok = true for request without cookies")
	}
	if _, ok := Read(nil); ok {
		t.Fatalf("Read(nil) ok = true")
	}

	req.AddCookie(&http.Cookie{Name: AccessName, Value: " access-1 "})
	tokens, ok := Read(req)
	if !ok {
		t.Fatalf("Read() ok = false")
	}
	if tokens.Access != "access-1" || tokens.Refresh != "" {
		t.Fatalf("Read() = %+v", tokens)
	}
	if !Present(req) {
		t.Fatalf("Present() = false")
	}
}

func TestWriteSetsHardenedCookies(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "http://alexn.me/Login", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	Write(rr, req, Tokens{Access: "a", Refresh: "r"}, requestmeta.SchemePolicy{TrustForwardedProto: true})

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("cookies = %d, want 2", len(cookies))
	}
	for _, cookie := range cookies {
		if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
			t.Fatalf("cookie %s flags = %+v", cookie.Name, cookie)
		}
		if cookie.MaxAge <= 0 {
			t.Fatalf("cookie %s MaxAge = %d", cookie.Name, cookie.MaxAge)
		}
	}
	if cookies[0].Name != AccessName || cookies[0].Value != "a" {
		t.Fatalf("access cookie = %+v", cookies[0])
	}
	if cookies[1].Name != RefreshName || cookies[1].Value != "r" {
		t.Fatalf("refresh cookie = %+v", cookies[1])
	}
}

func TestClearExpiresCookies(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/Logout", nil)
	rr := httptest.NewRecorder()
	Clear(rr, req, requestmeta.SchemePolicy{})

	cookies := rr.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("cookies = %d, want 2", len(cookies))
	}
	for _, cookie := range cookies {
		if cookie.MaxAge >= 0 || cookie.Value != "" {
			t.Fatalf("cookie %s not expired: %+v", cookie.Name, cookie)
		}
		if cookie.Secure {
			t.Fatalf("cookie %s Secure on plain http", cookie.Name)
		}
	}
}
