package flash

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
)

func TestWriteThenReadAndClear(t *testing.T) {
	t.Parallel()

	var policy requestmeta.SchemePolicy
	rr := httptest.NewRecorder()
	Write(rr, httptest.NewRequest(http.MethodPost, "/Write", nil), Success("notice.post_published"), policy)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/Ideas", nil)
	req.AddCookie(cookies[0])
	next := httptest.NewRecorder()
	notice, ok := ReadAndClear(next, req, policy)
	if !ok {
		t.Fatalf("ReadAndClear() ok = false")
	}
	if notice.Kind != KindSuccess || notice.Key != "notice.post_published" {
		t.Fatalf("notice = %+v", notice)
	}
	cleared := next.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected flash cookie to be expired, got %+v", cleared)
	}
}

func TestErrorTextRoundTripsAndIsBounded(t *testing.T) {
	t.Parallel()

	var policy requestmeta.SchemePolicy
	rr := httptest.NewRecorder()
	Write(rr, httptest.NewRequest(http.MethodPost, "/Login", nil), Error(strings.Repeat("x", 2000)), policy)

	req := httptest.NewRequest(http.MethodGet, "/Login", nil)
	req.AddCookie(rr.Result().Cookies()[0])
	notice, ok := ReadAndClear(nil, req, policy)
	if !ok {
		t.Fatalf("ReadAndClear() ok = false")
	}
	if notice.Kind != KindError || len(notice.Text) != maxTextBytes {
		t.Fatalf("notice kind=%q len(text)=%d", notice.Kind, len(notice.Text))
	}
}

func TestInvalidNoticesAreDropped(t *testing.T) {
	t.Parallel()

	var policy requestmeta.SchemePolicy
	for _, notice := range []Notice{
		{Kind: KindSuccess},
		{Kind: "loud", Key: "notice.logged_in"},
	} {
		rr := httptest.NewRecorder()
		Write(rr, httptest.NewRequest(http.MethodGet, "/", nil), notice, policy)
		if got := len(rr.Result().Cookies()); got != 0 {
			t.Fatalf("Write(%+v) set %d cookies", notice, got)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "%%%"})
	if _, ok := ReadAndClear(nil, req, policy); ok {
		t.Fatalf("ReadAndClear() accepted malformed cookie")
	}
}
