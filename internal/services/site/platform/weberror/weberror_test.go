package weberror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	siteerrors "github.com/alexisnsns/pfalexn/internal/services/site/platform/errors"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unauthorized", err: ideas.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "not found", err: fmt.Errorf("get: %w", ideas.ErrNotFound), want: http.StatusNotFound},
		{name: "invalid input", err: ideas.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "remote", err: &ideas.RemoteError{Op: "list", Err: errors.New("down")}, want: http.StatusBadGateway},
		{name: "upload", err: &ideas.UploadError{Err: errors.New("rejected")}, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Status(tc.err); got != tc.want {
				t.Fatalf("Status() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestFromIdeasKeepsCause(t *testing.T) {
	t.Parallel()

	err := FromIdeas(ideas.ErrUnauthorized)
	if !errors.Is(err, ideas.ErrUnauthorized) {
		t.Fatalf("FromIdeas() lost the cause")
	}
	if got := siteerrors.LocalizationKey(err); got != "notice.login_required" {
		t.Fatalf("LocalizationKey() = %q", got)
	}
	if FromIdeas(nil) != nil {
		t.Fatalf("FromIdeas(nil) != nil")
	}
}

func TestWriteHidesBackendDetail(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/Ideas", nil)
	Write(rec, req, module.Dependencies{}, &ideas.RemoteError{Op: "list", Err: errors.New("pq: relation posts does not exist")})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	body := rec.Body.String()
	if strings.Contains(body, "relation posts") {
		t.Fatalf("body leaked backend detail: %q", body)
	}
	if !strings.Contains(body, ideas.Notice(&ideas.RemoteError{})) {
		t.Fatalf("body missing generic notice: %q", body)
	}
}
