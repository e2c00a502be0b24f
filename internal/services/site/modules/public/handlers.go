package public

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/alexisnsns/pfalexn/internal/services/portfolio/readme"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/flash"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/pagerender"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
	"github.com/alexisnsns/pfalexn/internal/services/site/templates"
)

type handlers struct {
	deps module.Dependencies
}

// handleProfile renders the profile shell at once and streams each README
// preview into its card as soon as that project resolves.
func (h handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	cat := h.deps.Portfolio
	ids := cat.ProjectIDs()
	cards := make([]templates.ProjectCard, len(cat.Projects))
	for i, p := range cat.Projects {
		cards[i] = templates.ProjectCard{
			ID:         p.ID,
			Name:       p.Name(),
			Commentary: p.Commentary,
			RepoURL:    cat.RepoURL(p),
		}
	}

	updates := make(chan templates.ReadmeUpdate, len(ids))
	go func() {
		defer close(updates)
		h.deps.Readme.ResolveAll(r.Context(), ids, func(_ int, res readme.Result) {
			updates <- templates.ReadmeUpdate{ID: res.ProjectID, Preview: res.Preview(cat.Readme.PreviewChars)}
		})
	}()

	profile := cat.Profile
	if h.deps.ResumeFile == "" && profile.ResumePath == routepath.Resume {
		profile.ResumePath = ""
	}
	err := pagerender.Write(w, r, h.deps, pagerender.Page{
		Title:       profile.Name,
		Description: profile.Tagline,
		Body:        templates.ProfilePage(profile, cards, updates),
	})
	if err != nil {
		h.deps.Logger.Debug("render profile", zap.Error(err))
		for range updates {
		}
	}
}

func (h handlers) handleResume(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, h.deps.ResumeFile)
}

func (handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.Redirect(w, r, routepath.Root)
}

func (h handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := requestmeta.LocalPath(r.URL.Query().Get(routepath.NextParam), routepath.Write)
	if session.Authenticated(r) {
		httpx.Redirect(w, r, next)
		return
	}
	h.renderLogin(w, r, http.StatusOK, templates.LoginForm{Next: nextField(next)})
}

func (h handlers) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, templates.LoginForm{Error: "Invalid form submission."})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	next := requestmeta.LocalPath(r.PostForm.Get(routepath.NextParam), routepath.Write)
	_, err := h.deps.Sessions.SignIn(r.Context(), w, r, email, r.PostForm.Get("password"))
	if err != nil {
		status := http.StatusUnauthorized
		var authErr *backend.AuthError
		msg := "Login failed. Please try again."
		if errors.As(err, &authErr) && authErr.Message != "" {
			msg = authErr.Message
		} else {
			status = http.StatusBadGateway
			h.deps.Logger.Warn("sign in failed", zap.Error(err))
		}
		h.renderLogin(w, r, status, templates.LoginForm{Email: email, Next: nextField(next), Error: msg})
		return
	}
	flash.Write(w, r, flash.Success("notice.logged_in"), h.deps.Scheme)
	httpx.Redirect(w, r, next)
}

func (h handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Sessions.SignOut(r.Context(), w, r); err != nil {
		h.deps.Logger.Warn("sign out failed", zap.Error(err))
	}
	flash.Write(w, r, flash.Info("notice.logged_out"), h.deps.Scheme)
	httpx.Redirect(w, r, routepath.Ideas)
}

func (h handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, form templates.LoginForm) {
	err := pagerender.Write(w, r, h.deps, pagerender.Page{
		Title:      "Login",
		StatusCode: status,
		Body:       templates.LoginPage(form),
	})
	if err != nil {
		h.deps.Logger.Debug("render login", zap.Error(err))
	}
}

// nextField drops the default destination so the form stays minimal.
func nextField(next string) string {
	if next == routepath.Write {
		return ""
	}
	return next
}
