package public

import (
	"net/http"

	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleProfile)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	if h.deps.ResumeFile != "" {
		mux.HandleFunc(http.MethodGet+" "+routepath.Resume, h.handleResume)
	}

	mux.HandleFunc(http.MethodGet+" "+routepath.Login, h.handleLogin)
	mux.HandleFunc(http.MethodPost+" "+routepath.Login, h.handleLoginSubmit)

	mux.HandleFunc(http.MethodPost+" "+routepath.Logout, h.handleLogout)
	mux.HandleFunc(http.MethodGet+" "+routepath.Logout, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc("/{rest...}", h.handleNotFound)
}
