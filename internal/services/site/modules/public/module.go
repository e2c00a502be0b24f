// Package public serves the portfolio page and the sign-in flow.
package public

import (
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// Module owns the site root.
type Module struct{}

// New returns the public module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string {
	return "public"
}

// Mount wires the public routes.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	if deps.Portfolio == nil {
		return module.Mount{}, errors.New("portfolio catalog is required")
	}
	if deps.Readme == nil {
		return module.Mount{}, errors.New("readme resolver is required")
	}
	if deps.Sessions == nil {
		return module.Mount{}, errors.New("session provider is required")
	}
	deps.Logger = logging.OrNop(deps.Logger)
	if deps.ResumeFile != "" {
		if info, err := os.Stat(deps.ResumeFile); err != nil || !info.Mode().IsRegular() {
			deps.Logger.Warn("resume file unavailable", zap.String("path", deps.ResumeFile), zap.Error(err))
			deps.ResumeFile = ""
		}
	}
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{deps: deps})
	return module.Mount{Prefix: routepath.Root, Handler: mux}, nil
}
