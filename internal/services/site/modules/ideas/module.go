// Package ideas serves the post directory, post pages, and the edit and
// delete flows.
package ideas

import (
	"errors"
	"net/http"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// Module owns /Ideas.
type Module struct{}

// New returns the ideas module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string {
	return "ideas"
}

// Mount wires the directory routes.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	if deps.Ideas == nil {
		return module.Mount{}, errors.New("ideas service is required")
	}
	if deps.Markdown == nil {
		return module.Mount{}, errors.New("markdown renderer is required")
	}
	deps.Logger = logging.OrNop(deps.Logger)
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{deps: deps})
	return module.Mount{Prefix: routepath.IdeasSlash, Handler: mux}, nil
}
