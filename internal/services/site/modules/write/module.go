// Package write serves the new-post composer. It is mounted behind the
// authentication guard.
package write

import (
	"errors"
	"net/http"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
)

// Module owns /Write.
type Module struct{}

// New returns the write module.
func New() Module {
	return Module{}
}

// ID returns a stable module identifier.
func (Module) ID() string {
	return "write"
}

// Mount wires the composer routes.
func (Module) Mount(deps module.Dependencies) (module.Mount, error) {
	if deps.Ideas == nil {
		return module.Mount{}, errors.New("ideas service is required")
	}
	deps.Logger = logging.OrNop(deps.Logger)
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{deps: deps})
	return module.Mount{Prefix: routepath.WriteSlash, Handler: mux}, nil
}
