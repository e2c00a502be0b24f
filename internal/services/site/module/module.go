// Package module defines the contract between the site root and its feature
// modules.
package module

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/i18n/catalog"
	"github.com/alexisnsns/pfalexn/internal/platform/markdown"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	portfolio "github.com/alexisnsns/pfalexn/internal/services/portfolio/catalog"
	"github.com/alexisnsns/pfalexn/internal/services/portfolio/readme"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
)

// ReadmeResolver resolves project READMEs.
type ReadmeResolver interface {
	Resolve(ctx context.Context, id string) readme.Result
	ResolveAll(ctx context.Context, ids []string, onResolved func(index int, result readme.Result)) []readme.Result
}

// Dependencies carries the shared services modules are built from.
type Dependencies struct {
	Portfolio *portfolio.Catalog
	Readme    ReadmeResolver
	Markdown  *markdown.Renderer
	Ideas     *ideas.Service
	Sessions  *session.Provider
	Messages  *catalog.Bundle
	// ResumeFile is the on-disk resume served at the fixed resume path.
	// Empty disables the route.
	ResumeFile string
	Scheme     requestmeta.SchemePolicy
	Logger     *zap.Logger
}

// Mount is a module's handler and the path prefix it owns.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module is one feature area of the site.
type Module interface {
	ID() string
	Mount(Dependencies) (Mount, error)
}
