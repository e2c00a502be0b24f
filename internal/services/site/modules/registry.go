// Package modules lists the site's feature modules by access group.
package modules

import (
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/modules/ideas"
	"github.com/alexisnsns/pfalexn/internal/services/site/modules/public"
	"github.com/alexisnsns/pfalexn/internal/services/site/modules/write"
)

// DefaultPublicModules returns modules reachable without signing in.
func DefaultPublicModules() []module.Module {
	return []module.Module{
		public.New(),
		ideas.New(),
	}
}

// DefaultProtectedModules returns modules that require a signed-in viewer.
func DefaultProtectedModules() []module.Module {
	return []module.Module{
		write.New(),
	}
}
