// Package site hosts the portfolio and Ideas web surface.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/platform/timeouts"
	"github.com/alexisnsns/pfalexn/internal/services/site/app"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/modules"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/httpx"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/observability"
	"github.com/alexisnsns/pfalexn/internal/services/site/routepath"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
	sitestatic "github.com/alexisnsns/pfalexn/internal/services/site/static"
)

// Config defines startup inputs for the site.
type Config struct {
	HTTPAddr     string
	Dependencies module.Dependencies
	// UploadsDir, when set, is served under /uploads/ for the local object
	// store.
	UploadsDir string
}

// Server hosts the site HTTP surface and lifecycle.
type Server struct {
	httpAddr    string
	httpServer  *http.Server
	logger      *zap.Logger
	unsubscribe func()
	closeOnce   sync.Once
}

// NewHandler builds the root handler from the default module registry.
func NewHandler(cfg Config) (http.Handler, error) {
	deps := cfg.Dependencies
	if deps.Sessions == nil {
		return nil, errors.New("session provider is required")
	}
	deps.Logger = logging.OrNop(deps.Logger)
	h, err := app.Composer{}.Compose(app.ComposeInput{
		Dependencies:     deps,
		AuthRequired:     sessionAuthenticated,
		PublicModules:    modules.DefaultPublicModules(),
		ProtectedModules: modules.DefaultProtectedModules(),
	})
	if err != nil {
		return nil, err
	}
	rootMux := http.NewServeMux()
	rootMux.Handle(routepath.Static, http.StripPrefix(routepath.Static, http.FileServer(http.FS(sitestatic.FS))))
	if dir := strings.TrimSpace(cfg.UploadsDir); dir != "" {
		rootMux.Handle(routepath.Uploads, http.StripPrefix(routepath.Uploads, http.FileServer(http.Dir(dir))))
	}
	rootMux.Handle(routepath.Root, h)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(deps.Logger),
		httpx.RequestID(),
		observability.RequestLogger(deps.Logger),
		app.RequireSameOrigin(deps.Scheme),
		deps.Sessions.Middleware(),
	), nil
}

// NewServer validates config and constructs a site server. The server holds
// one session listener until Close.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose site handler: %w", err)
	}
	logger := logging.OrNop(cfg.Dependencies.Logger)
	s := &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		logger: logger,
	}
	s.unsubscribe = cfg.Dependencies.Sessions.Subscribe(s.logSessionChange)
	return s, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("site server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	defer s.Close()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("site listening", zap.String("addr", s.httpAddr))
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown site http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve site http: %w", err)
	}
}

// Close releases the session listener and closes the HTTP server.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.httpServer != nil {
			_ = s.httpServer.Close()
		}
	})
}

func (s *Server) logSessionChange(change session.Change) {
	s.logger.Info("session changed", zap.String("event", string(change.Event)), zap.String("user_id", change.Viewer.UserID))
}

func sessionAuthenticated(r *http.Request) bool {
	return session.Authenticated(r)
}
