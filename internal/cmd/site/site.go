// Package site parses site command flags and composes the web server.
package site

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"strings"

	"go.uber.org/zap"

	entrypoint "github.com/alexisnsns/pfalexn/internal/platform/cmd"
	"github.com/alexisnsns/pfalexn/internal/platform/i18n/catalog"
	"github.com/alexisnsns/pfalexn/internal/platform/logging"
	"github.com/alexisnsns/pfalexn/internal/platform/markdown"
	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/alexisnsns/pfalexn/internal/services/backend/local"
	"github.com/alexisnsns/pfalexn/internal/services/backend/supabase"
	"github.com/alexisnsns/pfalexn/internal/services/ideas"
	portfolio "github.com/alexisnsns/pfalexn/internal/services/portfolio/catalog"
	"github.com/alexisnsns/pfalexn/internal/services/portfolio/readme"
	server "github.com/alexisnsns/pfalexn/internal/services/site"
	"github.com/alexisnsns/pfalexn/internal/services/site/module"
	"github.com/alexisnsns/pfalexn/internal/services/site/platform/requestmeta"
	"github.com/alexisnsns/pfalexn/internal/services/site/session"
)

// Backend kinds.
const (
	BackendLocal    = "local"
	BackendSupabase = "supabase"
)

// Config holds site command configuration.
type Config struct {
	HTTPAddr            string `env:"PFALEXN_SITE_HTTP_ADDR"         envDefault:"localhost:8080"`
	Backend             string `env:"PFALEXN_BACKEND"                envDefault:"local"`
	ProjectsFile        string `env:"PFALEXN_PROJECTS_FILE"`
	ResumePath          string `env:"PFALEXN_RESUME_PATH"            envDefault:"assets/resumeAlexN.pdf"`
	OwnerUserID         string `env:"PFALEXN_OWNER_USER_ID"`
	TrustForwardedProto bool   `env:"PFALEXN_TRUST_FORWARDED_PROTO"`
	LogLevel            string `env:"PFALEXN_LOG_LEVEL"              envDefault:"info"`
	LogFormat           string `env:"PFALEXN_LOG_FORMAT"             envDefault:"json"`

	DBPath        string `env:"PFALEXN_DB_PATH"        envDefault:"data/site.db"`
	UploadsDir    string `env:"PFALEXN_UPLOADS_DIR"    envDefault:"data/uploads"`
	UploadsURL    string `env:"PFALEXN_UPLOADS_URL"    envDefault:"/uploads"`
	SessionSecret string `env:"PFALEXN_SESSION_SECRET"`

	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`
	SupabaseBucket  string `env:"SUPABASE_BUCKET"     envDefault:"images"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "site HTTP listen address")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "post and auth backend: local or supabase")
	fs.StringVar(&cfg.ProjectsFile, "projects-file", cfg.ProjectsFile, "portfolio catalog YAML (default: embedded)")
	fs.StringVar(&cfg.ResumePath, "resume-path", cfg.ResumePath, "resume PDF served at /resumeAlexN.pdf")
	fs.StringVar(&cfg.OwnerUserID, "owner-user-id", cfg.OwnerUserID, "restrict writes to this user id")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "trust X-Forwarded-Proto for secure cookies")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: json or console")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "local backend SQLite path")
	fs.StringVar(&cfg.UploadsDir, "uploads-dir", cfg.UploadsDir, "local backend uploads directory")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

// Validate checks that the selected backend is fully configured.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if strings.TrimSpace(c.SessionSecret) == "" {
			return errors.New("PFALEXN_SESSION_SECRET is required for the local backend (generate one with session-key)")
		}
		if _, err := c.sessionSecret(); err != nil {
			return err
		}
	case BackendSupabase:
		if strings.TrimSpace(c.SupabaseURL) == "" || strings.TrimSpace(c.SupabaseAnonKey) == "" {
			return errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

func (c Config) sessionSecret() ([]byte, error) {
	secret, err := hex.DecodeString(strings.TrimSpace(c.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("decode session secret: %w", err)
	}
	return secret, nil
}

// Policy returns the write policy for the configured owner.
func (c Config) Policy() ideas.Policy {
	if owner := strings.TrimSpace(c.OwnerUserID); owner != "" {
		return ideas.SingleOwner(owner)
	}
	return ideas.AnyAuthenticated()
}

// Run builds the site dependencies and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  logging.Format(cfg.LogFormat),
		Service: entrypoint.ServiceSite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceSite, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		store, uploadsDir, err := OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("close backend", zap.Error(err))
			}
		}()

		srvCfg, err := Compose(cfg, store, logger)
		if err != nil {
			return err
		}
		srvCfg.UploadsDir = uploadsDir
		srv, err := server.NewServer(ctx, srvCfg)
		if err != nil {
			return err
		}
		logger.Info("site starting", zap.String("addr", cfg.HTTPAddr), zap.String("backend", cfg.Backend))
		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve site: %w", err)
		}
		return nil
	})
}

// OpenBackend connects the configured backend. The returned directory is
// the local uploads root, empty for hosted storage.
func OpenBackend(cfg Config) (backend.Backend, string, error) {
	switch cfg.Backend {
	case BackendLocal:
		secret, err := cfg.sessionSecret()
		if err != nil {
			return nil, "", err
		}
		store, err := local.Open(local.Config{
			DBPath:        cfg.DBPath,
			UploadsDir:    cfg.UploadsDir,
			UploadsURL:    strings.TrimSpace(cfg.UploadsURL),
			SessionSecret: secret,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open local backend: %w", err)
		}
		return store, store.UploadsDir(), nil
	case BackendSupabase:
		client, err := supabase.New(supabase.Config{
			URL:     cfg.SupabaseURL,
			AnonKey: cfg.SupabaseAnonKey,
			Bucket:  cfg.SupabaseBucket,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open supabase backend: %w", err)
		}
		return client, "", nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Compose builds the site server config around an open backend.
func Compose(cfg Config, store backend.Backend, logger *zap.Logger) (server.Config, error) {
	logger = logging.OrNop(logger)
	cat, err := portfolio.LoadFile(cfg.ProjectsFile)
	if err != nil {
		return server.Config{}, err
	}
	messages, err := catalog.LoadEmbedded()
	if err != nil {
		return server.Config{}, fmt.Errorf("load messages: %w", err)
	}
	posts, err := ideas.NewService(ideas.Config{
		Store:  store,
		Policy: cfg.Policy(),
		Logger: logger.Named("ideas"),
	})
	if err != nil {
		return server.Config{}, err
	}
	scheme := requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto}
	sessions, err := session.NewProvider(store, session.Options{
		SchemePolicy: scheme,
		Logger:       logger.Named("session"),
	})
	if err != nil {
		return server.Config{}, err
	}
	return server.Config{
		HTTPAddr: cfg.HTTPAddr,
		Dependencies: module.Dependencies{
			Portfolio:  cat,
			Readme:     readme.NewResolver(cat, readme.WithLogger(logger.Named("readme"))),
			Markdown:   markdown.New(),
			Ideas:      posts,
			Sessions:   sessions,
			Messages:   messages,
			ResumeFile: strings.TrimSpace(cfg.ResumePath),
			Scheme:     scheme,
			Logger:     logger,
		},
	}, nil
}
