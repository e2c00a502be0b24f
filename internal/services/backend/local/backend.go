package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/alexisnsns/pfalexn/internal/platform/storage/sqlitemigrate"
	"github.com/alexisnsns/pfalexn/internal/services/backend"
	"github.com/alexisnsns/pfalexn/internal/services/backend/local/migrations"
	_ "modernc.org/sqlite"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour
	minSecretBytes    = 32
)

// Config configures a local backend.
type Config struct {
	DBPath     string
	UploadsDir string
	// UploadsURL is the public URL prefix uploaded objects are served under.
	UploadsURL    string
	SessionSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// Backend implements backend.Backend locally.
type Backend struct {
	sqlDB      *sql.DB
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	objects    objectDir
}

var _ backend.Backend = (*Backend)(nil)

// Open opens and migrates the SQLite file and prepares the uploads directory.
func Open(cfg Config) (*Backend, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if len(cfg.SessionSecret) < minSecretBytes {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretBytes)
	}
	objects, err := newObjectDir(cfg.UploadsDir, cfg.UploadsURL)
	if err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(cfg.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	b := &Backend{
		sqlDB:      sqlDB,
		secret:     append([]byte(nil), cfg.SessionSecret...),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		objects:    objects,
	}
	if b.accessTTL <= 0 {
		b.accessTTL = defaultAccessTTL
	}
	if b.refreshTTL <= 0 {
		b.refreshTTL = defaultRefreshTTL
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b, nil
}

// Close releases the underlying SQLite database.
func (b *Backend) Close() error {
	if b == nil || b.sqlDB == nil {
		return nil
	}
	return b.sqlDB.Close()
}

func (b *Backend) ready() error {
	if b == nil || b.sqlDB == nil {
		return errors.New("storage is not configured")
	}
	return nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
