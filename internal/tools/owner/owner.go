// Package owner creates the account that may write posts on the local backend.
package owner

import (
	"bufio"
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/alexisnsns/pfalexn/internal/platform/config"
	"github.com/alexisnsns/pfalexn/internal/services/backend/local"
)

// Config holds owner tool configuration.
type Config struct {
	DBPath     string `env:"PFALEXN_DB_PATH"        envDefault:"data/site.db"`
	UploadsDir string `env:"PFALEXN_UPLOADS_DIR"    envDefault:"data/uploads"`
	Email      string `env:"PFALEXN_OWNER_EMAIL"`
	Password   string `env:"PFALEXN_OWNER_PASSWORD"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "local backend SQLite path")
	fs.StringVar(&cfg.UploadsDir, "uploads-dir", cfg.UploadsDir, "local backend uploads directory")
	fs.StringVar(&cfg.Email, "email", cfg.Email, "owner email")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run creates the owner account and prints its id. When no password is
// configured, the first line of in is used.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	if out == nil {
		return errors.New("output is required")
	}
	email := strings.TrimSpace(cfg.Email)
	if email == "" {
		return errors.New("email is required")
	}
	password := cfg.Password
	if password == "" {
		if in == nil {
			return errors.New("password is required")
		}
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	// Account creation never signs tokens, so a throwaway secret suffices.
	secret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	store, err := local.Open(local.Config{
		DBPath:        cfg.DBPath,
		UploadsDir:    cfg.UploadsDir,
		SessionSecret: secret,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := store.CreateUser(ctx, email, password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "created %s\nPFALEXN_OWNER_USER_ID=%s\n", user.Email, user.ID)
	return err
}
