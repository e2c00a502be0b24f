package site

import (
	"flag"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexisnsns/pfalexn/internal/services/ideas"
)

const testSecret = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("site", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
	if cfg.Backend != BackendLocal {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendLocal)
	}
	if cfg.UploadsURL != "/uploads" {
		t.Fatalf("UploadsURL = %q, want %q", cfg.UploadsURL, "/uploads")
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PFALEXN_BACKEND", "Supabase")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")

	fs := flag.NewFlagSet("site", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9000", "-owner-user-id", "u1"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9000")
	}
	if cfg.Backend != BackendSupabase {
		t.Fatalf("Backend = %q, want %q", cfg.Backend, BackendSupabase)
	}
	if cfg.SupabaseURL != "https://example.supabase.co" {
		t.Fatalf("SupabaseURL = %q", cfg.SupabaseURL)
	}
	if cfg.OwnerUserID != "u1" {
		t.Fatalf("OwnerUserID = %q, want %q", cfg.OwnerUserID, "u1")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "local ok", cfg: Config{Backend: BackendLocal, SessionSecret: testSecret}},
		{name: "local missing secret", cfg: Config{Backend: BackendLocal}, wantErr: "session-key"},
		{name: "local bad secret", cfg: Config{Backend: BackendLocal, SessionSecret: "zz"}, wantErr: "decode session secret"},
		{name: "supabase ok", cfg: Config{Backend: BackendSupabase, SupabaseURL: "https://x.supabase.co", SupabaseAnonKey: "anon"}},
		{name: "supabase missing key", cfg: Config{Backend: BackendSupabase, SupabaseURL: "https://x.supabase.co"}, wantErr: "SUPABASE_ANON_KEY"},
		{name: "unknown", cfg: Config{Backend: "mongo"}, wantErr: "unknown backend"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestPolicy(t *testing.T) {
	t.Parallel()

	owner := ideas.Viewer{UserID: "u1", AccessToken: "tok"}
	other := ideas.Viewer{UserID: "u2", AccessToken: "tok"}

	open := Config{}.Policy()
	if !open.Allows(owner) || !open.Allows(other) {
		t.Fatalf("default policy should allow any authenticated viewer")
	}
	single := Config{OwnerUserID: "u1"}.Policy()
	if !single.Allows(owner) || single.Allows(other) {
		t.Fatalf("owner policy should allow only u1")
	}
}

func TestOpenBackendLocalAndCompose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{
		HTTPAddr:      "127.0.0.1:0",
		Backend:       BackendLocal,
		DBPath:        filepath.Join(dir, "nested", "site.db"),
		UploadsDir:    filepath.Join(dir, "uploads"),
		UploadsURL:    "/uploads",
		SessionSecret: testSecret,
	}
	store, uploadsDir, err := OpenBackend(cfg)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if uploadsDir != filepath.Join(dir, "uploads") {
		t.Fatalf("uploadsDir = %q", uploadsDir)
	}

	srvCfg, err := Compose(cfg, store, nil)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	deps := srvCfg.Dependencies
	if deps.Portfolio == nil || deps.Readme == nil || deps.Ideas == nil || deps.Sessions == nil || deps.Messages == nil {
		t.Fatalf("Compose() left dependencies unset: %+v", deps)
	}
	if len(deps.Portfolio.Projects) == 0 {
		t.Fatalf("embedded catalog has no projects")
	}
}

func TestComposeRejectsMissingProjectsFile(t *testing.T) {
	t.Parallel()

	cfg := Config{ProjectsFile: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := Compose(cfg, nil, nil); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}
