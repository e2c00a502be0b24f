package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"PFALEXN_TEST_PORT" envDefault:"123"`
}

type prefixedTestConfig struct {
	Path string `env:"PATH_VALUE" envDefault:"site.db"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PFALEXN_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvWithPrefixReadsPrefixedKey(t *testing.T) {
	t.Setenv("PFALEXN_TEST_PATH_VALUE", "/tmp/other.db")

	var cfg prefixedTestConfig
	if err := ParseEnvWithPrefix(&cfg, "PFALEXN_TEST_"); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Path != "/tmp/other.db" {
		t.Fatalf("Path = %q, want %q", cfg.Path, "/tmp/other.db")
	}
}
