// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("SECRET_KEY", "test-secret")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("SECRET_KEY", "test-secret")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_TTLDefaults(t *testing.T) {
	os.Setenv("DATABASE_URL", "file:test.db")
	os.Setenv("SECRET_KEY", "test-secret")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBResultTTL != 30*time.Second {
		t.Errorf("expected 30s db TTL, got %s", cfg.DBResultTTL)
	}
	if cfg.ChainResultTTL != 60*time.Second {
		t.Errorf("expected 60s chain TTL, got %s", cfg.ChainResultTTL)
	}
}

func TestParseFlags_SecretRequired(t *testing.T) {
	os.Setenv("DATABASE_URL", "file:test.db")
	defer os.Clearenv()

	_, err := ParseFlags([]string{})
	if err == nil {
		t.Error("expected error when SECRET_KEY is missing")
	}
}
