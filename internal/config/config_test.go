package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.Provider != "session" {
		t.Errorf("provider = %q", cfg.Auth.Provider)
	}
	if cfg.Cache.Kind != "memory" {
		t.Errorf("cache = %q", cfg.Cache.Kind)
	}
	if !cfg.Gate.Invert || len(cfg.Gate.Patterns) == 0 {
		t.Errorf("gate defaults = %+v", cfg.Gate)
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.SessionTTL())
	}
	if cfg.MFACodeTTL() != 5*time.Minute {
		t.Errorf("code ttl = %v", cfg.MFACodeTTL())
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
session:
  cookie_name: gate_sid
  ttl: 2h
gate:
  patterns: ["/admin"]
  invert: false
mfa:
  enabled: true
  code_ttl: 90s
  max_attempts: 5
storage:
  driver: memory
  seed:
    - email: ana@example.com
      name: Ana
      password: hunter2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Session.CookieName != "gate_sid" || cfg.SessionTTL() != 2*time.Hour {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Gate.Invert || len(cfg.Gate.Patterns) != 1 || cfg.Gate.Patterns[0] != "/admin" {
		t.Errorf("gate = %+v", cfg.Gate)
	}
	if !cfg.MFA.Enabled || cfg.MFACodeTTL() != 90*time.Second || cfg.MFA.MaxAttempts != 5 {
		t.Errorf("mfa = %+v", cfg.MFA)
	}
	if len(cfg.Storage.Seed) != 1 || cfg.Storage.Seed[0].Email != "ana@example.com" {
		t.Errorf("seed = %+v", cfg.Storage.Seed)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTHGATE_ADDR", ":7777")
	t.Setenv("AUTHGATE_MFA_ENABLED", "true")
	t.Setenv("AUTHGATE_MFA_CODE_TTL", "30s")
	t.Setenv("AUTHGATE_JWT_SECRET", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if !cfg.MFA.Enabled || cfg.MFACodeTTL() != 30*time.Second {
		t.Errorf("mfa = %+v", cfg.MFA)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("jwt secret = %q", cfg.JWT.Secret)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	path := writeConfig(t, "session:\n  ttl: not-a-duration\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.SessionTTL())
	}
}

func TestMissingFileIsError(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
