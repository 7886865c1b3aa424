package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-existe.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("App.Env = %q", cfg.App.Env)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.MagicLinkTTL != time.Hour {
		t.Fatalf("MagicLinkTTL = %v", cfg.Auth.MagicLinkTTL)
	}
	if cfg.Auth.SessionTTL != 30*24*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.CookieName != "hellolink_session" {
		t.Fatalf("CookieName = %q", cfg.Auth.CookieName)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  env: prod
  log_level: warn
server:
  addr: ":9090"
storage:
  driver: postgres
  dsn: "postgres://app@db/hellolink"
  postgres:
    max_open_conns: 25
auth:
  base_url: "https://login.example.com"
  magic_link_ttl: 30m
janitor:
  interval: 5m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if !cfg.IsProd() {
		t.Fatal("IsProd() debería ser true")
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.DSN != "postgres://app@db/hellolink" {
		t.Fatalf("Storage.DSN = %q", cfg.Storage.DSN)
	}
	if cfg.Storage.Postgres.MaxOpenConns != 25 {
		t.Fatalf("MaxOpenConns = %d", cfg.Storage.Postgres.MaxOpenConns)
	}
	if cfg.Auth.MagicLinkTTL != 30*time.Minute {
		t.Fatalf("MagicLinkTTL = %v", cfg.Auth.MagicLinkTTL)
	}
	if cfg.Janitor.Interval != 5*time.Minute {
		t.Fatalf("Janitor.Interval = %v", cfg.Janitor.Interval)
	}
	// Lo no especificado conserva el default.
	if cfg.Auth.SessionTTL != 30*24*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.Auth.SessionTTL)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("AUTH_SESSION_TTL", "48h")
	t.Setenv("SMTP_TLS", "STARTTLS")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Fatalf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("Storage.Driver = %q", cfg.Storage.Driver)
	}
	if cfg.Auth.SessionTTL != 48*time.Hour {
		t.Fatalf("SessionTTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.SMTP.TLS != "starttls" {
		t.Fatalf("SMTP.TLS = %q (debe normalizarse a minúsculas)", cfg.SMTP.TLS)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [roto"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("YAML inválido debe ser error")
	}
}

func TestEnvHelpers_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("STORAGE_PG_MAX_OPEN_CONNS", "muchos")
	t.Setenv("JANITOR_INTERVAL", "cada-tanto")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	// Valores que no parsean se ignoran silenciosamente.
	if cfg.Storage.Postgres.MaxOpenConns != 0 {
		t.Fatalf("MaxOpenConns = %d", cfg.Storage.Postgres.MaxOpenConns)
	}
	if cfg.Janitor.Interval != 15*time.Minute {
		t.Fatalf("Janitor.Interval = %v", cfg.Janitor.Interval)
	}
}
