// internal/config/loader_test.go
//
// Loader tests run against a temp root with a real YAML file; env
// overrides are exercised through t.Setenv.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const yamlFixture = `
http:
  listen_addr: ":8080"
source:
  base_url: "https://cms.example.com/api/v2"
  auth_method: "bearer"
cache:
  ttl: "30m"
ingest:
  delay: "250ms"
`

func writeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "curator.yaml"), []byte(yamlFixture), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return root
}

func TestLoad(t *testing.T) {
	t.Setenv("CURATOR_ROOT", writeRoot(t))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.ListenAddr != ":8080" {
		t.Fatalf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Cache.TTL != 30*time.Minute {
		t.Fatalf("cache ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Ingest.Delay != 250*time.Millisecond {
		t.Fatalf("ingest delay = %v", cfg.Ingest.Delay)
	}
	if cfg.Source.Timeout != defaultTimeout {
		t.Fatalf("unset timeout should default, got %v", cfg.Source.Timeout)
	}
	if Get() != cfg {
		t.Fatalf("Get() should return the cached pointer")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CURATOR_ROOT", writeRoot(t))
	t.Setenv("CURATOR_HTTP__LISTEN_ADDR", ":9999")
	t.Setenv("CURATOR_SOURCE__TOKEN", "env-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9999" {
		t.Fatalf("env override lost: %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Source.Token != "env-token" {
		t.Fatalf("token override lost: %q", cfg.Source.Token)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "conf"), 0o755)
	os.WriteFile(filepath.Join(root, "conf", "curator.yaml"),
		[]byte("http:\n  listen_addr: \":8080\"\n"), 0o644)
	t.Setenv("CURATOR_ROOT", root)

	if _, err := Load(); err == nil {
		t.Fatalf("missing source.base_url should fail validation")
	}
}
