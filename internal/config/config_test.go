package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, logLevelEnv, tokenEnv, feedURLEnv, usernameEnv, tmdbAPIKeyEnv,
		dryRunEnv, watchLimitEnv, searchSiteEnv, ledgerDriverEnv, ledgerDSNEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Enrich.Limit != 50 {
		t.Fatalf("expected default limit 50, got %d", cfg.Enrich.Limit)
	}
	if cfg.Enrich.Interval != 500*time.Millisecond {
		t.Fatalf("expected default interval 500ms, got %s", cfg.Enrich.Interval)
	}
	if cfg.Enrich.DryRun {
		t.Fatalf("dry run must default to false")
	}
	if cfg.Microblog.MicropubEndpoint != "https://micro.blog/micropub" {
		t.Fatalf("unexpected micropub endpoint %s", cfg.Microblog.MicropubEndpoint)
	}
	if cfg.Ledger.Driver != LedgerNone {
		t.Fatalf("ledger should be disabled by default, got %s", cfg.Ledger.Driver)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mbtheme.yaml")
	raw := []byte(`
logging:
  level: debug
microblog:
  feedUrl: https://file.example/feed.json
  token: file-token
enrich:
  limit: 5
  interval: 1s
ledger:
  driver: sqlite
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(tokenEnv, "env-token")
	t.Setenv(dryRunEnv, "true")
	t.Setenv(watchLimitEnv, "7")

	cfg := Load()
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from file, got %s", cfg.Logging.Level)
	}
	if cfg.Microblog.FeedURL != "https://file.example/feed.json" {
		t.Fatalf("expected feed from file, got %s", cfg.Microblog.FeedURL)
	}
	if cfg.Microblog.Token != "env-token" {
		t.Fatalf("env should override file token, got %s", cfg.Microblog.Token)
	}
	if !cfg.Enrich.DryRun {
		t.Fatalf("expected dry run from env")
	}
	if cfg.Enrich.Limit != 7 {
		t.Fatalf("expected limit 7 from env, got %d", cfg.Enrich.Limit)
	}
	if cfg.Enrich.Interval != time.Second {
		t.Fatalf("expected interval 1s, got %s", cfg.Enrich.Interval)
	}
	if cfg.Ledger.Driver != LedgerSQLite {
		t.Fatalf("expected sqlite ledger, got %s", cfg.Ledger.Driver)
	}
	if cfg.TMDB.Endpoint == "" {
		t.Fatalf("defaults should survive merge")
	}
}

func TestLoadBadFileFallsBack(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("enrich: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Enrich.Limit != 50 {
		t.Fatalf("expected defaults after parse failure, got limit %d", cfg.Enrich.Limit)
	}
}

func TestLoadFromIgnoresEnvPath(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envPath := filepath.Join(dir, "env.yaml")
	flagPath := filepath.Join(dir, "flag.yaml")
	if err := os.WriteFile(envPath, []byte("enrich:\n  limit: 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(flagPath, []byte("enrich:\n  limit: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, envPath)
	t.Setenv(tokenEnv, "env-token")

	cfg := LoadFrom(flagPath)
	if cfg.Enrich.Limit != 9 {
		t.Fatalf("expected limit from the given file, got %d", cfg.Enrich.Limit)
	}
	if cfg.Microblog.Token != "env-token" {
		t.Fatalf("env overrides must still apply, got %q", cfg.Microblog.Token)
	}
	if got := os.Getenv(configPathEnv); got != envPath {
		t.Fatalf("%s changed to %q", configPathEnv, got)
	}
}

func TestValidateEnrichment(t *testing.T) {
	t.Parallel()

	full := defaultConfig()
	full.Microblog.Token = "t"
	full.Microblog.FeedURL = "https://blog.example/feed.json"
	full.TMDB.APIKey = "k"

	if err := full.ValidateEnrichment(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"token", func(c *Config) { c.Microblog.Token = "" }, tokenEnv},
		{"feed", func(c *Config) { c.Microblog.FeedURL = "" }, feedURLEnv},
		{"tmdb", func(c *Config) { c.TMDB.APIKey = "" }, tmdbAPIKeyEnv},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := full
			tt.mutate(&cfg)

			err := cfg.ValidateEnrichment()
			var missing *MissingCredentialError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingCredentialError, got %v", err)
			}
			if missing.Name != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, missing.Name)
			}
		})
	}
}
