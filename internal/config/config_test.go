package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port, got %q", cfg.APIPort)
	}
	if cfg.JournalBackend != "file" {
		t.Fatalf("expected file journal backend, got %q", cfg.JournalBackend)
	}
	if cfg.NATSSubject != "tasks.inbox" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.WatchDebounceMS != 500 {
		t.Fatalf("expected default debounce, got %d", cfg.WatchDebounceMS)
	}
	if cfg.RateLimitRPS != 10 || cfg.RateLimitBurst != 20 {
		t.Fatalf("unexpected rate limit defaults: %v / %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("JOURNAL_BACKEND", "postgres")
	t.Setenv("WATCH_DEBOUNCE_MS", "250")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadWithFile("")
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("env api port ignored, got %q", cfg.APIPort)
	}
	if cfg.JournalBackend != "postgres" {
		t.Fatalf("env journal backend ignored, got %q", cfg.JournalBackend)
	}
	if cfg.WatchDebounceMS != 250 {
		t.Fatalf("env debounce ignored, got %d", cfg.WatchDebounceMS)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("env rps ignored, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadFileWithEnvWinning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "api_port: \"7070\"\nvault_path: /srv/vault\nnats_subject: tasks.custom\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("API_PORT", "6060")

	cfg, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if cfg.VaultPath != "/srv/vault" {
		t.Fatalf("file vault path ignored, got %q", cfg.VaultPath)
	}
	if cfg.NATSSubject != "tasks.custom" {
		t.Fatalf("file subject ignored, got %q", cfg.NATSSubject)
	}
	// Environment always beats the file.
	if cfg.APIPort != "6060" {
		t.Fatalf("env must win over the file, got %q", cfg.APIPort)
	}
}

func TestLoadBadFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":::not yaml"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadWithFile(path)
	if err == nil {
		t.Fatalf("expected a parse error for bad yaml")
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("bad file must still yield defaults, got %q", cfg.APIPort)
	}
}
