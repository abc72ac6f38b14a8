package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.InboxPath(); got != filepath.Join(".", "assistant_inbox.json") {
		t.Errorf("unexpected inbox path %q", got)
	}
	if got := cfg.OutboxPath(); got != filepath.Join(".", "assistant_outbox.json") {
		t.Errorf("unexpected outbox path %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "tape" }, "unknown backend"},
		{"missing name", func(c *Config) { c.InboxName = "" }, "required"},
		{"same names", func(c *Config) { c.OutboxName = c.InboxName }, "must differ"},
		{"zero interval", func(c *Config) { c.PollInterval = 0 }, "poll_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{DataDir: "/tmp/mail", Lock: true, PollInterval: 2 * time.Second})

	if cfg.DataDir != "/tmp/mail" || !cfg.Lock || cfg.PollInterval != 2*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.InboxName != "assistant_inbox" {
		t.Errorf("zero values must not overwrite, got inbox %q", cfg.InboxName)
	}

	cfg.UpdateFrom(Config{})
	if !cfg.Lock {
		t.Error("empty override turned lock off")
	}
}

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailbridge.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path %q, want %q", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.Backend != BackendFile || cfg.PollInterval != time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailbridge.yaml")
	data := "backend: memory\npoll_interval: 250ms\ninbox_name: in\noutbox_name: out\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAILBRIDGE_RESPONDER", "upper")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("backend %q, want memory", cfg.Backend)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval %v", cfg.PollInterval)
	}
	if cfg.InboxName != "in" || cfg.OutboxName != "out" {
		t.Errorf("names %q/%q", cfg.InboxName, cfg.OutboxName)
	}
	if cfg.Responder != "upper" {
		t.Errorf("env override not applied, responder %q", cfg.Responder)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailbridge.yaml")
	if err := os.WriteFile(path, []byte("backend: tape\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(nil, path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("addr: 0.0.0.0:9090\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAILBRIDGE_CONFIG", path)

	cfg, resolved, err := Load(nil, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if resolved != path {
		t.Errorf("resolved path %q, want %q", resolved, path)
	}
	if cfg.Addr != "0.0.0.0:9090" {
		t.Errorf("addr %q", cfg.Addr)
	}
}
