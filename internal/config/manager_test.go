package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
telegram:
  token: "123:abc"
  chat_id: -100500
  driver: http
  timeout: "5s"
format:
  mode: HTML
  disable_preview: true
logging:
  level: info
  console: true
  file:
    enabled: false
    path: ""
  telegram:
    enabled: false
    thread_id: 0
    min_level: warn
    rate_per_sec: 1
storage:
  driver: file
  path: ./journal
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "config.yaml", sampleYAML)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.ChatID != -100500 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if cfg.Format.Mode != "HTML" || !cfg.Format.DisablePreview {
		t.Fatalf("format = %+v", cfg.Format)
	}
	if cfg.Storage == nil || cfg.Storage.Driver != "file" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get() should return the committed config")
	}

	d, err := ParseDurationOrDefault("telegram.timeout", cfg.Telegram.Timeout, 8*time.Second)
	if err != nil || d != 5*time.Second {
		t.Fatalf("timeout = %v, err %v", d, err)
	}
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "config.json",
		`{"telegram":{"token":"t","chat_id":1},"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""},"telegram":{"enabled":false,"thread_id":0,"min_level":"","rate_per_sec":0}}}`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "t" || cfg.Telegram.ChatID != 1 {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "config.yaml", "telegram:\n  token: t\n  chat_id: 1\n  typo_field: true\n")
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsTrailingJSON(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "config.json", `{"telegram":{"token":"t","chat_id":1}} {"extra":1}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Telegram.Token = " " }, wantErr: true},
		{name: "bad driver", mutate: func(c *Config) { c.Telegram.Driver = "smoke-signal" }, wantErr: true},
		{name: "bad mode", mutate: func(c *Config) { c.Format.Mode = "bbcode" }, wantErr: true},
		{name: "bad timeout", mutate: func(c *Config) { c.Telegram.Timeout = "soon" }, wantErr: true},
		{name: "negative busy timeout", mutate: func(c *Config) {
			c.Storage = &StorageConfig{Driver: "sqlite", Path: "x", BusyTimeout: "-1s"}
		}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Telegram: TelegramConfig{Token: "t", ChatID: 1}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	oldCfg := &Config{Telegram: TelegramConfig{Token: "t", ChatID: 1}}
	newCfg := &Config{
		Telegram: TelegramConfig{Token: "t", ChatID: 2},
		Logging:  LoggingConfig{Level: "debug"},
	}
	changed, _ := SummarizeChange(oldCfg, newCfg)
	want := []string{"logging", "telegram"}
	if len(changed) != len(want) {
		t.Fatalf("changed = %v, want %v", changed, want)
	}
	for i := range want {
		if changed[i] != want[i] {
			t.Fatalf("changed = %v, want %v", changed, want)
		}
	}

	if changed, _ := SummarizeChange(oldCfg, oldCfg); len(changed) != 0 {
		t.Fatalf("expected no changes, got %v", changed)
	}
}
