package config

import (
	"errors"
	"fmt"
	"strings"

	"tgreport/internal/report"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Format   FormatConfig   `json:"format,omitempty"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// APIBase overrides the Bot API base URL.
	// Leave empty for https://api.telegram.org.
	APIBase string `json:"api_base,omitempty"`

	// Driver selects the transport implementation:
	//   - "http" (default): direct Bot API POSTs
	//   - "telebot": gopkg.in/telebot.v4
	Driver string `json:"driver,omitempty"`

	// ChatID is the default target chat for reports.
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`

	// LogChatID receives log lines when logging.telegram is enabled.
	LogChatID int64 `json:"log_chat_id,omitempty"`

	// Timeout is a Go duration string for the HTTP client (default "8s").
	Timeout string `json:"timeout,omitempty"`
}

type FormatConfig struct {
	// Mode is "MarkdownV2" (default) or "HTML".
	Mode           string `json:"mode,omitempty"`
	DisablePreview bool   `json:"disable_preview,omitempty"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	ThreadID   int    `json:"thread_id"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// StorageConfig controls the optional delivery journal.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./tgreport_journal" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// Validate checks field values beyond what strict decoding catches.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Telegram.Driver)) {
	case "", "http", "telebot":
	default:
		return fmt.Errorf("telegram.driver: unknown driver %q", c.Telegram.Driver)
	}
	if _, err := report.ParseMode(c.Format.Mode); err != nil {
		return fmt.Errorf("format.mode: %w", err)
	}
	if _, err := ParseDurationField("telegram.timeout", c.Telegram.Timeout); err != nil {
		return err
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
