package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tgreport/internal/config"
	"tgreport/internal/report"
	"tgreport/internal/services/notify"
	"tgreport/internal/storage"
	"tgreport/internal/transport"
	"tgreport/internal/transport/telebot"
	"tgreport/internal/transport/telegram"
	logx "tgreport/pkg/logx"
)

type options struct {
	cfgPath    string
	reportPath string
	text       string
	mode       string
	chatID     int64
	threadID   int
	historyN   int
	follow     bool
}

func main() {
	var o options
	flag.StringVar(&o.cfgPath, "config", "./config.yaml", "path to config file (json or yaml)")
	flag.StringVar(&o.reportPath, "report", "", `report payload JSON file ("-" for stdin)`)
	flag.StringVar(&o.text, "text", "", "send raw pre-formatted text instead of a report file")
	flag.StringVar(&o.mode, "mode", "", "override format mode (MarkdownV2 or HTML)")
	flag.Int64Var(&o.chatID, "chat", 0, "override target chat id")
	flag.IntVar(&o.threadID, "thread", 0, "override target thread id")
	flag.IntVar(&o.historyN, "history", 0, "print the last N journal entries and exit")
	flag.BoolVar(&o.follow, "follow", false, "keep running and resend when the report file changes")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	mgr := config.NewManager(o.cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The client gets a bootstrap console logger: routing its own debug lines
	// through the Telegram log sink would loop sends through itself.
	client, err := buildClient(cfg, logx.NewConsole(cfg.Logging.Level))
	if err != nil {
		return err
	}

	logsvc, log := logx.New(logxConfig(cfg.Logging), client)
	defer logsvc.Close()
	if cfg.Telegram.LogChatID != 0 {
		logsvc.SetTelegramTarget(cfg.Telegram.LogChatID, cfg.Logging.Telegram.ThreadID)
	}
	mgr.SetLogger(log)
	mgr.SetValidator(func(_ context.Context, c *config.Config) error { return c.Validate() })

	store, err := storage.Open(storageConfig(cfg.Storage), log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	if o.historyN > 0 {
		return printHistory(ctx, store, o.historyN)
	}

	mode, err := report.ParseMode(firstNonEmpty(o.mode, cfg.Format.Mode))
	if err != nil {
		return err
	}

	to := transport.ChatTarget{ChatID: cfg.Telegram.ChatID, ThreadID: cfg.Telegram.ThreadID}
	if o.chatID != 0 {
		to.ChatID = o.chatID
	}
	if o.threadID != 0 {
		to.ThreadID = o.threadID
	}
	if to.ChatID == 0 {
		return errors.New("no target chat: set telegram.chat_id or pass -chat")
	}

	svc := notify.New(client, log, store, notify.Options{DisablePreview: cfg.Format.DisablePreview})

	switch {
	case o.text != "":
		svc.SendText(ctx, to, o.text, mode)
	case o.reportPath != "":
		data, err := readReport(o.reportPath)
		if err != nil {
			return err
		}
		svc.Send(ctx, to, data, mode)
	default:
		return errors.New("nothing to send: pass -report or -text")
	}

	if !o.follow {
		return nil
	}
	if o.reportPath == "" || o.reportPath == "-" {
		return errors.New("-follow needs a report file path")
	}

	// Hot-apply config changes (logging, log target) while following.
	go func() { _ = mgr.Watch(ctx) }()
	sub := mgr.Subscribe(2)
	defer mgr.Unsubscribe(sub)
	go func() {
		prev := cfg
		for next := range sub {
			changed, attrs := config.SummarizeChange(prev, next)
			if len(changed) > 0 {
				log.Info("config applied", append(attrs, logx.String("sections", strings.Join(changed, ",")))...)
			}
			logsvc.Apply(logxConfig(next.Logging))
			if next.Telegram.LogChatID != 0 {
				logsvc.SetTelegramTarget(next.Telegram.LogChatID, next.Logging.Telegram.ThreadID)
			}
			prev = next
		}
	}()

	log.Info("following report file", logx.String("path", o.reportPath))
	return watchFile(ctx, log, o.reportPath, func() {
		data, err := readReport(o.reportPath)
		if err != nil {
			log.Warn("report read failed", logx.String("path", o.reportPath), logx.Err(err))
			return
		}
		svc.Send(ctx, to, data, mode)
	})
}

func buildClient(cfg *config.Config, log logx.Logger) (transport.Client, error) {
	timeout, err := config.ParseDurationOrDefault("telegram.timeout", cfg.Telegram.Timeout, 8*time.Second)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Telegram.Driver)) {
	case "", "http":
		return telegram.New(telegram.Config{
			Token:   cfg.Telegram.Token,
			APIBase: cfg.Telegram.APIBase,
			Timeout: timeout,
		}, nil, log)
	case "telebot":
		return telebot.New(telebot.Config{Token: cfg.Telegram.Token})
	default:
		return nil, fmt.Errorf("unknown telegram driver %q", cfg.Telegram.Driver)
	}
}

func readReport(path string) (map[string]any, error) {
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var data map[string]any
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return data, nil
}

func printHistory(ctx context.Context, store storage.Store, n int) error {
	if store == nil {
		return errors.New("storage is not configured")
	}
	entries, err := store.RecentDeliveries(ctx, n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "FAIL " + e.Error
		}
		fmt.Printf("%s chat=%d mode=%s chars=%d took=%dms %s\n",
			e.At.Format(time.RFC3339), e.ChatID, e.Mode, e.Chars, e.TookMS, status)
	}
	return nil
}

func logxConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File: logx.FileConfig{
			Enabled: c.File.Enabled,
			Path:    c.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    c.Telegram.Enabled,
			ThreadID:   c.Telegram.ThreadID,
			MinLevel:   c.Telegram.MinLevel,
			RatePerSec: c.Telegram.RatePerSec,
		},
	}
}

func storageConfig(c *config.StorageConfig) storage.Config {
	if c == nil {
		return storage.Config{}
	}
	busy, _ := config.ParseDurationField("storage.busy_timeout", c.BusyTimeout)
	return storage.Config{Driver: c.Driver, Path: c.Path, BusyTimeout: busy}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
