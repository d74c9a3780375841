// Package notify sends formatted report payloads, best-effort.
//
// Delivery failures are logged and swallowed: callers of Send/SendText never
// see an error. Typed errors from the transport stop at this layer.
package notify

import (
	"context"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"tgreport/internal/report"
	"tgreport/internal/storage"
	"tgreport/internal/transport"
	logx "tgreport/pkg/logx"
)

const (
	historyLimit = 300
	previewRunes = 160
)

type Options struct {
	DisablePreview bool
}

// HistoryItem is a bounded in-memory record of a recent send.
type HistoryItem struct {
	At     time.Time
	ChatID int64
	OK     bool
	Text   string // truncated preview
}

// Service is the best-effort sender. It is safe for concurrent use; each
// send is independent, so no coordination beyond the history lock exists.
type Service struct {
	client transport.Client
	log    logx.Logger
	store  storage.Store // optional delivery journal; may be nil
	opts   Options

	mu      sync.Mutex
	history []HistoryItem
}

func New(client transport.Client, log logx.Logger, store storage.Store, opts Options) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{client: client, log: log, store: store, opts: opts}
}

// Send formats data and delivers it to chat `to`. It never returns an error:
// formatter panics, transport errors and API rejections are logged only.
func (s *Service) Send(ctx context.Context, to transport.ChatTarget, data map[string]any, mode report.Mode) {
	s.SendText(ctx, to, s.formatSafe(data, mode), mode)
}

// SendText delivers pre-formatted text under the same best-effort contract.
// The text must already be escaped for mode.
func (s *Service) SendText(ctx context.Context, to transport.ChatTarget, text string, mode report.Mode) {
	if strings.TrimSpace(text) == "" {
		s.log.Debug("empty notification skipped", logx.Int64("chat_id", to.ChatID))
		return
	}
	if n := utf8.RuneCountInString(text); n > transport.MaxMessageLen {
		s.log.Warn("notification truncated",
			logx.Int64("chat_id", to.ChatID),
			logx.Int("runes", n),
			logx.Int("limit", transport.MaxMessageLen),
		)
		text = transport.TruncRunes(text, transport.MaxMessageLen)
	}

	opt := &transport.SendOptions{
		ParseMode:      string(mode),
		DisablePreview: s.opts.DisablePreview,
	}

	start := time.Now()
	ref, err := s.client.SendMessage(ctx, to, text, opt)
	took := time.Since(start)

	if err != nil {
		s.log.Warn("notification send failed",
			logx.Int64("chat_id", to.ChatID),
			logx.Int("thread_id", to.ThreadID),
			logx.Duration("took", took),
			logx.Err(err),
		)
	} else {
		s.log.Debug("notification sent",
			logx.Int64("chat_id", to.ChatID),
			logx.Int("message_id", ref.MessageID),
			logx.Duration("took", took),
		)
	}

	s.record(ctx, to, mode, text, err, took)
}

// Snapshot returns a copy of the recent send history.
func (s *Service) Snapshot() []HistoryItem {
	s.mu.Lock()
	out := append([]HistoryItem(nil), s.history...)
	s.mu.Unlock()
	return out
}

func (s *Service) formatSafe(data map[string]any, mode report.Mode) (text string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("report formatting panicked",
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())),
			)
			text = ""
		}
	}()
	return report.Format(data, mode)
}

func (s *Service) record(ctx context.Context, to transport.ChatTarget, mode report.Mode, text string, sendErr error, took time.Duration) {
	now := time.Now()

	s.mu.Lock()
	s.history = append(s.history, HistoryItem{
		At:     now,
		ChatID: to.ChatID,
		OK:     sendErr == nil,
		Text:   transport.TruncRunes(text, previewRunes),
	})
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	e := storage.DeliveryEntry{
		At:       now,
		ChatID:   to.ChatID,
		ThreadID: to.ThreadID,
		Mode:     string(mode),
		Chars:    utf8.RuneCountInString(text),
		OK:       sendErr == nil,
		TookMS:   took.Milliseconds(),
	}
	if sendErr != nil {
		e.Error = sendErr.Error()
	}
	if jerr := s.store.AppendDelivery(ctx, e); jerr != nil {
		s.log.Debug("delivery journal append failed", logx.Err(jerr))
	}
}
