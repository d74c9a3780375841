package notify

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"tgreport/internal/report"
	"tgreport/internal/storage"
	"tgreport/internal/transport"
	logx "tgreport/pkg/logx"
)

type sentCall struct {
	to   transport.ChatTarget
	text string
	opt  transport.SendOptions
}

type fakeClient struct {
	mu    sync.Mutex
	calls []sentCall
	err   error
}

func (f *fakeClient) SendMessage(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := transport.SendOptions{}
	if opt != nil {
		o = *opt
	}
	f.calls = append(f.calls, sentCall{to: to, text: text, opt: o})
	if f.err != nil {
		return transport.MessageRef{}, f.err
	}
	return transport.MessageRef{ChatID: to.ChatID, MessageID: len(f.calls)}, nil
}

func (f *fakeClient) snapshot() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}

func TestSendFormatsAndDelivers(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	svc := New(fc, logx.Nop(), nil, Options{DisablePreview: true})

	data := map[string]any{"service": "api", "status": "down"}
	to := transport.ChatTarget{ChatID: 99}
	svc.Send(context.Background(), to, data, report.ModeHTML)

	calls := fc.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if want := report.Format(data, report.ModeHTML); calls[0].text != want {
		t.Fatalf("text = %q, want %q", calls[0].text, want)
	}
	if calls[0].opt.ParseMode != "HTML" || !calls[0].opt.DisablePreview {
		t.Fatalf("options = %+v", calls[0].opt)
	}

	hist := svc.Snapshot()
	if len(hist) != 1 || !hist[0].OK || hist[0].ChatID != 99 {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSendSwallowsTransportFailure(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{err: errors.New("connection refused")}
	svc := New(fc, logx.Nop(), nil, Options{})

	// Must complete without raising anything to the caller.
	svc.Send(context.Background(), transport.ChatTarget{ChatID: 1}, map[string]any{"k": "v"}, report.ModeMarkdownV2)

	hist := svc.Snapshot()
	if len(hist) != 1 || hist[0].OK {
		t.Fatalf("history = %+v", hist)
	}
}

func TestSendTextTruncatesOverLimit(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	svc := New(fc, logx.Nop(), nil, Options{})

	long := strings.Repeat("a", transport.MaxMessageLen+1000)
	svc.SendText(context.Background(), transport.ChatTarget{ChatID: 1}, long, report.ModeHTML)

	calls := fc.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if n := utf8.RuneCountInString(calls[0].text); n != transport.MaxMessageLen {
		t.Fatalf("sent %d runes, want %d", n, transport.MaxMessageLen)
	}
}

func TestSendSkipsEmptyPayload(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	svc := New(fc, logx.Nop(), nil, Options{})

	svc.Send(context.Background(), transport.ChatTarget{ChatID: 1}, map[string]any{}, report.ModeHTML)

	if calls := fc.snapshot(); len(calls) != 0 {
		t.Fatalf("expected no calls, got %d", len(calls))
	}
}

func TestSendJournalsDeliveries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	store, err := storage.Open(storage.Config{Driver: "file", Path: filepath.Join(dir, "journal")}, logx.Nop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	fc := &fakeClient{}
	svc := New(fc, logx.Nop(), store, Options{})

	ctx := context.Background()
	svc.SendText(ctx, transport.ChatTarget{ChatID: 5}, "first", report.ModeHTML)

	fc.mu.Lock()
	fc.err = errors.New("flood wait")
	fc.mu.Unlock()
	svc.SendText(ctx, transport.ChatTarget{ChatID: 5}, "second", report.ModeHTML)

	entries, err := store.RecentDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("RecentDeliveries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !entries[0].OK || entries[1].OK {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[1].Error == "" || entries[1].ChatID != 5 {
		t.Fatalf("failure entry = %+v", entries[1])
	}
}

func TestSendConcurrentCallsAreIndependent(t *testing.T) {
	t.Parallel()
	fc := &fakeClient{}
	svc := New(fc, logx.Nop(), nil, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.SendText(context.Background(), transport.ChatTarget{ChatID: 1}, "ping", report.ModeHTML)
		}()
	}
	wg.Wait()

	if calls := fc.snapshot(); len(calls) != 16 {
		t.Fatalf("expected 16 calls, got %d", len(calls))
	}
	if hist := svc.Snapshot(); len(hist) != 16 {
		t.Fatalf("expected 16 history items, got %d", len(hist))
	}
}
