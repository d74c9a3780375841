package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tgreport/internal/transport"
	logx "tgreport/pkg/logx"
)

func TestSendMessageSuccess(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":42}}`))
	}))
	defer srv.Close()

	c, err := New(Config{Token: "TEST-TOKEN", APIBase: srv.URL}, srv.Client(), logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	to := transport.ChatTarget{ChatID: -100123, ThreadID: 7}
	ref, err := c.SendMessage(context.Background(), to, "hello", &transport.SendOptions{ParseMode: "HTML"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if gotPath != "/botTEST-TOKEN/sendMessage" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotBody.ChatID != -100123 || gotBody.ThreadID != 7 {
		t.Fatalf("target = %d/%d", gotBody.ChatID, gotBody.ThreadID)
	}
	if gotBody.Text != "hello" || gotBody.ParseMode != "HTML" {
		t.Fatalf("body = %+v", gotBody)
	}
	if ref.MessageID != 42 || ref.ChatID != -100123 {
		t.Fatalf("ref = %+v", ref)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c, err := New(Config{Token: "t", APIBase: srv.URL}, srv.Client(), logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.SendMessage(context.Background(), transport.ChatTarget{ChatID: 1}, "x", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") || !strings.Contains(err.Error(), "http=400") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendMessageNonJSONFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	c, err := New(Config{Token: "t", APIBase: srv.URL}, srv.Client(), logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.SendMessage(context.Background(), transport.ChatTarget{ChatID: 1}, "x", nil)
	if err == nil || !strings.Contains(err.Error(), "http=502") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendMessageTransportError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // dead endpoint

	c, err := New(Config{Token: "t", APIBase: base}, nil, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.SendMessage(context.Background(), transport.ChatTarget{ChatID: 1}, "x", nil); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestNewRejectsEmptyToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}, nil, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}
