// Package telegram implements transport.Client with direct Bot API calls
// over HTTP, without pulling in a full bot framework.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tgreport/internal/transport"
	logx "tgreport/pkg/logx"
)

// DefaultAPIBase is the production Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

type Config struct {
	Token string

	// APIBase overrides the Bot API base URL. Leave empty for production;
	// tests and local bot-api servers point it elsewhere.
	APIBase string

	// Timeout applies to the default HTTP client only.
	Timeout time.Duration
}

// Client posts sendMessage calls to the Bot API.
type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

// New builds a Client. httpClient may be nil, in which case a default client
// with cfg.Timeout (8s when unset) is used.
func New(cfg Config, httpClient *http.Client, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	base := strings.TrimSpace(cfg.APIBase)
	if base == "" {
		base = DefaultAPIBase
	}
	cfg.APIBase = strings.TrimRight(base, "/")

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 8 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{cfg: cfg, http: httpClient, log: log}, nil
}

type sendMessageRequest struct {
	ChatID         int64  `json:"chat_id"`
	ThreadID       int    `json:"message_thread_id,omitempty"`
	Text           string `json:"text"`
	ParseMode      string `json:"parse_mode,omitempty"`
	DisablePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// apiEnvelope is the Bot API response wrapper.
type apiEnvelope struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

func (c *Client) SendMessage(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if opt == nil {
		opt = &transport.SendOptions{}
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:         to.ChatID,
		ThreadID:       to.ThreadID,
		Text:           text,
		ParseMode:      opt.ParseMode,
		DisablePreview: opt.DisablePreview,
	})
	if err != nil {
		return transport.MessageRef{}, err
	}

	url := c.cfg.APIBase + "/bot" + strings.TrimSpace(c.cfg.Token) + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return transport.MessageRef{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transport.MessageRef{}, err
	}
	defer resp.Body.Close()

	// Decode is best-effort: the status check below also covers bodies the
	// API never sent (proxies, truncation).
	var out apiEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode/100 != 2 || !out.OK {
		if out.Description != "" {
			return transport.MessageRef{}, fmt.Errorf("telegram sendMessage failed: %s (code=%d http=%d)", out.Description, out.ErrorCode, resp.StatusCode)
		}
		return transport.MessageRef{}, fmt.Errorf("telegram sendMessage failed: http=%d", resp.StatusCode)
	}

	c.log.Debug("message sent",
		logx.Int64("chat_id", to.ChatID),
		logx.Int("message_id", out.Result.MessageID),
	)
	return transport.MessageRef{ChatID: to.ChatID, ThreadID: to.ThreadID, MessageID: out.Result.MessageID}, nil
}
