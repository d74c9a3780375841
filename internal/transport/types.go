package transport

import "context"

// ChatTarget identifies the destination chat for a message.
type ChatTarget struct {
	ChatID   int64
	ThreadID int // telegram forum topic thread id (0 if none)
}

// MessageRef points at a delivered message.
type MessageRef struct {
	ChatID    int64
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Client delivers one text message to one chat. Implementations are stateless
// from the caller's perspective and safe for concurrent use; each send is
// independent of every other.
type Client interface {
	SendMessage(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
