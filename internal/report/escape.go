package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mode selects the escaping rule applied to rendered text. The string value
// matches the parse_mode the Telegram API expects for the same dialect.
type Mode string

const (
	ModeMarkdownV2 Mode = "MarkdownV2"
	ModeHTML       Mode = "HTML"
)

// markdownV2Reserved is the set Telegram requires escaping for
// parse_mode=MarkdownV2 outside of code entities.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// ParseMode maps a config/flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdownv2", "markdown":
		return ModeMarkdownV2, nil
	case "html":
		return ModeHTML, nil
	default:
		return "", fmt.Errorf("unknown format mode %q (want MarkdownV2 or HTML)", s)
	}
}

// Escape applies the mode's escaping rule to s.
// An unknown mode passes text through untouched.
func (m Mode) Escape(s string) string {
	switch m {
	case ModeMarkdownV2:
		return escapeMarkdownV2(s)
	case ModeHTML:
		return htmlReplacer.Replace(s)
	default:
		return s
	}
}

func escapeMarkdownV2(s string) string {
	if !strings.ContainsAny(s, markdownV2Reserved) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if r < utf8.RuneSelf && strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
