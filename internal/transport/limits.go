package transport

import "unicode/utf8"

// MaxMessageLen is Telegram's per-message text limit in characters.
const MaxMessageLen = 4096

// TruncRunes returns s truncated to at most n runes.
// When truncated, the last kept rune is replaced by an ellipsis "…".
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
