// Package report converts nested report payloads into Telegram-ready text.
//
// A payload is a string-keyed map with arbitrarily nested values (strings,
// numbers, maps, sequences). Format renders it as indented key/value lines,
// with sequences as bulleted lines. String values that carry serialized JSON
// are unpacked and rendered as structure instead of literal text.
//
// Output is escaped for one of two Telegram parse modes (MarkdownV2 or HTML)
// and is deterministic: keys render in sorted order.
package report
