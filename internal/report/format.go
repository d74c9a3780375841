package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const indentStep = "  "

// maxDepth bounds recursion so cyclic or absurdly nested payloads degrade
// into an ellipsis line instead of blowing the stack.
const maxDepth = 64

// Format renders a report payload as readable text for the given mode.
//
// Go maps are unordered, so keys are emitted in sorted order; the same
// payload always yields the same string.
func Format(data map[string]any, mode Mode) string {
	var b strings.Builder
	writeMap(&b, data, mode, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func writeMap(b *strings.Builder, m map[string]any, mode Mode, depth int) {
	if depth > maxDepth {
		writeLine(b, depth, "…")
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ind := strings.Repeat(indentStep, depth)
	for _, k := range keys {
		key := mode.Escape(k)
		switch x := resolve(m[k]).(type) {
		case map[string]any:
			b.WriteString(ind)
			b.WriteString(key)
			b.WriteString(":\n")
			writeMap(b, x, mode, depth+1)
		case []any:
			b.WriteString(ind)
			b.WriteString(key)
			b.WriteString(":\n")
			writeSeq(b, x, mode, depth+1)
		default:
			b.WriteString(ind)
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(scalar(x, mode))
			b.WriteString("\n")
		}
	}
}

func writeSeq(b *strings.Builder, items []any, mode Mode, depth int) {
	if depth > maxDepth {
		writeLine(b, depth, "…")
		return
	}
	ind := strings.Repeat(indentStep, depth)
	for _, it := range items {
		switch x := resolve(it).(type) {
		case map[string]any:
			b.WriteString(ind)
			b.WriteString("•\n")
			writeMap(b, x, mode, depth+1)
		case []any:
			b.WriteString(ind)
			b.WriteString("•\n")
			writeSeq(b, x, mode, depth+1)
		default:
			b.WriteString(ind)
			b.WriteString("• ")
			b.WriteString(scalar(x, mode))
			b.WriteString("\n")
		}
	}
}

func writeLine(b *strings.Builder, depth int, s string) {
	b.WriteString(strings.Repeat(indentStep, depth))
	b.WriteString(s)
	b.WriteString("\n")
}

// resolve unpacks string values that carry embedded serialized structures.
// Anything that does not parse as a JSON object or array stays literal.
func resolve(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t := strings.TrimSpace(s)
	if len(t) < 2 {
		return v
	}
	first, last := t[0], t[len(t)-1]
	if !(first == '{' && last == '}') && !(first == '[' && last == ']') {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(t), &parsed); err != nil {
		return v
	}
	switch parsed.(type) {
	case map[string]any, []any:
		return parsed
	}
	return v
}

func scalar(v any, mode Mode) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return mode.Escape(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		// json.Unmarshal delivers all numbers as float64; render 42.0 as "42".
		return mode.Escape(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return mode.Escape(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case json.Number:
		return mode.Escape(x.String())
	case int:
		return mode.Escape(strconv.Itoa(x))
	case int64:
		return mode.Escape(strconv.FormatInt(x, 10))
	case uint64:
		return mode.Escape(strconv.FormatUint(x, 10))
	default:
		return mode.Escape(fmt.Sprint(x))
	}
}
