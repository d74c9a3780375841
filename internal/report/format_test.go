package report

import (
	"strings"
	"testing"
)

func TestFormatRendering(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data map[string]any
		mode Mode
		want string
	}{
		{
			name: "flat map sorted keys",
			data: map[string]any{"status": "up", "service": "api"},
			mode: ModeHTML,
			want: "service: api\nstatus: up",
		},
		{
			name: "nested map indents",
			data: map[string]any{"a": "v", "b": map[string]any{"x": float64(1)}},
			mode: ModeHTML,
			want: "a: v\nb:\n  x: 1",
		},
		{
			name: "sequence as bullets",
			data: map[string]any{"items": []any{"one", "two"}},
			mode: ModeHTML,
			want: "items:\n  • one\n  • two",
		},
		{
			name: "map element in sequence",
			data: map[string]any{"hosts": []any{map[string]any{"name": "db"}}},
			mode: ModeHTML,
			want: "hosts:\n  •\n    name: db",
		},
		{
			name: "embedded json object",
			data: map[string]any{"payload": `{"code": 500}`},
			mode: ModeHTML,
			want: "payload:\n  code: 500",
		},
		{
			name: "embedded json array",
			data: map[string]any{"tags": `["a", "b"]`},
			mode: ModeHTML,
			want: "tags:\n  • a\n  • b",
		},
		{
			name: "malformed embedded json stays literal",
			data: map[string]any{"payload": "[not json"},
			mode: ModeHTML,
			want: "payload: [not json",
		},
		{
			name: "scalars",
			data: map[string]any{"n": nil, "ok": true, "pi": 3.5, "count": float64(42)},
			mode: ModeHTML,
			want: "count: 42\nn: null\nok: true\npi: 3.5",
		},
		{
			name: "markdownv2 escapes values and keys",
			data: map[string]any{"app.name": "v1.2-rc"},
			mode: ModeMarkdownV2,
			want: `app\.name: v1\.2\-rc`,
		},
		{
			name: "html escapes angle brackets and ampersand",
			data: map[string]any{"html": "<b>&"},
			mode: ModeHTML,
			want: "html: &lt;b&gt;&amp;",
		},
		{
			name: "empty payload",
			data: map[string]any{},
			mode: ModeHTML,
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.data, tt.mode)
			if got != tt.want {
				t.Fatalf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	t.Parallel()
	data := map[string]any{
		"zeta":  "z",
		"alpha": map[string]any{"k2": "b", "k1": "a"},
		"mid":   []any{"x", map[string]any{"deep": true}},
	}
	first := Format(data, ModeMarkdownV2)
	for i := 0; i < 50; i++ {
		if got := Format(data, ModeMarkdownV2); got != first {
			t.Fatalf("iteration %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

func TestFormatCyclicPayloadDegrades(t *testing.T) {
	t.Parallel()
	m := map[string]any{}
	m["self"] = m

	got := Format(m, ModeHTML)
	if !strings.Contains(got, "…") {
		t.Fatalf("expected depth cap marker in output, got %d bytes", len(got))
	}
}

func TestFormatEmbeddedJSONScalarStaysLiteral(t *testing.T) {
	t.Parallel()
	// "42" parses as JSON but is not a structure; keep it literal.
	got := Format(map[string]any{"v": "42"}, ModeHTML)
	if got != "v: 42" {
		t.Fatalf("Format() = %q", got)
	}
}
