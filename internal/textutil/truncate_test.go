package textutil

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "hola", 10, "hola"},
		{"exact", "hola", 4, "hola"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"accent safe", "Evaluación", 9, "Evaluació"},
		{"zero limit", "abc", 0, "abc"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestExcerptCollapsesWhitespace(t *testing.T) {
	got := Excerpt("  uno\n\n dos\tTres  ", 100)
	if got != "uno dos Tres" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	got = Excerpt("uno dos tres", 7)
	if got != "uno do…" {
		t.Fatalf("unexpected truncated excerpt %q", got)
	}
}

func TestExcerptNeverExceedsLimit(t *testing.T) {
	long := strings.Repeat("ñ", 500)
	for _, limit := range []int{1, 2, 7, 300} {
		got := Excerpt(long, limit)
		if Len(got) != limit {
			t.Fatalf("Excerpt limit %d produced %d runes", limit, Len(got))
		}
		if !strings.HasSuffix(got, "…") {
			t.Fatalf("Excerpt limit %d lost the ellipsis: %q", limit, got)
		}
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"blank", "  \n\t ", "<empty>"},
		{"collapses", " {\n  \"a\": 1\n} ", `{ "a": 1 }`},
		{"clips", strings.Repeat("x", 200), strings.Repeat("x", 160) + "..."},
		{"exact", strings.Repeat("é", 160), strings.Repeat("é", 160)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet(tt.in); got != tt.want {
				t.Fatalf("Snippet(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinBudget(t *testing.T) {
	got := JoinBudget([]string{"Escucha", "Comunica", "Decide"}, "; ", 18)
	if got != "Escucha; Comunica;" {
		t.Fatalf("unexpected join %q", got)
	}
	if Len(got) != 18 {
		t.Fatalf("expected 18 runes, got %d", Len(got))
	}
}
