package highlight

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestUnknownLanguageReturnsNil(t *testing.T) {
	if h := New("not-a-language", "monokai"); h != nil {
		t.Error("expected nil highlighter for unknown language")
	}
	if h := New("", "monokai"); h != nil {
		t.Error("expected nil highlighter for empty language")
	}
}

func TestNilHighlighterPassesThrough(t *testing.T) {
	var h *Highlighter
	if got := h.Line("anything at all"); got != "anything at all" {
		t.Errorf("nil Line = %q", got)
	}
}

func TestHighlightPreservesContent(t *testing.T) {
	h := New("go", "monokai")
	if h == nil {
		t.Fatal("go lexer missing")
	}
	lines := []string{
		`func main() { fmt.Println("hi") }`,
		"\tx := 1 // comment",
		"",
	}
	for _, line := range lines {
		got := h.Line(line)
		if ansi.Strip(got) != line {
			t.Errorf("content changed: %q -> %q", line, ansi.Strip(got))
		}
	}
}

func TestUnknownStyleFallsBack(t *testing.T) {
	h := New("go", "definitely-not-a-style")
	if h == nil {
		t.Fatal("highlighter not created with fallback style")
	}
	if got := ansi.Strip(h.Line("x := 1")); got != "x := 1" {
		t.Errorf("content changed: %q", got)
	}
}
