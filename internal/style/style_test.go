package style

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/streamdown/streamdown/internal/config"
	"github.com/streamdown/streamdown/internal/event"
)

func TestThemeFromHueIsDeterministic(t *testing.T) {
	a := ThemeFromHue(140)
	b := ThemeFromHue(140)
	if *a != *b {
		t.Errorf("same hue produced different themes: %+v vs %+v", a, b)
	}
	c := ThemeFromHue(300)
	if a.Heading == c.Heading {
		t.Error("different hues produced the same heading color")
	}
}

func TestThemeFromHueNormalizesDegrees(t *testing.T) {
	if a, b := ThemeFromHue(-220), ThemeFromHue(140); *a != *b {
		t.Errorf("negative hue not normalized: %+v vs %+v", a, b)
	}
	if a, b := ThemeFromHue(500), ThemeFromHue(140); *a != *b {
		t.Errorf("hue above 360 not normalized: %+v vs %+v", a, b)
	}
}

func TestThemeFromConfigOverrides(t *testing.T) {
	cfg := config.ThemeConfig{Hue: 210, Heading: "#ff0000", Muted: "240"}
	theme := ThemeFromConfig(cfg)
	if theme.Heading != lipgloss.Color("#ff0000") {
		t.Errorf("heading override ignored: %v", theme.Heading)
	}
	if theme.Muted != lipgloss.Color("240") {
		t.Errorf("muted override ignored: %v", theme.Muted)
	}
	// Unset roles still derive from the hue.
	derived := ThemeFromHue(210)
	if theme.Link != derived.Link {
		t.Errorf("link color diverged from derived palette")
	}
}

func TestApplyPlainSpanPassesThrough(t *testing.T) {
	styles := NewStyles(&bytes.Buffer{}, ThemeFromHue(210), true)
	span := event.InlineSpan{Style: event.SpanPlain, Text: "as-is"}
	if got := styles.Apply(span); got != "as-is" {
		t.Errorf("Apply(plain) = %q", got)
	}
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"世界", 4},
		{"\x1b[1mab\x1b[0m", 2},
	}
	for _, tt := range tests {
		if got := DisplayWidth(tt.in); got != tt.want {
			t.Errorf("DisplayWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if RuneWidth('世') != 2 || RuneWidth('a') != 1 {
		t.Error("rune widths wrong")
	}
}
