// Package style owns the color palette and the single styling boundary:
// the renderer hands it span attributes and gets styled bytes back, never
// touching escape sequences itself. Styling must never fail; on a dumb
// terminal every helper degrades to plain text.
package style

import (
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/streamdown/streamdown/internal/config"
	"github.com/streamdown/streamdown/internal/event"
)

// Theme is the resolved color palette. Every color derives from the base
// hue unless overridden in config.
type Theme struct {
	Heading  lipgloss.Color // headings
	Emphasis lipgloss.Color // emphasis and strong
	Code     lipgloss.Color // inline code and unhighlighted code blocks
	Link     lipgloss.Color // link text
	Muted    lipgloss.Color // rules, quote markers, table borders, think text
	Text     lipgloss.Color // body text
}

// ThemeFromHue derives a palette from a base hue in degrees. Accents walk
// the hue circle from the base; lightness and saturation are fixed so any
// hue yields readable contrast on a dark background.
func ThemeFromHue(hue float64) *Theme {
	hue = math.Mod(math.Mod(hue, 360)+360, 360)
	hex := func(offset, sat, light float64) lipgloss.Color {
		h := math.Mod(hue+offset, 360)
		return lipgloss.Color(colorful.Hsl(h, sat, light).Hex())
	}
	return &Theme{
		Heading:  hex(0, 0.70, 0.65),
		Emphasis: hex(40, 0.65, 0.62),
		Code:     hex(140, 0.45, 0.60),
		Link:     hex(200, 0.60, 0.60),
		Muted:    hex(0, 0.08, 0.45),
		Text:     hex(0, 0.05, 0.80),
	}
}

// ThemeFromConfig derives the palette from the configured hue, then
// applies any per-role overrides.
func ThemeFromConfig(cfg config.ThemeConfig) *Theme {
	theme := ThemeFromHue(cfg.Hue)
	if cfg.Heading != "" {
		theme.Heading = lipgloss.Color(cfg.Heading)
	}
	if cfg.Emphasis != "" {
		theme.Emphasis = lipgloss.Color(cfg.Emphasis)
	}
	if cfg.Link != "" {
		theme.Link = lipgloss.Color(cfg.Link)
	}
	if cfg.Muted != "" {
		theme.Muted = lipgloss.Color(cfg.Muted)
	}
	if cfg.CodeBlock != "" {
		theme.Code = lipgloss.Color(cfg.CodeBlock)
	}
	return theme
}

// Styles holds the lipgloss styles bound to one output renderer.
type Styles struct {
	renderer *lipgloss.Renderer
	theme    *Theme

	Heading     lipgloss.Style
	Emph        lipgloss.Style
	Strong      lipgloss.Style
	Code        lipgloss.Style
	Link        lipgloss.Style
	Strike      lipgloss.Style
	Muted       lipgloss.Style
	QuoteMarker lipgloss.Style
	ListMarker  lipgloss.Style
	TableHeader lipgloss.Style
	TableBorder lipgloss.Style
	Think       lipgloss.Style
	Rule        lipgloss.Style
}

// NewStyles binds styles to w. The color profile is detected from the
// writer; pass plain=true to force uncolored output regardless.
func NewStyles(w io.Writer, theme *Theme, plain bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if plain {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		renderer: r,
		theme:    theme,

		Heading: r.NewStyle().
			Bold(true).
			Foreground(theme.Heading),

		Emph: r.NewStyle().
			Italic(true).
			Foreground(theme.Emphasis),

		Strong: r.NewStyle().
			Bold(true).
			Foreground(theme.Emphasis),

		Code: r.NewStyle().
			Foreground(theme.Code),

		Link: r.NewStyle().
			Underline(true).
			Foreground(theme.Link),

		Strike: r.NewStyle().
			Strikethrough(true).
			Foreground(theme.Muted),

		Muted: r.NewStyle().
			Foreground(theme.Muted),

		QuoteMarker: r.NewStyle().
			Foreground(theme.Muted),

		ListMarker: r.NewStyle().
			Foreground(theme.Heading),

		TableHeader: r.NewStyle().
			Bold(true).
			Foreground(theme.Text),

		TableBorder: r.NewStyle().
			Foreground(theme.Muted),

		Think: r.NewStyle().
			Faint(true).
			Foreground(theme.Muted),

		Rule: r.NewStyle().
			Foreground(theme.Muted),
	}
}

// Theme returns the palette these styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Apply is the styling boundary: one span in, styled bytes out. Unknown
// span styles fall through to plain text rather than failing.
func (s *Styles) Apply(span event.InlineSpan) string {
	switch span.Style {
	case event.SpanEmph:
		return s.Emph.Render(span.Text)
	case event.SpanStrong:
		return s.Strong.Render(span.Text)
	case event.SpanCode:
		return s.Code.Render(span.Text)
	case event.SpanLink:
		return s.Link.Render(span.Text)
	case event.SpanStrike:
		return s.Strike.Render(span.Text)
	}
	return span.Text
}

// DisplayWidth reports the terminal column width of s, skipping escape
// sequences and counting wide runes as two columns.
func DisplayWidth(s string) int {
	return ansi.StringWidth(s)
}

// RuneWidth reports the column width of a single rune.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}
