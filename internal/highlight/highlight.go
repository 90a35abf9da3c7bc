// Package highlight colors fenced code lines with chroma. Highlighting is
// best-effort and per-line: an unknown language, a tokenizer error or a
// missing style all fall back to the verbatim line, never to an error.
package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter tokenizes code lines for one declared language.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// New creates a highlighter for the given language name (the fence info
// string). Returns nil if the language is not recognized; a nil
// Highlighter is valid and passes lines through unchanged.
func New(language, styleName string) *Highlighter {
	if language == "" {
		return nil
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}

	return &Highlighter{
		lexer: lexer,
		style: style,
	}
}

// Line applies syntax highlighting to one code line. The returned string
// contains the original text byte-for-byte once escape sequences are
// stripped.
func (h *Highlighter) Line(line string) string {
	if h == nil {
		return line
	}

	iterator, err := h.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf strings.Builder
	formatter := &lineFormatter{style: h.style}
	if err := formatter.Format(&buf, iterator); err != nil {
		return line
	}
	return buf.String()
}

// lineFormatter writes foreground-only SGR codes per token. No background
// is set so the terminal's own background shows through, and every token
// resets so partial rewrites cannot leak styles.
type lineFormatter struct {
	style *chroma.Style
}

func (f *lineFormatter) Format(w io.Writer, iterator chroma.Iterator) error {
	for token := iterator(); token != chroma.EOF; token = iterator() {
		// Lexers may emit a trailing newline token; the caller owns line
		// endings.
		value := strings.TrimRight(token.Value, "\n")
		if value == "" {
			continue
		}

		entry := f.style.Get(token.Type)

		var codes []string
		if entry.Colour.IsSet() {
			codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", entry.Colour.Red(), entry.Colour.Green(), entry.Colour.Blue()))
		}
		if entry.Bold == chroma.Yes {
			codes = append(codes, "1")
		}
		if entry.Italic == chroma.Yes {
			codes = append(codes, "3")
		}
		if entry.Underline == chroma.Yes {
			codes = append(codes, "4")
		}

		if len(codes) > 0 {
			fmt.Fprintf(w, "\x1b[%sm%s\x1b[0m", strings.Join(codes, ";"), value)
		} else {
			fmt.Fprint(w, value)
		}
	}
	return nil
}
