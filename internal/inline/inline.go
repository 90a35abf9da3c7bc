// Package inline tokenizes one logical line of text into styled spans.
// Scanning is confined to a single line: no state crosses call boundaries,
// and unmatched delimiters always degrade to literal text.
package inline

import (
	"strings"

	"github.com/streamdown/streamdown/internal/event"
)

// Scan splits text into a flat, ordered sequence of inline spans.
// Precedence, left to right: inline code (content never rescanned),
// links, strong, emphasis, strikethrough, plain runs.
func Scan(text string) []event.InlineSpan {
	if text == "" {
		return nil
	}

	var spans []event.InlineSpan
	var plain strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			spans = append(spans, event.InlineSpan{Style: event.SpanPlain, Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]

		// Backslash escapes the next byte.
		if c == '\\' && i+1 < len(text) {
			plain.WriteByte(text[i+1])
			i += 2
			continue
		}

		switch c {
		case '`':
			run := delimiterRun(text[i:], '`')
			closing := strings.Repeat("`", run)
			rel := strings.Index(text[i+run:], closing)
			if rel == -1 {
				// Unclosed code span degrades to literal backticks.
				plain.WriteString(text[i : i+run])
				i += run
				continue
			}
			flushPlain()
			content := text[i+run : i+run+rel]
			spans = append(spans, event.InlineSpan{Style: event.SpanCode, Text: trimCodeSpan(content)})
			i += run + rel + run
			continue

		case '[':
			label, url, consumed := scanLink(text[i:])
			if consumed == 0 {
				plain.WriteByte('[')
				i++
				continue
			}
			flushPlain()
			spans = append(spans, event.InlineSpan{Style: event.SpanLink, Text: label, URL: url})
			i += consumed
			continue

		case '*', '_':
			run := delimiterRun(text[i:], c)
			if run >= 2 {
				if content, consumed := scanDelimited(text[i:], string(c)+string(c)); consumed > 0 {
					flushPlain()
					spans = append(spans, event.InlineSpan{Style: event.SpanStrong, Text: content})
					i += consumed
					continue
				}
			}
			if content, consumed := scanEmphasis(text[i:], c); consumed > 0 {
				flushPlain()
				spans = append(spans, event.InlineSpan{Style: event.SpanEmph, Text: content})
				i += consumed
				continue
			}
			plain.WriteString(text[i : i+run])
			i += run
			continue

		case '~':
			if strings.HasPrefix(text[i:], "~~") {
				if content, consumed := scanDelimited(text[i:], "~~"); consumed > 0 {
					flushPlain()
					spans = append(spans, event.InlineSpan{Style: event.SpanStrike, Text: content})
					i += consumed
					continue
				}
			}
			plain.WriteByte('~')
			i++
			continue
		}

		plain.WriteByte(c)
		i++
	}

	flushPlain()
	return spans
}

// delimiterRun counts the leading run of ch in s.
func delimiterRun(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

// trimCodeSpan strips one leading/trailing space when both are present,
// so `` `code` `` written as "` code `" renders as "code".
func trimCodeSpan(s string) string {
	if len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' && strings.TrimSpace(s) != "" {
		return s[1 : len(s)-1]
	}
	return s
}

// scanDelimited matches s against marker...marker and returns the inner
// content and total bytes consumed. A zero consumed count means no
// well-formed closer exists; the caller degrades to literal text.
// An empty pair (e.g. "****") does not match.
func scanDelimited(s, marker string) (string, int) {
	inner := s[len(marker):]
	rel := strings.Index(inner, marker)
	if rel <= 0 {
		return "", 0
	}
	return inner[:rel], len(marker) + rel + len(marker)
}

// scanEmphasis matches a single-character emphasis run, skipping doubled
// markers when searching for the closer so that *a **b** c* is not closed
// by the strong delimiter.
func scanEmphasis(s string, ch byte) (string, int) {
	pos := 1
	for pos < len(s) {
		rel := strings.IndexByte(s[pos:], ch)
		if rel == -1 {
			return "", 0
		}
		at := pos + rel
		// Part of a doubled run: skip the whole run.
		if at+1 < len(s) && s[at+1] == ch {
			run := delimiterRun(s[at:], ch)
			pos = at + run
			continue
		}
		if at == 1 {
			return "", 0 // empty emphasis degrades
		}
		return s[1:at], at + 1
	}
	return "", 0
}

// scanLink matches [label](url) at the start of s. Nested brackets in the
// label and parentheses in the URL are tracked one level deep; anything
// malformed returns consumed == 0.
func scanLink(s string) (label, url string, consumed int) {
	depth := 1
	i := 1
	for i < len(s) && depth > 0 {
		switch s[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
		}
		i++
	}
	if depth != 0 || i >= len(s) || s[i] != '(' {
		return "", "", 0
	}
	label = s[1 : i-1]

	parens := 1
	j := i + 1
	for j < len(s) && parens > 0 {
		switch s[j] {
		case '\\':
			j++
		case '(':
			parens++
		case ')':
			parens--
		}
		j++
	}
	if parens != 0 {
		return "", "", 0
	}
	return label, s[i+1 : j-1], j
}
