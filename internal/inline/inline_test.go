package inline

import (
	"reflect"
	"testing"

	"github.com/streamdown/streamdown/internal/event"
)

func span(style event.SpanStyle, text string) event.InlineSpan {
	return event.InlineSpan{Style: style, Text: text}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []event.InlineSpan
	}{
		{
			name: "plain text",
			in:   "just words",
			want: []event.InlineSpan{span(event.SpanPlain, "just words")},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
		{
			name: "code span",
			in:   "`code`",
			want: []event.InlineSpan{span(event.SpanCode, "code")},
		},
		{
			name: "code span surrounded",
			in:   "a `b` c",
			want: []event.InlineSpan{
				span(event.SpanPlain, "a "),
				span(event.SpanCode, "b"),
				span(event.SpanPlain, " c"),
			},
		},
		{
			name: "double backtick code containing backtick",
			in:   "``a ` b``",
			want: []event.InlineSpan{span(event.SpanCode, "a ` b")},
		},
		{
			name: "markers inside code stay literal",
			in:   "`*not em*`",
			want: []event.InlineSpan{span(event.SpanCode, "*not em*")},
		},
		{
			name: "strong",
			in:   "**bold**",
			want: []event.InlineSpan{span(event.SpanStrong, "bold")},
		},
		{
			name: "strong underscore",
			in:   "__bold__",
			want: []event.InlineSpan{span(event.SpanStrong, "bold")},
		},
		{
			name: "emphasis",
			in:   "*em*",
			want: []event.InlineSpan{span(event.SpanEmph, "em")},
		},
		{
			name: "emphasis underscore",
			in:   "_em_",
			want: []event.InlineSpan{span(event.SpanEmph, "em")},
		},
		{
			name: "strikethrough",
			in:   "~~gone~~",
			want: []event.InlineSpan{span(event.SpanStrike, "gone")},
		},
		{
			name: "link",
			in:   "[label](https://example.com)",
			want: []event.InlineSpan{{Style: event.SpanLink, Text: "label", URL: "https://example.com"}},
		},
		{
			name: "link mid sentence",
			in:   "see [docs](x) here",
			want: []event.InlineSpan{
				span(event.SpanPlain, "see "),
				{Style: event.SpanLink, Text: "docs", URL: "x"},
				span(event.SpanPlain, " here"),
			},
		},
		{
			name: "mixed strong and emphasis",
			in:   "**a** and *b*",
			want: []event.InlineSpan{
				span(event.SpanStrong, "a"),
				span(event.SpanPlain, " and "),
				span(event.SpanEmph, "b"),
			},
		},
		{
			name: "emphasis spanning strong stays flat",
			in:   "*a **b** c*",
			want: []event.InlineSpan{span(event.SpanEmph, "a **b** c")},
		},
		{
			name: "unclosed emphasis degrades",
			in:   "*unclosed",
			want: []event.InlineSpan{span(event.SpanPlain, "*unclosed")},
		},
		{
			name: "unclosed code degrades",
			in:   "`unclosed",
			want: []event.InlineSpan{span(event.SpanPlain, "`unclosed")},
		},
		{
			name: "unclosed strong degrades",
			in:   "**half",
			want: []event.InlineSpan{span(event.SpanPlain, "**half")},
		},
		{
			name: "bracket without url degrades",
			in:   "[not a link]",
			want: []event.InlineSpan{span(event.SpanPlain, "[not a link]")},
		},
		{
			name: "escaped markers",
			in:   `\*not em\*`,
			want: []event.InlineSpan{span(event.SpanPlain, "*not em*")},
		},
		{
			name: "tilde alone stays literal",
			in:   "~one tilde~",
			want: []event.InlineSpan{span(event.SpanPlain, "~one tilde~")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scan(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Scan(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScanRoundTripsPlainText(t *testing.T) {
	// Degrading must never lose characters: the concatenated span text of
	// marker-free input equals the input.
	inputs := []string{
		"no markers at all",
		"tabs\tand spaces",
		"unicode 世界 ok",
	}
	for _, in := range inputs {
		if got := event.PlainText(Scan(in)); got != in {
			t.Errorf("PlainText(Scan(%q)) = %q", in, got)
		}
	}
}
