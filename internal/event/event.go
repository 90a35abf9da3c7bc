// Package event defines the parsing events exchanged between the block
// parser and the renderer. The event vocabulary is a closed set: the
// renderer dispatches over Kind exhaustively, and new kinds are a breaking
// change for every consumer.
package event

// Kind identifies the type of a parsing event.
type Kind int

const (
	// Blank marks a blank input line.
	Blank Kind = iota
	// Text carries one line of inline-scanned prose.
	Text
	// StartHeading opens an ATX heading. Headings are single-line: the
	// parser emits StartHeading, Text and EndHeading from the same Feed
	// call, so a heading is never left open across lines.
	StartHeading
	// EndHeading closes the heading opened by the preceding StartHeading.
	EndHeading
	// StartCodeBlock opens a fenced code block.
	StartCodeBlock
	// CodeLine carries one verbatim line of fenced code content.
	CodeLine
	// EndCodeBlock closes the open fenced code block.
	EndCodeBlock
	// StartList opens a (possibly nested) list context.
	StartList
	// ListItem starts a new item in the innermost open list.
	ListItem
	// EndList closes the innermost open list context.
	EndList
	// TableRow carries the cells of one table row.
	TableRow
	// TableAlignment carries the per-column alignments of the open table.
	TableAlignment
	// BlockquoteLine carries one line of quoted content.
	BlockquoteLine
	// Rule is a thematic break.
	Rule
	// ThinkStart opens a think block.
	ThinkStart
	// ThinkLine carries one inline-scanned line inside a think block.
	ThinkLine
	// ThinkEnd closes the open think block.
	ThinkEnd
)

// String returns the event kind name, for tests and debugging.
func (k Kind) String() string {
	switch k {
	case Blank:
		return "Blank"
	case Text:
		return "Text"
	case StartHeading:
		return "StartHeading"
	case EndHeading:
		return "EndHeading"
	case StartCodeBlock:
		return "StartCodeBlock"
	case CodeLine:
		return "CodeLine"
	case EndCodeBlock:
		return "EndCodeBlock"
	case StartList:
		return "StartList"
	case ListItem:
		return "ListItem"
	case EndList:
		return "EndList"
	case TableRow:
		return "TableRow"
	case TableAlignment:
		return "TableAlignment"
	case BlockquoteLine:
		return "BlockquoteLine"
	case Rule:
		return "Rule"
	case ThinkStart:
		return "ThinkStart"
	case ThinkLine:
		return "ThinkLine"
	case ThinkEnd:
		return "ThinkEnd"
	}
	return "Unknown"
}

// Alignment is a table column alignment taken from the alignment row.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// SpanStyle identifies the style of an inline span.
type SpanStyle int

const (
	SpanPlain SpanStyle = iota
	SpanEmph
	SpanStrong
	SpanCode
	SpanLink
	SpanStrike
)

// InlineSpan is a styled run of text produced by the inline scanner.
// Spans never nest; a scanned line is a flat left-to-right sequence.
type InlineSpan struct {
	Style SpanStyle
	Text  string
	URL   string // set for SpanLink only
}

// Event is one immutable parsing result. Which fields are meaningful
// depends on Kind; unused fields hold their zero value.
type Event struct {
	Kind Kind

	// StartHeading
	Level int

	// Text, ListItem, BlockquoteLine, ThinkLine
	Spans []InlineSpan

	// StartCodeBlock (declared language) and CodeLine (verbatim content).
	Language string
	Raw      string

	// StartList
	Ordered bool
	Start   int

	// ListItem and BlockquoteLine nesting depth (0 = outermost).
	Depth int

	// ListItem task-list state: "" (not a task), " " or "x".
	Task string

	// TableRow
	Cells  [][]InlineSpan
	Header bool

	// TableAlignment
	Aligns []Alignment
}

// PlainText flattens spans to their unstyled text, for tests and for
// degraded rendering paths.
func PlainText(spans []InlineSpan) string {
	var n int
	for _, s := range spans {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range spans {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
