// Package parser implements the streaming block state machine. Each input
// line is classified using only its own leading markers and the current
// open context, never future lines; the sole exception is the one-line
// table-header buffer. Malformed or truncated input is never an error:
// Finalize synthetically closes every open context.
package parser

import (
	"strings"

	"github.com/streamdown/streamdown/internal/event"
	"github.com/streamdown/streamdown/internal/inline"
)

// fenceInfo records the open code fence.
type fenceInfo struct {
	char     byte
	length   int
	indent   int
	language string
}

// listContext is one open list level.
type listContext struct {
	indent        int // column of the list marker
	contentIndent int // column where item content starts
	ordered       bool
}

// Parser holds all per-document state. One Parser serves exactly one
// stream; it is not safe for concurrent use and must not be reused after
// Finalize.
type Parser struct {
	fence     *fenceInfo
	lists     []listContext
	quoteDeep int
	quoteLazy bool

	// One-line table lookahead: the header candidate held until the next
	// line confirms (alignment row) or degrades it (anything else).
	pendingHeader string
	tableOpen     bool
	tableCols     int

	blankRun  int
	finalized bool
}

// New returns a Parser at stream start.
func New() *Parser {
	return &Parser{}
}

// Feed classifies one input line (without its trailing newline) and
// returns the events it produces, in document order. Feed must be called
// at most once per line and never after Finalize.
func (p *Parser) Feed(line string) []event.Event {
	if p.finalized {
		return nil
	}

	// Open fences swallow every line verbatim until a valid closer.
	if p.fence != nil {
		if isClosingFence(line, p.fence) {
			p.fence = nil
			return []event.Event{{Kind: event.EndCodeBlock}}
		}
		return []event.Event{{Kind: event.CodeLine, Raw: line}}
	}

	var events []event.Event

	if p.pendingHeader != "" {
		events = append(events, p.resolvePending(line)...)
		if p.tableOpen {
			return events
		}
		// Candidate degraded; the current line still needs classifying.
	}

	if p.tableOpen {
		if isTableLine(line) {
			cells := parseRow(line)
			return append(events, event.Event{Kind: event.TableRow, Cells: cells})
		}
		p.tableOpen = false
		p.tableCols = 0
	}

	if isBlank(line) {
		p.blankRun++
		if p.blankRun >= 2 {
			events = append(events, p.closeLists()...)
		}
		p.quoteDeep = 0
		p.quoteLazy = false
		return append(events, event.Event{Kind: event.Blank})
	}
	p.blankRun = 0

	if depth, rest, explicit := parseQuotePrefix(line); explicit {
		events = append(events, p.closeLists()...)
		p.quoteDeep = depth
		p.quoteLazy = isParagraphLine(rest)
		return append(events, event.Event{
			Kind:  event.BlockquoteLine,
			Depth: depth,
			Spans: inline.Scan(strings.TrimSpace(rest)),
		})
	} else if p.quoteDeep > 0 {
		// Lazy continuation: an unmarked line extends the quote only while
		// the quoted block is a paragraph.
		if p.quoteLazy && isParagraphLine(line) {
			return append(events, event.Event{
				Kind:  event.BlockquoteLine,
				Depth: p.quoteDeep,
				Spans: inline.Scan(strings.TrimSpace(line)),
			})
		}
		p.quoteDeep = 0
		p.quoteLazy = false
	}

	indent := leadingIndent(line)
	trimmed := strings.TrimLeft(line, " \t")

	if level, content, ok := parseHeading(trimmed); ok {
		events = append(events, p.closeLists()...)
		return append(events,
			event.Event{Kind: event.StartHeading, Level: level},
			event.Event{Kind: event.Text, Spans: inline.Scan(content)},
			event.Event{Kind: event.EndHeading},
		)
	}

	if f := parseFence(line); f != nil {
		p.fence = f
		return append(events, event.Event{Kind: event.StartCodeBlock, Language: f.language})
	}

	if isThematicBreak(trimmed) || isSetextUnderline(trimmed) {
		events = append(events, p.closeLists()...)
		return append(events, event.Event{Kind: event.Rule})
	}

	if ordered, start, contentCol, content, ok := parseListMarker(trimmed); ok {
		return append(events, p.listItem(indent, indent+contentCol, ordered, start, content)...)
	}

	if isTableLine(line) {
		events = append(events, p.closeLists()...)
		p.pendingHeader = line
		return events
	}

	// Plain text. Indented continuation keeps the open list; anything
	// else pops every level (one intervening blank is tolerated, a
	// non-indented line is not).
	if len(p.lists) > 0 {
		top := p.lists[len(p.lists)-1]
		if indent >= top.contentIndent {
			return append(events, event.Event{Kind: event.Text, Spans: inline.Scan(trimmed)})
		}
		events = append(events, p.closeLists()...)
	}
	return append(events, event.Event{Kind: event.Text, Spans: inline.Scan(trimmed)})
}

// Finalize forces every open context closed and must be called exactly
// once, after the last Feed. The balance invariant holds afterwards even
// for input truncated mid-construct.
func (p *Parser) Finalize() []event.Event {
	if p.finalized {
		return nil
	}
	p.finalized = true

	var events []event.Event
	if p.fence != nil {
		p.fence = nil
		events = append(events, event.Event{Kind: event.EndCodeBlock})
	}
	if p.pendingHeader != "" {
		events = append(events, event.Event{Kind: event.Text, Spans: degradeHeader(p.pendingHeader)})
		p.pendingHeader = ""
	}
	events = append(events, p.closeLists()...)
	p.tableOpen = false
	p.quoteDeep = 0
	return events
}

// Depth reports the number of open block contexts, for tests of the
// balance invariant.
func (p *Parser) Depth() int {
	n := len(p.lists)
	if p.fence != nil {
		n++
	}
	return n
}

// resolvePending settles the held table-header candidate against the next
// line: a valid alignment row confirms the table, anything else re-emits
// the candidate as plain text.
func (p *Parser) resolvePending(line string) []event.Event {
	header := p.pendingHeader
	p.pendingHeader = ""

	aligns, ok := parseAlignmentRow(line)
	cells := parseRow(header)
	if ok && len(aligns) == len(cells) {
		p.tableOpen = true
		p.tableCols = len(aligns)
		return []event.Event{
			{Kind: event.TableRow, Cells: cells, Header: true},
			{Kind: event.TableAlignment, Aligns: aligns},
		}
	}
	return []event.Event{{Kind: event.Text, Spans: degradeHeader(header)}}
}

// degradeHeader turns a failed header candidate back into plain text:
// the cell contents with single pipes between them.
func degradeHeader(header string) []event.InlineSpan {
	trimmed := strings.TrimSpace(header)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := splitCells(trimmed)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return inline.Scan(strings.Join(parts, " | "))
}

// listItem pushes, pops or continues list contexts so the stack matches
// the marker's indentation, then emits the item.
func (p *Parser) listItem(indent, contentIndent int, ordered bool, start int, content string) []event.Event {
	var events []event.Event

	for len(p.lists) > 0 && indent < p.lists[len(p.lists)-1].indent {
		p.lists = p.lists[:len(p.lists)-1]
		events = append(events, event.Event{Kind: event.EndList})
	}

	push := false
	if len(p.lists) == 0 {
		push = true
	} else {
		top := p.lists[len(p.lists)-1]
		if indent >= top.contentIndent {
			push = true // nested deeper than the parent item's content
		} else if top.ordered != ordered {
			p.lists = p.lists[:len(p.lists)-1]
			events = append(events, event.Event{Kind: event.EndList})
			push = true
		}
	}
	if push {
		p.lists = append(p.lists, listContext{indent: indent, contentIndent: contentIndent, ordered: ordered})
		events = append(events, event.Event{Kind: event.StartList, Ordered: ordered, Start: start})
	}

	task, content := parseTaskMarker(content)
	return append(events, event.Event{
		Kind:  event.ListItem,
		Depth: len(p.lists) - 1,
		Spans: inline.Scan(content),
		Task:  task,
	})
}

// closeLists pops every open list level.
func (p *Parser) closeLists() []event.Event {
	var events []event.Event
	for range p.lists {
		events = append(events, event.Event{Kind: event.EndList})
	}
	p.lists = p.lists[:0]
	return events
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isParagraphLine reports whether a line is plain prose: not blank and
// not the start of any block construct. Used for lazy quote continuation.
func isParagraphLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return false
	}
	if _, _, ok := parseHeading(trimmed); ok {
		return false
	}
	if parseFence(trimmed) != nil {
		return false
	}
	if isThematicBreak(trimmed) {
		return false
	}
	if _, _, _, _, ok := parseListMarker(trimmed); ok {
		return false
	}
	return true
}

// leadingIndent counts leading columns; a tab advances to the next
// multiple of four, matching how list indentation is measured.
func leadingIndent(line string) int {
	col := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}

// parseHeading matches 1-6 '#' followed by a space (ATX form).
func parseHeading(trimmed string) (level int, content string, ok bool) {
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if level == len(trimmed) {
		return level, "", true
	}
	if trimmed[level] != ' ' && trimmed[level] != '\t' {
		return 0, "", false
	}
	return level, strings.TrimSpace(trimmed[level:]), true
}

// parseFence recognizes an opening fence of at least three backticks or
// tildes; the trimmed remainder is the declared language.
func parseFence(line string) *fenceInfo {
	indent := leadingIndent(line)
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return nil
	}
	ch := trimmed[0]
	if ch != '`' && ch != '~' {
		return nil
	}
	length := 0
	for length < len(trimmed) && trimmed[length] == ch {
		length++
	}
	if length < 3 {
		return nil
	}
	rest := strings.TrimSpace(trimmed[length:])
	// An info string containing the fence character is not a fence opener
	// (CommonMark forbids backticks in backtick info strings).
	if strings.ContainsRune(rest, rune(ch)) {
		return nil
	}
	return &fenceInfo{char: ch, length: length, indent: indent, language: rest}
}

// isClosingFence requires the same fence character, at least the opening
// length, and nothing but the fence on the line.
func isClosingFence(line string, open *fenceInfo) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || trimmed[0] != open.char {
		return false
	}
	length := 0
	for length < len(trimmed) && trimmed[length] == open.char {
		length++
	}
	if length < open.length {
		return false
	}
	return strings.TrimSpace(trimmed[length:]) == ""
}

func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	ch := trimmed[0]
	if ch != '-' && ch != '*' && ch != '_' {
		return false
	}
	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case ch:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

// isSetextUnderline matches a run of '=' . Setext underlines degrade to a
// rule: the preceding text line was already emitted, and the table header
// is the only permitted one-line buffer. ('-' runs are thematic breaks.)
func isSetextUnderline(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != '=' {
			return false
		}
	}
	return true
}

// parseListMarker matches bullet (-, *, +) and ordered (1. / 1)) markers.
// contentCol is the column offset of the content within the trimmed text.
func parseListMarker(trimmed string) (ordered bool, start int, contentCol int, content string, ok bool) {
	if trimmed == "" {
		return false, 0, 0, "", false
	}
	switch trimmed[0] {
	case '-', '*', '+':
		if len(trimmed) < 2 || (trimmed[1] != ' ' && trimmed[1] != '\t') {
			return false, 0, 0, "", false
		}
		rest := strings.TrimLeft(trimmed[2:], " \t")
		return false, 0, len(trimmed) - len(rest), rest, true
	}
	i := 0
	for i < len(trimmed) && i < 9 && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(trimmed) {
		return false, 0, 0, "", false
	}
	if trimmed[i] != '.' && trimmed[i] != ')' {
		return false, 0, 0, "", false
	}
	if i+1 >= len(trimmed) || (trimmed[i+1] != ' ' && trimmed[i+1] != '\t') {
		return false, 0, 0, "", false
	}
	start = 0
	for j := 0; j < i; j++ {
		start = start*10 + int(trimmed[j]-'0')
	}
	rest := strings.TrimLeft(trimmed[i+2:], " \t")
	return true, start, len(trimmed) - len(rest), rest, true
}

// parseTaskMarker strips a leading [ ] / [x] checkbox from item content.
func parseTaskMarker(content string) (task, rest string) {
	if len(content) >= 4 && content[0] == '[' && content[2] == ']' && content[3] == ' ' {
		switch content[1] {
		case ' ':
			return " ", content[4:]
		case 'x', 'X':
			return "x", content[4:]
		}
	}
	return "", content
}

// parseQuotePrefix strips leading '>' markers, one optional space each.
func parseQuotePrefix(line string) (depth int, rest string, explicit bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	for i < len(line) && line[i] == '>' {
		depth++
		i++
		if i < len(line) && line[i] == ' ' {
			i++
		}
	}
	if depth == 0 {
		return 0, line, false
	}
	return depth, line[i:], true
}

// isTableLine is the row qualifier: a cell-delimited line starting with a
// pipe. Requiring the leading pipe keeps prose containing '|' out of the
// one-line lookahead.
func isTableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= 2 && trimmed[0] == '|' && strings.Count(trimmed, "|") >= 2
}

// parseRow splits a table row into inline-scanned cells, dropping the
// empty fragments produced by leading/trailing pipes.
func parseRow(line string) [][]event.InlineSpan {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := splitCells(trimmed)
	cells := make([][]event.InlineSpan, 0, len(parts))
	for _, part := range parts {
		cells = append(cells, inline.Scan(strings.TrimSpace(part)))
	}
	return cells
}

// splitCells splits on unescaped pipes.
func splitCells(s string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				cur.WriteByte(s[i])
				cur.WriteByte(s[i+1])
				i++
				continue
			}
			cur.WriteByte(s[i])
		case '|':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(s[i])
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// parseAlignmentRow matches a delimiter row: cells of dashes with
// optional leading/trailing colons.
func parseAlignmentRow(line string) ([]event.Alignment, bool) {
	if !isTableLine(line) {
		return nil, false
	}
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	aligns := make([]event.Alignment, 0, len(parts))
	for _, part := range parts {
		cell := strings.TrimSpace(part)
		if cell == "" {
			return nil, false
		}
		left := strings.HasPrefix(cell, ":")
		right := strings.HasSuffix(cell, ":")
		body := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if body == "" || strings.Trim(body, "-") != "" {
			return nil, false
		}
		switch {
		case left && right:
			aligns = append(aligns, event.AlignCenter)
		case right:
			aligns = append(aligns, event.AlignRight)
		default:
			aligns = append(aligns, event.AlignLeft)
		}
	}
	return aligns, true
}
