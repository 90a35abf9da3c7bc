// Package render turns parsing events into styled terminal output on an
// append-only sink. Dispatch over the event vocabulary is exhaustive; the
// one bounded exception to append-only is the open table's redraw region,
// which is erased and rewritten in place when a column grows.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/streamdown/streamdown/internal/config"
	"github.com/streamdown/streamdown/internal/event"
	"github.com/streamdown/streamdown/internal/highlight"
	"github.com/streamdown/streamdown/internal/layout"
	"github.com/streamdown/streamdown/internal/style"
)

// listState tracks one open list level.
type listState struct {
	ordered bool
	counter int
}

// Renderer writes styled output for one event stream. All writes go to
// the sink it was created with; the first write error is returned to the
// caller and the stream should be abandoned.
type Renderer struct {
	sink   io.Writer
	styles *style.Styles
	term   *layout.Terminal
	cfg    *config.Config

	width  int
	margin int

	headingLevel int
	hl           *highlight.Highlighter
	inCode       bool
	lists        []listState
	inThink      bool

	// Open table state. pendingHeader holds the styled header cells
	// between the header row and its alignment row; tableLines is the
	// size of the redraw region currently on screen.
	table         *layout.Table
	pendingHeader []string
	tableLines    int
}

// New creates a Renderer writing to sink with the given resolved config.
// Width zero disables wrapping.
func New(sink io.Writer, cfg *config.Config, plain bool) *Renderer {
	theme := style.ThemeFromConfig(cfg.Theme)
	return &Renderer{
		sink:   sink,
		styles: style.NewStyles(sink, theme, plain),
		term:   layout.NewTerminal(sink, cfg.Render.Width),
		cfg:    cfg,
		width:  cfg.Render.Width,
		margin: cfg.Render.Margin,
	}
}

// Width returns the wrap width the renderer resolved at creation.
func (r *Renderer) Width() int {
	return r.width
}

// Render dispatches one event. Events must arrive in the order the
// parser produced them.
func (r *Renderer) Render(ev event.Event) error {
	// Anything that is not part of the open table closes its redraw
	// region; rewriting earlier blocks is impossible from then on.
	if r.table != nil && ev.Kind != event.TableRow && ev.Kind != event.TableAlignment {
		r.table = nil
		r.tableLines = 0
	}

	switch ev.Kind {
	case event.Blank:
		return r.write("\n")
	case event.Text:
		return r.text(ev)
	case event.StartHeading:
		r.headingLevel = ev.Level
		return nil
	case event.EndHeading:
		r.headingLevel = 0
		return nil
	case event.StartCodeBlock:
		r.inCode = true
		if r.cfg.Code.Highlight {
			r.hl = highlight.New(ev.Language, r.cfg.Code.Style)
		}
		return nil
	case event.CodeLine:
		return r.codeLine(ev.Raw)
	case event.EndCodeBlock:
		r.inCode = false
		r.hl = nil
		return nil
	case event.StartList:
		start := ev.Start
		if start == 0 {
			start = 1
		}
		r.lists = append(r.lists, listState{ordered: ev.Ordered, counter: start})
		return nil
	case event.ListItem:
		return r.listItem(ev)
	case event.EndList:
		if len(r.lists) > 0 {
			r.lists = r.lists[:len(r.lists)-1]
		}
		return nil
	case event.TableRow:
		return r.tableRow(ev)
	case event.TableAlignment:
		return r.tableAlignment(ev)
	case event.BlockquoteLine:
		return r.blockquote(ev)
	case event.Rule:
		return r.rule()
	case event.ThinkStart:
		r.inThink = true
		return nil
	case event.ThinkLine:
		return r.thinkLine(ev)
	case event.ThinkEnd:
		r.inThink = false
		return nil
	}
	return fmt.Errorf("unknown event kind %d", ev.Kind)
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.sink, s)
	return err
}

// writeWrapped indents, wraps and writes one logical line. firstPrefix
// leads the first physical line, contPrefix every continuation.
func (r *Renderer) writeWrapped(firstPrefix, contPrefix, text string) error {
	avail := 0
	if r.width > 0 {
		avail = r.width - r.margin - style.DisplayWidth(contPrefix)
		if avail < 1 {
			avail = 1
		}
	}
	margin := strings.Repeat(" ", r.margin)
	for i, line := range layout.Wrap(text, avail) {
		prefix := contPrefix
		if i == 0 {
			prefix = firstPrefix
		}
		if err := r.write(margin + prefix + line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// spansText styles a span sequence into one string.
func (r *Renderer) spansText(spans []event.InlineSpan) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(r.styles.Apply(span))
	}
	return b.String()
}

func (r *Renderer) text(ev event.Event) error {
	if r.headingLevel > 0 {
		marker := strings.Repeat("#", r.headingLevel) + " "
		line := r.styles.Heading.Render(marker + event.PlainText(ev.Spans))
		return r.writeWrapped("", "", line)
	}
	indent := strings.Repeat("  ", len(r.lists))
	return r.writeWrapped(indent, indent, r.spansText(ev.Spans))
}

func (r *Renderer) codeLine(raw string) error {
	line := r.styles.Code.Render(raw)
	if r.hl != nil {
		line = r.hl.Line(raw)
	}
	// Code is never wrapped; overflow beats corrupting the content.
	margin := strings.Repeat(" ", r.margin)
	return r.write(margin + "  " + line + "\n")
}

func (r *Renderer) listItem(ev event.Event) error {
	depth := ev.Depth
	if depth >= len(r.lists) {
		depth = len(r.lists) - 1
	}
	if depth < 0 {
		depth = 0
	}

	var marker string
	if len(r.lists) > 0 && r.lists[len(r.lists)-1].ordered {
		top := &r.lists[len(r.lists)-1]
		marker = strconv.Itoa(top.counter) + ". "
		top.counter++
	} else {
		marker = "• "
	}
	switch ev.Task {
	case " ":
		marker += "☐ "
	case "x":
		marker += "☑ "
	}

	indent := strings.Repeat("  ", depth)
	hang := indent + strings.Repeat(" ", style.DisplayWidth(marker))
	return r.writeWrapped(indent+r.styles.ListMarker.Render(marker), hang, r.spansText(ev.Spans))
}

func (r *Renderer) blockquote(ev event.Event) error {
	marker := strings.Repeat("│ ", ev.Depth)
	styled := r.styles.QuoteMarker.Render(marker)
	return r.writeWrapped(styled, styled, r.styles.Muted.Render(event.PlainText(ev.Spans)))
}

func (r *Renderer) rule() error {
	width := r.width - r.margin
	if width <= 0 {
		width = 40
	}
	margin := strings.Repeat(" ", r.margin)
	return r.write(margin + r.styles.Rule.Render(strings.Repeat("─", width)) + "\n")
}

func (r *Renderer) thinkLine(ev event.Event) error {
	if !r.cfg.Think.Show {
		return nil
	}
	return r.writeWrapped("", "", r.styles.Think.Render(event.PlainText(ev.Spans)))
}

// tableRow handles both the buffered header row and body rows. A body
// row that grows any column erases the whole region and rewrites it so
// every printed row reflects the new widths.
func (r *Renderer) tableRow(ev event.Event) error {
	cells := make([]string, len(ev.Cells))
	for i, cell := range ev.Cells {
		if ev.Header {
			cells[i] = r.styles.TableHeader.Render(event.PlainText(cell))
		} else {
			cells[i] = r.spansText(cell)
		}
	}

	if ev.Header {
		r.pendingHeader = cells
		return nil
	}
	if r.table == nil {
		// Body row without an open table: degrade to plain text.
		return r.writeWrapped("", "", strings.Join(cells, " "))
	}

	grew := r.table.Observe(cells)
	if grew && r.tableLines > 0 {
		if err := r.term.ClearLines(r.tableLines); err != nil {
			return err
		}
		return r.redrawTable()
	}
	row := r.formatRow(cells)
	if err := r.write(row); err != nil {
		return err
	}
	r.tableLines += r.term.CountLines(row)
	return nil
}

// tableAlignment confirms the table: the buffered header row and the
// separator are printed and the redraw region opens.
func (r *Renderer) tableAlignment(ev event.Event) error {
	r.table = layout.NewTable(ev.Aligns)
	r.tableLines = 0
	if r.pendingHeader != nil {
		r.table.Observe(r.pendingHeader)
		r.pendingHeader = nil
	}
	return r.redrawTable()
}

// redrawTable prints every observed row plus the separator and resets
// the region size.
func (r *Renderer) redrawTable() error {
	r.tableLines = 0
	for i, cells := range r.table.Rows() {
		row := r.formatRow(cells)
		if err := r.write(row); err != nil {
			return err
		}
		r.tableLines += r.term.CountLines(row)
		if i == 0 {
			sep := r.separatorRow()
			if err := r.write(sep); err != nil {
				return err
			}
			r.tableLines += r.term.CountLines(sep)
		}
	}
	return nil
}

func (r *Renderer) formatRow(cells []string) string {
	border := r.styles.TableBorder.Render("│")
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", r.margin))
	b.WriteString(border)
	for i := range r.table.Widths() {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteString(" " + r.table.Pad(cell, i) + " ")
		b.WriteString(border)
	}
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) separatorRow() string {
	var parts []string
	for _, w := range r.table.Widths() {
		parts = append(parts, strings.Repeat("─", w+2))
	}
	line := "├" + strings.Join(parts, "┼") + "┤"
	return strings.Repeat(" ", r.margin) + r.styles.TableBorder.Render(line) + "\n"
}
