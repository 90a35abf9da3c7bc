// Package layout owns rendering geometry: word wrapping, table column
// widths and the terminal redraw region. It deals in display columns, not
// bytes, and never emits styled content itself.
package layout

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/streamdown/streamdown/internal/event"
)

// Terminal issues the cursor movements used to erase and rewrite the open
// table's redraw region. It is the only place escape-based cursor control
// happens.
type Terminal struct {
	output io.Writer
	width  int
}

// NewTerminal creates a terminal controller writing to output.
func NewTerminal(output io.Writer, width int) *Terminal {
	return &Terminal{
		output: output,
		width:  width,
	}
}

// Width returns the configured terminal width in columns.
func (t *Terminal) Width() int {
	return t.width
}

// ClearLines moves the cursor up n lines and erases from there to the end
// of the screen, preparing a bounded region for rewrite.
func (t *Terminal) ClearLines(n int) error {
	if n <= 0 {
		return nil
	}

	seq := ansi.CursorUp(n)
	seq += ansi.CursorHorizontalAbsolute(1)
	seq += ansi.EraseDisplay(0)

	_, err := t.output.Write([]byte(seq))
	return err
}

// CountLines reports how many terminal lines the rendered string
// occupies, accounting for wrapping at the terminal width and ignoring
// escape sequences.
func (t *Terminal) CountLines(rendered string) int {
	if len(rendered) == 0 {
		return 0
	}

	lines := strings.Split(rendered, "\n")
	total := 0

	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			continue
		}

		lineWidth := ansi.StringWidth(line)
		switch {
		case lineWidth == 0:
			total++
		case t.width > 0:
			total += (lineWidth + t.width - 1) / t.width
		default:
			total++
		}
	}

	return total
}

// Table tracks the geometry of the one open table. Column widths only
// grow: a wider cell widens its column for every row, already-printed
// rows included, which is what forces the redraw. Styled row content is
// retained so the region can be rewritten without re-parsing.
type Table struct {
	aligns []event.Alignment
	widths []int
	rows   [][]string
}

// NewTable starts a table with the alignment row's column layout.
func NewTable(aligns []event.Alignment) *Table {
	return &Table{
		aligns: aligns,
		widths: make([]int, len(aligns)),
	}
}

// Observe appends one row of styled cells and grows column widths to fit.
// It reports whether any width grew, i.e. whether earlier rows need a
// rewrite.
func (t *Table) Observe(cells []string) bool {
	grew := false
	for i, cell := range cells {
		if i >= len(t.widths) {
			break
		}
		if w := ansi.StringWidth(cell); w > t.widths[i] {
			t.widths[i] = w
			grew = true
		}
	}
	t.rows = append(t.rows, cells)
	return grew
}

// Widths returns the current column widths.
func (t *Table) Widths() []int {
	return t.widths
}

// Aligns returns the per-column alignments.
func (t *Table) Aligns() []event.Alignment {
	return t.aligns
}

// Rows returns every observed row, header first.
func (t *Table) Rows() [][]string {
	return t.rows
}

// Pad fits cell into column col at the current width, honoring the
// column's alignment. Cells in columns beyond the alignment row pass
// through unchanged.
func (t *Table) Pad(cell string, col int) string {
	if col >= len(t.widths) {
		return cell
	}
	pad := t.widths[col] - ansi.StringWidth(cell)
	if pad <= 0 {
		return cell
	}
	switch t.aligns[col] {
	case event.AlignRight:
		return strings.Repeat(" ", pad) + cell
	case event.AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + cell + strings.Repeat(" ", pad-left)
	}
	return cell + strings.Repeat(" ", pad)
}

// Wrap word-wraps styled text to width columns without splitting escape
// sequences. Styles active at a break are re-opened on the continuation
// line, so wrapping never changes which columns appear styled.
func Wrap(text string, width int) []string {
	if width <= 0 || ansi.StringWidth(text) <= width {
		return []string{text}
	}

	lines := strings.Split(wordwrap.String(text, width), "\n")
	carry := ""
	for i, line := range lines {
		if carry != "" {
			line = carry + line
		}
		carry = activeSGR(line)
		if carry != "" && i < len(lines)-1 {
			line += "\x1b[0m"
		}
		lines[i] = line
	}
	return lines
}

// activeSGR returns the concatenated SGR sequences still in effect at the
// end of line. A reset (CSI 0 m or bare CSI m) clears everything before
// it.
func activeSGR(line string) string {
	var active []string
	for i := 0; i < len(line); {
		idx := strings.Index(line[i:], "\x1b[")
		if idx == -1 {
			break
		}
		start := i + idx
		end := start + 2
		for end < len(line) && (line[end] == ';' || (line[end] >= '0' && line[end] <= '9')) {
			end++
		}
		if end >= len(line) {
			break
		}
		if line[end] != 'm' {
			i = end + 1
			continue
		}
		params := line[start+2 : end]
		if params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[start:end+1])
		}
		i = end + 1
	}
	return strings.Join(active, "")
}
