// Package think filters <think>...</think> reasoning blocks out of the
// line stream before block parsing. Lines inside a think block are never
// block-parsed: they pass through as opaque ThinkLine events so the
// caller can dim or drop them, and the block parser's state is untouched
// by anything the model thought out loud.
package think

import (
	"strings"

	"github.com/streamdown/streamdown/internal/event"
	"github.com/streamdown/streamdown/internal/inline"
	"github.com/streamdown/streamdown/internal/parser"
)

const (
	openTag  = "<think>"
	closeTag = "</think>"
)

// Filter wraps a Parser and owns the think/normal mode toggle.
type Filter struct {
	parser *parser.Parser
	active bool
}

// New returns a Filter feeding p with everything outside think blocks.
func New(p *parser.Parser) *Filter {
	return &Filter{parser: p}
}

// Active reports whether a think block is currently open.
func (f *Filter) Active() bool {
	return f.active
}

// Feed routes one line: think-mode toggling happens here, everything else
// is delegated to the wrapped parser. Tags may share a line with content;
// the fragments on either side are processed in order.
func (f *Filter) Feed(line string) []event.Event {
	if f.active {
		idx := strings.Index(line, closeTag)
		if idx == -1 {
			return []event.Event{{
				Kind:  event.ThinkLine,
				Spans: inline.Scan(strings.TrimSpace(line)),
			}}
		}
		var events []event.Event
		if before := strings.TrimSpace(line[:idx]); before != "" {
			events = append(events, event.Event{Kind: event.ThinkLine, Spans: inline.Scan(before)})
		}
		events = append(events, event.Event{Kind: event.ThinkEnd})
		f.active = false
		if rest := line[idx+len(closeTag):]; strings.TrimSpace(rest) != "" {
			events = append(events, f.Feed(rest)...)
		}
		return events
	}

	idx := strings.Index(line, openTag)
	if idx == -1 {
		return f.parser.Feed(line)
	}
	var events []event.Event
	if before := line[:idx]; strings.TrimSpace(before) != "" {
		events = append(events, f.parser.Feed(before)...)
	}
	events = append(events, event.Event{Kind: event.ThinkStart})
	f.active = true
	if rest := line[idx+len(openTag):]; strings.TrimSpace(rest) != "" {
		events = append(events, f.Feed(rest)...)
	}
	return events
}

// Finalize closes an unterminated think block, then finalizes the parser.
func (f *Filter) Finalize() []event.Event {
	var events []event.Event
	if f.active {
		f.active = false
		events = append(events, event.Event{Kind: event.ThinkEnd})
	}
	return append(events, f.parser.Finalize()...)
}
