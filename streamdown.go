// Package streamdown renders Markdown to a terminal incrementally, as
// the text arrives. Feed it chunks or whole lines; each completed line is
// transformed by registered plugins, filtered for <think> blocks, parsed
// into events and rendered to the sink immediately. Nothing already
// printed is revisited except the currently-open table.
package streamdown

import (
	"io"
	"strings"

	"github.com/streamdown/streamdown/internal/config"
	"github.com/streamdown/streamdown/internal/parser"
	"github.com/streamdown/streamdown/internal/plugin"
	"github.com/streamdown/streamdown/internal/render"
	"github.com/streamdown/streamdown/internal/think"
)

// Streamer drives one stream from input text to rendered output. It is
// not safe for concurrent use: one goroutine owns the whole pipeline.
type Streamer struct {
	plugins  *plugin.Pipeline
	filter   *think.Filter
	renderer *render.Renderer

	partial   strings.Builder
	err       error
	finalized bool
}

// Option configures a Streamer at creation.
type Option func(*settings)

type settings struct {
	cfg   config.Config
	plain bool
}

// WithConfig replaces the default configuration wholesale.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithWidth sets the wrap width in columns; zero disables wrapping.
func WithWidth(width int) Option {
	return func(s *settings) { s.cfg.Render.Width = width }
}

// WithMargin sets the left margin in columns.
func WithMargin(margin int) Option {
	return func(s *settings) { s.cfg.Render.Margin = margin }
}

// WithHue sets the base hue the theme derives from.
func WithHue(hue float64) Option {
	return func(s *settings) { s.cfg.Theme.Hue = hue }
}

// WithPlain forces uncolored output regardless of the sink.
func WithPlain() Option {
	return func(s *settings) { s.plain = true }
}

// HideThink drops <think> block content instead of rendering it dimmed.
func HideThink() Option {
	return func(s *settings) { s.cfg.Think.Show = false }
}

// New creates a Streamer writing rendered output to sink. Configuration
// is resolved here, once; options applied later have no effect on an
// open stream.
func New(sink io.Writer, opts ...Option) *Streamer {
	s := settings{cfg: config.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	cfg := s.cfg
	return &Streamer{
		plugins:  &plugin.Pipeline{},
		filter:   think.New(parser.New()),
		renderer: render.New(sink, &cfg, s.plain),
	}
}

// Register adds a plugin transformer. Transformers run in registration
// order over each raw line before any parsing.
func (s *Streamer) Register(t plugin.Transformer) {
	s.plugins.Register(t)
}

// Width returns the resolved wrap width, so a caller that wants to react
// to a terminal resize can start a fresh stream at the new width.
func (s *Streamer) Width() int {
	return s.renderer.Width()
}

// Write implements io.Writer over arbitrary chunk boundaries: input is
// buffered until a newline completes a line, then the line is fed
// through the pipeline. Rendering output is identical no matter how the
// same bytes are chunked.
func (s *Streamer) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	rest := string(p)
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx == -1 {
			s.partial.WriteString(rest)
			break
		}
		line := s.partial.String() + rest[:idx]
		s.partial.Reset()
		rest = rest[idx+1:]
		if err := s.FeedLine(strings.TrimSuffix(line, "\r")); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// FeedLine processes one complete line (no trailing newline). The only
// error source is the sink; after an error the stream is dead and every
// later call returns the same error.
func (s *Streamer) FeedLine(line string) error {
	if s.err != nil {
		return s.err
	}
	if s.finalized {
		return nil
	}
	line = s.plugins.Apply(line)
	for _, ev := range s.filter.Feed(line) {
		if err := s.renderer.Render(ev); err != nil {
			s.err = err
			return err
		}
	}
	return nil
}

// Finalize flushes a buffered partial line and synthesizes close events
// for every open construct, restoring the balance invariant for
// truncated input. It must be called exactly once, when the stream ends.
func (s *Streamer) Finalize() error {
	if s.err != nil {
		return s.err
	}
	if s.finalized {
		return nil
	}
	if s.partial.Len() > 0 {
		line := s.partial.String()
		s.partial.Reset()
		if err := s.FeedLine(line); err != nil {
			return err
		}
	}
	s.finalized = true
	for _, ev := range s.filter.Finalize() {
		if err := s.renderer.Render(ev); err != nil {
			s.err = err
			return err
		}
	}
	return nil
}
