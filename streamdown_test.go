package streamdown

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/streamdown/streamdown/internal/plugin"
)

const sampleDoc = `# Report

Some *styled* text with ` + "`code`" + ` in it.

- first
- second
  - nested

| name | n |
|------|---|
| a    | 1 |
| much longer | 2 |

` + "```go\nfunc main() {}\n```\n" + `
> a quote
done
`

func renderDoc(t *testing.T, feed func(*Streamer) error) string {
	t.Helper()
	var buf bytes.Buffer
	s := New(&buf, WithPlain(), WithWidth(60))
	if err := feed(s); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestChunkingInvariance(t *testing.T) {
	whole := renderDoc(t, func(s *Streamer) error {
		_, err := s.Write([]byte(sampleDoc))
		return err
	})

	byteAtATime := renderDoc(t, func(s *Streamer) error {
		for i := 0; i < len(sampleDoc); i++ {
			if _, err := s.Write([]byte{sampleDoc[i]}); err != nil {
				return err
			}
		}
		return nil
	})

	oddChunks := renderDoc(t, func(s *Streamer) error {
		for i := 0; i < len(sampleDoc); i += 7 {
			end := i + 7
			if end > len(sampleDoc) {
				end = len(sampleDoc)
			}
			if _, err := s.Write([]byte(sampleDoc[i:end])); err != nil {
				return err
			}
		}
		return nil
	})

	if whole != byteAtATime {
		t.Error("byte-at-a-time output differs from single write")
	}
	if whole != oddChunks {
		t.Error("7-byte-chunk output differs from single write")
	}
}

func TestFeedLineMatchesWrite(t *testing.T) {
	whole := renderDoc(t, func(s *Streamer) error {
		_, err := s.Write([]byte(sampleDoc))
		return err
	})
	perLine := renderDoc(t, func(s *Streamer) error {
		for _, line := range strings.Split(strings.TrimSuffix(sampleDoc, "\n"), "\n") {
			if err := s.FeedLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if whole != perLine {
		t.Error("FeedLine output differs from Write output")
	}
}

func TestFenceContentVerbatim(t *testing.T) {
	content := "  odd   spacing *not emphasis* <tag>"
	out := renderDoc(t, func(s *Streamer) error {
		_, err := s.Write([]byte("```\n" + content + "\n```\n"))
		return err
	})
	if !strings.Contains(ansi.Strip(out), content) {
		t.Errorf("fence content altered:\n%s", ansi.Strip(out))
	}
}

func TestFinalizeFlushesPartialLine(t *testing.T) {
	out := renderDoc(t, func(s *Streamer) error {
		_, err := s.Write([]byte("no trailing newline"))
		return err
	})
	if !strings.Contains(ansi.Strip(out), "no trailing newline") {
		t.Errorf("partial line lost: %q", out)
	}
}

func TestFinalizeClosesOpenFence(t *testing.T) {
	out := renderDoc(t, func(s *Streamer) error {
		_, err := s.Write([]byte("```\ntruncated code\n"))
		return err
	})
	if !strings.Contains(ansi.Strip(out), "truncated code") {
		t.Errorf("truncated fence content lost: %q", out)
	}
}

func TestHideThink(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, WithPlain(), HideThink())
	if _, err := s.Write([]byte("<think>\nsecret reasoning\n</think>\nvisible\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "secret reasoning") {
		t.Errorf("think content leaked: %q", out)
	}
	if !strings.Contains(ansi.Strip(out), "visible") {
		t.Errorf("visible content missing: %q", out)
	}
}

func TestPluginsRunBeforeParsing(t *testing.T) {
	var buf bytes.Buffer
	s := New(&buf, WithPlain())
	s.Register(plugin.Func{ID: "promote", Fn: func(line string) string {
		return strings.Replace(line, "@@", "# ", 1)
	}})
	if err := s.FeedLine("@@Promoted"); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ansi.Strip(buf.String()), "# Promoted") {
		t.Errorf("plugin output not parsed as heading: %q", buf.String())
	}
}

type failingSink struct{ err error }

func (w failingSink) Write(p []byte) (int, error) { return 0, w.err }

func TestSinkErrorIsSticky(t *testing.T) {
	sinkErr := errors.New("broken pipe")
	s := New(failingSink{err: sinkErr})

	err := s.FeedLine("hello")
	if !errors.Is(err, sinkErr) {
		t.Fatalf("FeedLine err = %v, want sink error", err)
	}
	if _, err := s.Write([]byte("more\n")); !errors.Is(err, sinkErr) {
		t.Errorf("Write after failure = %v, want sink error", err)
	}
	if err := s.Finalize(); !errors.Is(err, sinkErr) {
		t.Errorf("Finalize after failure = %v, want sink error", err)
	}
}

func TestWidthAccessor(t *testing.T) {
	s := New(&bytes.Buffer{}, WithWidth(72))
	if s.Width() != 72 {
		t.Errorf("Width = %d, want 72", s.Width())
	}
}
