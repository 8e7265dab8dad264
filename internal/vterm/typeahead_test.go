package vterm_test

import (
	"strings"
	"testing"

	"github.com/andyrewlee/typeahead/internal/config"
	"github.com/andyrewlee/typeahead/internal/typeahead"
	"github.com/andyrewlee/typeahead/internal/vterm"
)

// session drives an engine and the view it predicts against the way the
// CLI does: predictions go straight to the view, process output passes
// through the engine first.
type session struct {
	t  *testing.T
	vt *vterm.VTerm
	e  *typeahead.Engine
}

func newSession(t *testing.T, width, height int, settings config.Typeahead) *session {
	t.Helper()
	vt := vterm.New(width, height)
	e := typeahead.NewEngine(typeahead.Options{
		Terminal:  vt,
		Config:    settings,
		Telemetry: typeahead.TelemetryFunc(func(typeahead.LatencyStats, float64) {}),
	})
	e.Activate()
	t.Cleanup(e.Close)
	return &session{t: t, vt: vt, e: e}
}

func italicAlways() config.Typeahead {
	return config.Typeahead{Style: typeahead.StyleItalic}
}

func (s *session) process(data string) {
	_, _ = s.vt.WriteString(s.e.BeforeProcessData(data))
}

func (s *session) expectLine(row int, want string) {
	s.t.Helper()
	if got := s.vt.LineText(row); got != want {
		s.t.Fatalf("row %d = %q, want %q", row, got, want)
	}
}

func (s *session) expectCursorX(want int) {
	s.t.Helper()
	if x, _, _ := s.vt.Cursor(); x != want {
		s.t.Fatalf("cursor x = %d, want %d", x, want)
	}
}

func TestPredictionShowsAndConfirms(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ ")

	s.e.HandleInput("l")
	s.expectLine(0, "$ l")
	if c, _ := s.vt.Cell(0, 2); !c.Attr.IsItalic() {
		t.Fatal("prediction should be drawn in italic")
	}

	s.process("l")
	s.expectLine(0, "$ l")
	s.expectCursorX(3)
	if c, _ := s.vt.Cell(0, 2); c.Attr.IsItalic() {
		t.Fatal("confirmed echo should carry the process's attributes")
	}
	if s.vt.CursorHidden {
		t.Fatal("cursor left hidden after reconciling")
	}
}

func TestPredictionRollsBack(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ l")

	s.e.HandleInput("s")
	s.expectLine(0, "$ ls")

	s.process("x")
	s.expectLine(0, "$ lx")
	s.expectCursorX(4)
	if c, _ := s.vt.Cell(0, 3); c.Attr.IsItalic() {
		t.Fatal("rolled back cell kept the highlight")
	}
}

func TestPredictionWithScrollback(t *testing.T) {
	s := newSession(t, 20, 2, italicAlways())
	s.process("a\r\nb\r\n$ ")
	if _, _, baseY := s.vt.Cursor(); baseY != 1 {
		t.Fatalf("baseY = %d, want 1", baseY)
	}

	s.e.HandleInput("x")
	s.expectLine(2, "$ x")
	s.process("x")
	s.expectLine(2, "$ x")
	s.expectCursorX(3)
	s.expectLine(1, "b")
}

func TestBackspaceEchoOverView(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ ab")

	s.e.HandleInput("\x7f")
	s.expectLine(0, "$ ab")
	s.process("\b \b")
	s.expectLine(0, "$ a")
	if got := s.e.Stats().Accuracy(); got != 1 {
		t.Fatalf("accuracy = %v", got)
	}
}

func TestTypingAWordOverView(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ ")

	s.e.HandleInput("echo")
	s.expectLine(0, "$ echo")
	for _, c := range strings.Split("echo", "") {
		s.process(c)
	}
	s.expectLine(0, "$ echo")
	s.expectCursorX(6)
	for col := 2; col < 6; col++ {
		if c, _ := s.vt.Cell(0, col); c.Attr.IsItalic() {
			t.Fatalf("column %d still highlighted", col)
		}
	}
	if s.e.Stats().SampleSize() != 4 {
		t.Fatalf("samples = %d, want 4", s.e.Stats().SampleSize())
	}
}

func TestNoPredictionOnAltScreen(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("\x1b[?1049h")

	s.e.HandleInput("o")
	if s.e.Timeline().Len() != 0 {
		t.Fatal("predicted on the alternate screen")
	}
	s.expectLine(0, "")
}

func TestTitleHidesPredictions(t *testing.T) {
	settings := italicAlways()
	settings.ExcludePrograms = []string{"vim"}
	s := newSession(t, 20, 5, settings)

	var title string
	s.vt.SetTitleHandler(func(name string) { title = name })
	s.process("\x1b]0;vim notes\x07")
	s.e.TitleChanged(title)
	if s.e.Timeline().IsShowingPredictions() {
		t.Fatal("predictions shown under an excluded program")
	}

	s.e.HandleInput("o")
	s.expectLine(0, "")
}

func TestEscapeSplitBeforeEcho(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ ")

	s.e.HandleInput("l")
	s.process("\x1b[4")
	s.process("ml")
	s.expectLine(0, "$ l")
	s.expectCursorX(3)
	if c, _ := s.vt.Cell(0, 2); !c.Attr.IsUnderline() || c.Attr.IsItalic() {
		t.Fatalf("echo attributes = %#v, want underline only", c.Attr)
	}
	if got := s.e.Stats().Accuracy(); got != 1 {
		t.Fatalf("accuracy = %v, want 1", got)
	}
}

func TestRollbackOverStyledCellRestoresPen(t *testing.T) {
	s := newSession(t, 20, 5, italicAlways())
	s.process("$ \x1b[3mxyz\x1b[0;1m\x1b[1;3H")

	s.e.HandleInput("q")
	s.expectLine(0, "$ qyz")

	s.process("w")
	s.expectLine(0, "$ wyz")
	c, _ := s.vt.Cell(0, 2)
	if !c.Attr.IsBold() || c.Attr.IsItalic() {
		t.Fatalf("echo attributes = %#v, want bold only", c.Attr)
	}
}
