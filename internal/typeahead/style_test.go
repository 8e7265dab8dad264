package typeahead

import (
	"testing"

	"github.com/andyrewlee/typeahead/internal/attr"
	"github.com/andyrewlee/typeahead/internal/sgr"
)

func TestStyleSequences(t *testing.T) {
	tests := []struct {
		name  string
		apply string
		undo  string
	}{
		{StyleBold, "\x1b[1m", "\x1b[22m"},
		{StyleDim, "\x1b[2m", "\x1b[22m"},
		{StyleItalic, "\x1b[3m", "\x1b[23m"},
		{StyleUnderlined, "\x1b[4m", "\x1b[24m"},
		{StyleInverted, "\x1b[7m", "\x1b[27m"},
		{"#ff8800", "\x1b[38;2;255;136;0m", "\x1b[39m"},
		{"#0f0", "\x1b[38;2;0;255;0m", "\x1b[39m"},
		{"not-a-style", "\x1b[38;2;255;0;0m", "\x1b[39m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStyle(tt.name)
			if s.Apply() != tt.apply {
				t.Errorf("Apply() = %q, want %q", s.Apply(), tt.apply)
			}
			if s.Undo() != tt.undo {
				t.Errorf("Undo() = %q, want %q", s.Undo(), tt.undo)
			}
		})
	}
}

func TestStyleUndoRestoresPen(t *testing.T) {
	pen := attr.New()
	sgr.Apply(&pen, sgr.Ints(1, 31))

	s := NewStyle(StyleDim)
	s.Track(pen)
	if got, want := s.Undo(), "\x1b[22;1m"; got != want {
		t.Fatalf("dim over bold: Undo() = %q, want %q", got, want)
	}

	s.Update("#123456")
	if got, want := s.Undo(), "\x1b[31m"; got != want {
		t.Fatalf("color over red: Undo() = %q, want %q", got, want)
	}
}

func TestStyleObserveTracksProcess(t *testing.T) {
	s := NewStyle(StyleItalic)
	s.Observe("\x1b[3mhello")
	if got := s.Undo(); got != "\x1b[3m" {
		t.Fatalf("after process italic: Undo() = %q", got)
	}
	s.Observe("\x1b[0m")
	if got := s.Undo(); got != "\x1b[23m" {
		t.Fatalf("after reset: Undo() = %q", got)
	}
}

func TestStyleObserveSkipsExpectedHighlight(t *testing.T) {
	s := NewStyle(StyleItalic)
	s.ExpectIncomingStyle(1)
	s.Observe(s.Apply() + "o" + s.Undo())
	if got := s.Undo(); got != "\x1b[23m" {
		t.Fatalf("own highlight changed Undo() to %q", got)
	}

	// nothing is expected anymore, so the same bytes now come from the process
	s.Observe("\x1b[3m")
	if got := s.Undo(); got != "\x1b[3m" {
		t.Fatalf("Undo() = %q, want process italic kept", got)
	}
}

func TestStyleObserveKeepsMixedParams(t *testing.T) {
	s := NewStyle(StyleBold)
	s.ExpectIncomingStyle(1)
	// our bold followed by the process's underline in one sequence
	s.Observe("\x1b[1;4m")
	if got := s.Undo(); got != "\x1b[22m" {
		t.Fatalf("Undo() = %q", got)
	}
	s.Observe("\x1b[38;5;1m")
	s.Update("#000000")
	if got := s.Undo(); got != "\x1b[38;5;1m" {
		t.Fatalf("palette foreground: Undo() = %q", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b int
		ok      bool
	}{
		{"#ffffff", 255, 255, 255, true},
		{"#abc", 0xaa, 0xbb, 0xcc, true},
		{"ffffff", 0, 0, 0, false},
		{"#ggg", 0, 0, 0, false},
		{"#12345", 0, 0, 0, false},
	}
	for _, tt := range tests {
		r, g, b, ok := parseHexColor(tt.in)
		if ok != tt.ok || r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("parseHexColor(%q) = %d,%d,%d,%v", tt.in, r, g, b, ok)
		}
	}
}
