package vterm

import (
	"strings"

	"github.com/andyrewlee/typeahead/internal/typeahead"
)

// VTerm is the view local echo predicts against.
var _ typeahead.Terminal = (*VTerm)(nil)

// Size returns the dimensions in cells.
func (v *VTerm) Size() (cols, rows int) { return v.Width, v.Height }

// Cursor returns the cursor and how many scrollback lines lie above the
// screen. After writing the last column x equals the width until the next
// character wraps.
func (v *VTerm) Cursor() (x, y, baseY int) {
	return v.CursorX, v.CursorY, v.baseY()
}

func (v *VTerm) baseY() int {
	if v.altScreen {
		return 0
	}
	return len(v.Scrollback)
}

// AltScreen reports whether the alternate buffer is active.
func (v *VTerm) AltScreen() bool { return v.altScreen }

// Cell reads the cell at an absolute row (scrollback first) and column.
func (v *VTerm) Cell(row, col int) (typeahead.Cell, bool) {
	line := v.line(row)
	if col < 0 || col >= len(line) {
		return typeahead.Cell{}, false
	}
	c := line[col]
	return typeahead.Cell{Chars: c.String(), Attr: c.Attr, Width: c.Width}, true
}

// WriteString parses s as if the process had printed it.
func (v *VTerm) WriteString(s string) (int, error) {
	v.parser.Parse([]byte(s))
	return len(s), nil
}

func (v *VTerm) line(row int) []Cell {
	if row < 0 {
		return nil
	}
	base := v.baseY()
	if row < base {
		return v.Scrollback[row]
	}
	row -= base
	if row >= len(v.Screen) {
		return nil
	}
	return v.Screen[row]
}

// LineText returns the text of an absolute row with trailing blanks removed.
func (v *VTerm) LineText(row int) string {
	var b strings.Builder
	for _, c := range v.line(row) {
		switch {
		case c.Width == 0:
		case c.Rune == 0:
			b.WriteByte(' ')
		default:
			b.WriteRune(c.Rune)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// ScreenText returns the visible lines.
func (v *VTerm) ScreenText() []string {
	base := v.baseY()
	out := make([]string, len(v.Screen))
	for y := range v.Screen {
		out[y] = v.LineText(base + y)
	}
	return out
}
