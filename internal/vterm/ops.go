package vterm

import (
	"github.com/mattn/go-runewidth"

	"github.com/andyrewlee/typeahead/internal/attr"
)

// putChar places a character at current cursor position
func (v *VTerm) putChar(r rune) {
	width := runewidth.RuneWidth(r)

	// Combining characters (width 0) would attach to the previous cell;
	// a cell holds one rune, so they are dropped
	if width == 0 {
		return
	}

	// Wide characters: if at last column, wrap first to avoid splitting
	if width == 2 && v.CursorX == v.Width-1 {
		v.Screen[v.CursorY][v.CursorX] = Cell{Attr: v.Pen, Width: 1}
		v.CursorX = v.Width
	}

	// Pending auto-wrap
	if v.CursorX >= v.Width {
		v.CursorX = 0
		v.lineFeed()
	}

	line := v.Screen[v.CursorY]
	x := v.CursorX

	// If we're overwriting a continuation cell (Width==0), clear the wide char before it
	if line[x].Width == 0 && x > 0 {
		line[x-1] = DefaultCell()
	}
	// If we're overwriting a wide char (Width==2) with something else, clear its continuation
	if line[x].Width == 2 && x+1 < v.Width {
		line[x+1] = DefaultCell()
	}

	line[x] = Cell{Rune: r, Attr: v.Pen, Width: width}

	if width == 2 && x+1 < v.Width {
		if line[x+1].Width == 2 && x+2 < v.Width {
			line[x+2] = DefaultCell()
		}
		line[x+1] = Cell{Attr: v.Pen, Width: 0}
	}

	// Past the last column the cursor waits for the next character to wrap
	v.CursorX += width
}

// lineFeed moves down one row, scrolling at the bottom of the region
func (v *VTerm) lineFeed() {
	if v.CursorY == v.ScrollBottom-1 {
		v.scrollUp(1)
		return
	}
	if v.CursorY < v.Height-1 {
		v.CursorY++
	}
}

// newline is LF. The column is kept, except that a pending wrap is dropped.
func (v *VTerm) newline() {
	if v.CursorX >= v.Width {
		v.CursorX = v.Width - 1
	}
	v.lineFeed()
}

// reverseIndex moves up one row, scrolling down at the top of the region
func (v *VTerm) reverseIndex() {
	if v.CursorY == v.ScrollTop {
		v.scrollDown(1)
	} else if v.CursorY > 0 {
		v.CursorY--
	}
}

// carriageReturn moves cursor to beginning of line
func (v *VTerm) carriageReturn() {
	v.CursorX = 0
}

// tab moves cursor to next tab stop (every 8 columns)
func (v *VTerm) tab() {
	v.CursorX = ((v.CursorX / 8) + 1) * 8
	if v.CursorX >= v.Width {
		v.CursorX = v.Width - 1
	}
}

// backspace moves cursor back one
func (v *VTerm) backspace() {
	if v.CursorX >= v.Width {
		v.CursorX = v.Width - 1
	}
	if v.CursorX > 0 {
		v.CursorX--
	}
}

// blank is an erased cell; it keeps the current background.
func (v *VTerm) blank() Cell {
	c := DefaultCell()
	c.Attr.Bg = v.Pen.Bg & (attr.CMMask | attr.RGBMask)
	return c
}

// eraseDisplay clears parts of the display
func (v *VTerm) eraseDisplay(mode int) {
	switch mode {
	case 0: // Cursor to end
		v.eraseLine(0)
		for y := v.CursorY + 1; y < v.Height; y++ {
			v.Screen[y] = v.blankLine()
		}
	case 1: // Start to cursor
		for y := 0; y < v.CursorY; y++ {
			v.Screen[y] = v.blankLine()
		}
		v.eraseLine(1)
	case 2, 3: // Entire display (3 also clears scrollback)
		for y := 0; y < v.Height; y++ {
			v.Screen[y] = v.blankLine()
		}
		if mode == 3 {
			v.Scrollback = v.Scrollback[:0]
		}
	}
}

func (v *VTerm) blankLine() []Cell {
	line := make([]Cell, v.Width)
	b := v.blank()
	for i := range line {
		line[i] = b
	}
	return line
}

// eraseLine clears parts of the current line
func (v *VTerm) eraseLine(mode int) {
	line := v.Screen[v.CursorY]
	x := min(v.CursorX, v.Width-1)
	switch mode {
	case 0: // Cursor to end
		for i := x; i < v.Width; i++ {
			line[i] = v.blank()
		}
	case 1: // Start to cursor
		for i := 0; i <= x; i++ {
			line[i] = v.blank()
		}
	case 2: // Entire line
		v.Screen[v.CursorY] = v.blankLine()
		return
	}
	normalizeLine(line)
}

// insertLines inserts n blank lines at cursor, pushing content down
func (v *VTerm) insertLines(n int) {
	if v.CursorY < v.ScrollTop || v.CursorY >= v.ScrollBottom {
		return
	}
	n = min(n, v.ScrollBottom-v.CursorY)

	for i := v.ScrollBottom - 1; i >= v.CursorY+n; i-- {
		v.Screen[i] = v.Screen[i-n]
	}
	for i := v.CursorY; i < v.CursorY+n; i++ {
		v.Screen[i] = v.blankLine()
	}
	v.CursorX = 0
}

// deleteLines deletes n lines at cursor, pulling content up
func (v *VTerm) deleteLines(n int) {
	if v.CursorY < v.ScrollTop || v.CursorY >= v.ScrollBottom {
		return
	}
	n = min(n, v.ScrollBottom-v.CursorY)

	for i := v.CursorY; i < v.ScrollBottom-n; i++ {
		v.Screen[i] = v.Screen[i+n]
	}
	for i := v.ScrollBottom - n; i < v.ScrollBottom; i++ {
		v.Screen[i] = v.blankLine()
	}
	v.CursorX = 0
}

// insertChars inserts n blank chars at cursor, shifting content right
func (v *VTerm) insertChars(n int) {
	line := v.Screen[v.CursorY]
	x := min(v.CursorX, v.Width-1)
	n = min(n, v.Width-x)

	copy(line[x+n:], line[x:v.Width-n])
	for i := x; i < x+n; i++ {
		line[i] = v.blank()
	}
	normalizeLine(line)
}

// deleteChars deletes n chars at cursor, shifting content left
func (v *VTerm) deleteChars(n int) {
	line := v.Screen[v.CursorY]
	x := min(v.CursorX, v.Width-1)
	n = min(n, v.Width-x)

	copy(line[x:], line[x+n:])
	for i := v.Width - n; i < v.Width; i++ {
		line[i] = v.blank()
	}
	normalizeLine(line)
}

// eraseChars erases n chars at cursor (doesn't shift)
func (v *VTerm) eraseChars(n int) {
	line := v.Screen[v.CursorY]
	x := min(v.CursorX, v.Width-1)
	for i := x; i < x+n && i < v.Width; i++ {
		line[i] = v.blank()
	}
	normalizeLine(line)
}

// normalizeLine ensures wide characters (Width==2) and continuation cells (Width==0)
// are consistent after in-place line edits (insert/delete/erase).
func normalizeLine(line []Cell) {
	for i := 0; i < len(line); i++ {
		switch line[i].Width {
		case 0:
			// Continuation without a leading wide cell is invalid.
			if i == 0 || line[i-1].Width != 2 {
				line[i] = DefaultCell()
			}
		case 2:
			// If the continuation cell is missing, drop the wide glyph.
			if i+1 >= len(line) || line[i+1].Width != 0 {
				line[i] = DefaultCell()
			}
		}
	}
}
