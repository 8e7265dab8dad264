package typeahead

import (
	"strconv"

	"github.com/andyrewlee/typeahead/internal/attr"
)

// Cell is what the view reports for one screen position.
type Cell struct {
	Chars string
	Attr  attr.State
	Width int
}

// Terminal is the view the engine predicts against. Rows are absolute buffer
// lines (cursor y plus baseY); all coordinates are 0-based.
type Terminal interface {
	Size() (cols, rows int)
	Cursor() (x, y, baseY int)
	Cell(row, col int) (Cell, bool)
	AltScreen() bool
	WriteString(s string) (int, error)
}

// Position is a shadow cursor location.
type Position struct {
	X, Y, BaseY int
}

// Cursor is a shadow cursor. Every move returns the CUP sequence that puts
// the real cursor in the same place.
type Cursor struct {
	rows, cols  int
	x, y, baseY int
	term        Terminal
}

func newCursor(t Terminal) *Cursor {
	cols, rows := t.Size()
	x, y, baseY := t.Cursor()
	return &Cursor{rows: rows, cols: cols, x: x, y: y, baseY: baseY, term: t}
}

func (c *Cursor) X() int     { return c.x }
func (c *Cursor) Y() int     { return c.y }
func (c *Cursor) BaseY() int { return c.baseY }

// Position returns the current location.
func (c *Cursor) Position() Position {
	return Position{X: c.x, Y: c.y, BaseY: c.baseY}
}

// Cell reads the view cell under the cursor.
func (c *Cursor) Cell() (Cell, bool) {
	if c.x < 0 || c.x >= c.cols {
		return Cell{}, false
	}
	return c.term.Cell(c.y+c.baseY, c.x)
}

// Clone returns an independent copy.
func (c *Cursor) Clone() *Cursor {
	cp := *c
	return &cp
}

// MoveTo jumps to p, translating between scroll bases.
func (c *Cursor) MoveTo(p Position) string {
	c.x = p.X
	c.y = p.Y + p.BaseY - c.baseY
	return c.MoveInstruction()
}

// Move jumps to a viewport position.
func (c *Cursor) Move(x, y int) string {
	c.x = x
	c.y = y
	return c.MoveInstruction()
}

// Shift moves relative to the current position.
func (c *Cursor) Shift(dx, dy int) string {
	c.x += dx
	c.y += dy
	return c.MoveInstruction()
}

// MoveInstruction keeps y inside the viewport by scrolling the base and
// returns the absolute CUP sequence.
func (c *Cursor) MoveInstruction() string {
	if c.y >= c.rows {
		c.baseY += c.y - (c.rows - 1)
		c.y = c.rows - 1
	} else if c.y < 0 {
		c.baseY += c.y
		c.y = 0
	}
	return cursorPosition(c.y+1, c.x+1)
}

// cursorPosition always spells out both parameters; downstream matching
// compares these bytes verbatim.
func cursorPosition(row, col int) string {
	return "\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H"
}
