package vterm

import "github.com/andyrewlee/typeahead/internal/attr"

// Cell represents a single character cell. A zero Rune in a Width 1 cell was
// never written or has been erased; it reads back as no character.
type Cell struct {
	Rune  rune
	Attr  attr.State
	Width int // 1 normal, 2 wide, 0 continuation
}

// DefaultCell returns a blank cell
func DefaultCell() Cell {
	return Cell{Attr: attr.New(), Width: 1}
}

// String returns the cell's character, "" for blank and continuation cells.
func (c Cell) String() string {
	if c.Rune == 0 || c.Width == 0 {
		return ""
	}
	return string(c.Rune)
}

// MakeBlankLine creates a blank line
func MakeBlankLine(width int) []Cell {
	line := make([]Cell, width)
	for i := range line {
		line[i] = DefaultCell()
	}
	return line
}

// CopyLine deep copies a line
func CopyLine(src []Cell) []Cell {
	dst := make([]Cell, len(src))
	copy(dst, src)
	return dst
}
