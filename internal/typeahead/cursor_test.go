package typeahead

import "testing"

func TestCursorMoveInstruction(t *testing.T) {
	term := newFakeTerm("", "hello|")
	cur := newCursor(term)

	if got := cur.MoveInstruction(); got != "\x1b[2;6H" {
		t.Fatalf("MoveInstruction() = %q", got)
	}
	if got := cur.Shift(1, 0); got != "\x1b[2;7H" {
		t.Fatalf("Shift() = %q", got)
	}
}

func TestCursorScrollsBase(t *testing.T) {
	cur := newCursor(newFakeTerm("|"))
	if got := cur.Move(0, 7); got != "\x1b[5;1H" {
		t.Fatalf("Move() = %q", got)
	}
	if cur.Y() != 4 || cur.BaseY() != 3 {
		t.Fatalf("y=%d baseY=%d, want 4 and 3", cur.Y(), cur.BaseY())
	}

	// same absolute line from the new base
	if got := cur.MoveTo(Position{X: 2, Y: 7, BaseY: 0}); got != "\x1b[5;3H" {
		t.Fatalf("MoveTo() = %q", got)
	}
}

func TestCursorCloneIsIndependent(t *testing.T) {
	cur := newCursor(newFakeTerm("ab|"))
	cp := cur.Clone()
	cp.Shift(-2, 0)
	if cur.X() != 2 || cp.X() != 0 {
		t.Fatalf("x = %d and %d", cur.X(), cp.X())
	}
	cell, ok := cp.Cell()
	if !ok || cell.Chars != "a" {
		t.Fatalf("Cell() = %+v, %v", cell, ok)
	}
	cp.Shift(-1, 0)
	if _, ok := cp.Cell(); ok {
		t.Fatal("Cell() left of the screen should fail")
	}
}
