package typeahead

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/andyrewlee/typeahead/internal/attr"
	"github.com/andyrewlee/typeahead/internal/sgr"
)

const (
	csi             = "\x1b["
	eraseChar       = csi + "X"
	eraseRestOfLine = csi + "K"
)

var (
	csiStyleRe = regexp.MustCompile(`^\x1b\[[0-9;:]*m`)
	// an escape sequence cut off by the end of a chunk
	partialEscapeRe = regexp.MustCompile(`^\x1b(\[[0-9;:?]*)?$`)
)

// Kind identifies a prediction variant.
type Kind int

const (
	KindCharacter Kind = iota
	KindBackspace
	KindCursorMove
	KindNewline
	KindLinewrap
	KindTentativeBoundary
	KindHardBoundary
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindBackspace:
		return "backspace"
	case KindCursorMove:
		return "cursor-move"
	case KindNewline:
		return "newline"
	case KindLinewrap:
		return "linewrap"
	case KindTentativeBoundary:
		return "tentative-boundary"
	case KindHardBoundary:
		return "hard-boundary"
	default:
		return "unknown"
	}
}

// PredictionState is where a queued prediction is in its lifecycle.
type PredictionState int

const (
	StatePending PredictionState = iota
	StateConfirmed
	StateRejected
	StateSuperseded
)

func (s PredictionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	case StateSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

type lifecycle struct {
	state PredictionState
}

// State reports the lifecycle state.
func (l *lifecycle) State() PredictionState { return l.state }

func (l *lifecycle) setState(s PredictionState) { l.state = s }

// Prediction is a speculative edit. The set of implementations is closed;
// switch on Kind or on the concrete type.
type Prediction interface {
	Kind() Kind
	State() PredictionState
	setState(PredictionState)

	// apply moves the shadow cursor and returns the bytes that render the
	// prediction.
	apply(cur *Cursor) string
	// rollback returns the bytes that undo what apply rendered.
	rollback(cur *Cursor) string
	// rollForwards returns the bytes that replace the rendering with the
	// confirmed process output.
	rollForwards(cur *Cursor, input string) string
	matches(r *reader, lookBehind Prediction) MatchResult
	// affectsStyle reports whether apply emits a highlight style sequence.
	affectsStyle() bool
}

// PositionOf returns where a prediction was applied, if it has been.
func PositionOf(p Prediction) (Position, bool) {
	switch p := p.(type) {
	case *CharacterPrediction:
		return p.at.pos, p.applied
	case *BackspacePrediction:
		return p.at.pos, p.applied
	case *CursorMovePrediction:
		return p.prev, p.applied
	case *NewlinePrediction:
		return p.prev, p.applied
	case *LinewrapPrediction:
		return p.prev, p.applied
	case *TentativeBoundary:
		return PositionOf(p.Inner)
	case *HardBoundary:
		return p.at, p.applied
	}
	return Position{}, false
}

type cellSnapshot struct {
	pos   Position
	attrs string
	char  string
}

func snapshot(cur *Cursor) cellSnapshot {
	s := cellSnapshot{pos: cur.Position()}
	if cell, ok := cur.Cell(); ok {
		s.char = cell.Chars
		s.attrs = sgr.Sequence(cell.Attr)
	}
	return s
}

// CharacterPrediction is a typed printable character.
type CharacterPrediction struct {
	lifecycle
	style   *Style
	char    string
	at      cellSnapshot
	applied bool
}

// NewCharacterPrediction predicts that char is echoed at the cursor.
func NewCharacterPrediction(style *Style, char string) *CharacterPrediction {
	return &CharacterPrediction{style: style, char: char}
}

func (p *CharacterPrediction) Kind() Kind { return KindCharacter }

// Char returns the predicted character.
func (p *CharacterPrediction) Char() string { return p.char }

func (p *CharacterPrediction) affectsStyle() bool { return true }

// rewritesCell reports whether rollback redraws an old character with its
// own attributes, leaving the pen changed.
func (p *CharacterPrediction) rewritesCell() bool { return p.applied && p.at.char != "" }

func (p *CharacterPrediction) apply(cur *Cursor) string {
	p.at = snapshot(cur)
	p.applied = true
	cur.Shift(1, 0)
	return p.style.Apply() + p.char + p.style.Undo()
}

func (p *CharacterPrediction) rollback(cur *Cursor) string {
	if !p.applied {
		return ""
	}
	move := cur.MoveTo(p.at.pos)
	if p.at.char == "" {
		return move + eraseChar
	}
	return move + p.at.attrs + p.at.char + cur.MoveTo(p.at.pos)
}

func (p *CharacterPrediction) rollForwards(cur *Cursor, input string) string {
	if !p.applied {
		return ""
	}
	return cur.Clone().MoveTo(p.at.pos) + input
}

func (p *CharacterPrediction) matches(r *reader, lookBehind Prediction) MatchResult {
	start := r.index
	// styling from the process may precede the echo
	for r.eatRe(csiStyleRe) != nil {
	}
	if r.eof() || partialEscapeRe.MatchString(r.rest()) {
		return MatchBuffer
	}
	if r.eatStr(p.char) {
		return MatchSuccess
	}
	if prev, ok := lookBehind.(*CharacterPrediction); ok {
		// zsh redraws the previous character before echoing the new one
		if res := r.eatGradually("\b" + prev.char + p.char); res != MatchFailure {
			return res
		}
	}
	r.index = start
	return MatchFailure
}

// BackspacePrediction is a DEL keystroke at the end of the line.
type BackspacePrediction struct {
	lifecycle
	pen     func() attr.State
	at      cellSnapshot
	applied bool
}

// NewBackspacePrediction predicts that the character left of the cursor is
// erased. pen reports the process's current attributes, which rollback
// restores after rewriting the old cell.
func NewBackspacePrediction(pen func() attr.State) *BackspacePrediction {
	return &BackspacePrediction{pen: pen}
}

func (p *BackspacePrediction) Kind() Kind { return KindBackspace }

func (p *BackspacePrediction) affectsStyle() bool { return false }

func (p *BackspacePrediction) apply(cur *Cursor) string {
	move := cur.Shift(-1, 0)
	p.at = snapshot(cur)
	p.applied = true
	return move + eraseChar
}

func (p *BackspacePrediction) rollback(cur *Cursor) string {
	if !p.applied {
		return ""
	}
	if p.at.char == "" {
		return cur.MoveTo(Position{X: p.at.pos.X + 1, Y: p.at.pos.Y, BaseY: p.at.pos.BaseY})
	}
	move := cur.MoveTo(p.at.pos)
	restore := ""
	if p.pen != nil {
		restore = sgr.Sequence(p.pen())
	}
	cur.Shift(1, 0)
	return move + p.at.attrs + p.at.char + restore
}

func (p *BackspacePrediction) rollForwards(*Cursor, string) string { return "" }

func (p *BackspacePrediction) matches(r *reader, _ Prediction) MatchResult {
	// bash clears to end of line, zsh overwrites with a space
	if res := r.eatGradually("\b" + eraseRestOfLine); res != MatchFailure {
		return res
	}
	return r.eatGradually("\b \b")
}

// Direction is the direction of a horizontal cursor move.
type Direction byte

const (
	DirectionBack     Direction = 'D'
	DirectionForwards Direction = 'C'
)

// CursorMovePrediction is an arrow key or word-jump keystroke.
type CursorMovePrediction struct {
	lifecycle
	direction   Direction
	byWords     bool
	amount      int
	moved       int
	prev        Position
	rollForward string
	applied     bool
}

// NewCursorMovePrediction predicts a move of amount cells, or amount words
// when byWords is set.
func NewCursorMovePrediction(direction Direction, byWords bool, amount int) *CursorMovePrediction {
	if amount < 1 {
		amount = 1
	}
	return &CursorMovePrediction{direction: direction, byWords: byWords, amount: amount}
}

func (p *CursorMovePrediction) Kind() Kind { return KindCursorMove }

func (p *CursorMovePrediction) affectsStyle() bool { return false }

func (p *CursorMovePrediction) apply(cur *Cursor) string {
	p.prev = cur.Position()
	delta := 1
	if p.direction == DirectionBack {
		delta = -1
	}

	target := cur.Clone()
	if p.byWords {
		for i := 0; i < p.amount; i++ {
			moveToWordBoundary(target, delta)
		}
	} else {
		target.Shift(delta*p.amount, 0)
	}

	p.moved = cur.X() - target.X()
	if p.moved < 0 {
		p.moved = -p.moved
	}
	p.rollForward = cur.MoveTo(target.Position())
	p.applied = true
	return p.rollForward
}

func (p *CursorMovePrediction) rollback(cur *Cursor) string {
	if !p.applied {
		return ""
	}
	return cur.Move(p.prev.X, cur.Y())
}

func (p *CursorMovePrediction) rollForwards(*Cursor, string) string { return "" }

func (p *CursorMovePrediction) matches(r *reader, _ Prediction) MatchResult {
	if !p.applied {
		return MatchFailure
	}
	dir := string(rune(p.direction))

	// Not gradual: a shorter move would otherwise buffer forever.
	if p.moved > 0 && r.eatStr(strings.Repeat(csi+dir, p.moved)) {
		return MatchSuccess
	}
	if p.direction == DirectionBack && p.moved > 0 && r.eatStr(strings.Repeat("\b", p.moved)) {
		return MatchSuccess
	}
	if p.rollForward != "" {
		if res := r.eatGradually(p.rollForward); res != MatchFailure {
			return res
		}
	}
	return r.eatGradually(csi + strconv.Itoa(p.moved) + dir)
}

// moveToWordBoundary walks the cursor over one word in the given direction,
// stopping at blank cells.
func moveToWordBoundary(cur *Cursor, delta int) {
	ateWord := false
	if delta < 0 {
		cur.Shift(-1, 0)
	}
	for cur.X() >= 0 && cur.X() < cur.cols {
		cell, ok := cur.Cell()
		if !ok || cell.Chars == "" {
			return
		}
		if isWordChar(cell.Chars) {
			ateWord = true
		} else if ateWord {
			break
		}
		cur.Shift(delta, 0)
	}
	if delta < 0 {
		// land after the separator that precedes the word
		cur.Shift(1, 0)
	}
}

func isWordChar(s string) bool {
	if len(s) != 1 {
		return false
	}
	c := s[0]
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// NewlinePrediction is a carriage return on a line that is not the last row.
type NewlinePrediction struct {
	lifecycle
	prev    Position
	applied bool
}

func NewNewlinePrediction() *NewlinePrediction { return &NewlinePrediction{} }

func (p *NewlinePrediction) Kind() Kind { return KindNewline }

func (p *NewlinePrediction) affectsStyle() bool { return false }

func (p *NewlinePrediction) apply(cur *Cursor) string {
	p.prev = cur.Position()
	p.applied = true
	cur.Move(0, cur.Y()+1)
	return "\r\n"
}

func (p *NewlinePrediction) rollback(cur *Cursor) string {
	if !p.applied {
		return ""
	}
	return cur.MoveTo(p.prev)
}

func (p *NewlinePrediction) rollForwards(*Cursor, string) string { return "" }

func (p *NewlinePrediction) matches(r *reader, _ Prediction) MatchResult {
	return r.eatGradually("\r\n")
}

// LinewrapPrediction is the wrap that happens when typing into the last column.
type LinewrapPrediction struct {
	NewlinePrediction
}

func NewLinewrapPrediction() *LinewrapPrediction { return &LinewrapPrediction{} }

func (p *LinewrapPrediction) Kind() Kind { return KindLinewrap }

func (p *LinewrapPrediction) apply(cur *Cursor) string {
	p.prev = cur.Position()
	p.applied = true
	cur.Move(0, cur.Y()+1)
	return " \r"
}

func (p *LinewrapPrediction) matches(r *reader, _ Prediction) MatchResult {
	// bash and zsh print a space that wraps, then a carriage return
	res := r.eatGradually(" \r")
	if res != MatchFailure {
		// zsh also clears the new line
		if r.eatGradually(eraseRestOfLine) == MatchBuffer {
			return MatchBuffer
		}
		return res
	}
	return r.eatGradually("\r\n")
}

// TentativeBoundary wraps a prediction whose effect on the screen is not
// certain. It renders nothing; on success the physical cursor jumps to where
// the inner prediction left it.
type TentativeBoundary struct {
	lifecycle
	Inner   Prediction
	applied *Cursor
}

func NewTentativeBoundary(inner Prediction) *TentativeBoundary {
	return &TentativeBoundary{Inner: inner}
}

func (p *TentativeBoundary) Kind() Kind { return KindTentativeBoundary }

func (p *TentativeBoundary) affectsStyle() bool { return false }

func (p *TentativeBoundary) apply(cur *Cursor) string {
	p.applied = cur.Clone()
	p.Inner.apply(p.applied)
	return ""
}

func (p *TentativeBoundary) rollback(cur *Cursor) string {
	p.Inner.rollback(cur.Clone())
	return ""
}

func (p *TentativeBoundary) rollForwards(cur *Cursor, input string) string {
	if p.applied != nil {
		cur.MoveTo(p.applied.Position())
	}
	return input
}

func (p *TentativeBoundary) matches(r *reader, lookBehind Prediction) MatchResult {
	return p.Inner.matches(r, lookBehind)
}

// HardBoundary stops typeahead: input the engine does not understand was
// sent, and nothing after it can be predicted until it resolves.
type HardBoundary struct {
	lifecycle
	at      Position
	applied bool
}

func NewHardBoundary() *HardBoundary { return &HardBoundary{} }

func (p *HardBoundary) Kind() Kind { return KindHardBoundary }

func (p *HardBoundary) affectsStyle() bool { return false }

func (p *HardBoundary) apply(cur *Cursor) string {
	p.at = cur.Position()
	p.applied = true
	return ""
}

func (p *HardBoundary) rollback(*Cursor) string { return "" }

func (p *HardBoundary) rollForwards(*Cursor, string) string { return "" }

func (p *HardBoundary) matches(*reader, Prediction) MatchResult { return MatchFailure }
