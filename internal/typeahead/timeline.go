package typeahead

import (
	"regexp"

	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/typeahead/internal/attr"
	"github.com/andyrewlee/typeahead/internal/logging"
	"github.com/andyrewlee/typeahead/internal/sgr"
)

// Cursor visibility toggles and device status reports pass through matching
// untouched.
var predictionOmitRe = regexp.MustCompile(`^(\x1b\[(\??25[hl]|\??[0-9;]+n))+`)

var trailingEscapeRe = regexp.MustCompile(`\x1b(\[[0-9;:?]*)?$`)

type entry struct {
	gen int
	p   Prediction
}

// Timeline reconciles queued predictions against process output.
//
// Predictions are grouped into generations. Only the head generation is
// rendered; later generations are applied to the tentative cursor and shown
// once every prediction before them has been confirmed.
type Timeline struct {
	term  Terminal
	style *Style
	pen   func() attr.State

	expected    []entry
	currentGen  int
	physical    *Cursor
	tentative   *Cursor
	inputBuffer string
	show        bool
	disabled    bool
	lookBehind  Prediction

	added     emitter[Prediction]
	succeeded emitter[Prediction]
	failed    emitter[Prediction]
}

// NewTimeline creates an empty timeline. pen reports the process's current
// attributes, restored after a rollback rewrote cells; nil means default.
func NewTimeline(term Terminal, style *Style, pen func() attr.State) *Timeline {
	if pen == nil {
		pen = attr.New
	}
	return &Timeline{term: term, style: style, pen: pen}
}

func (t *Timeline) OnPredictionAdded(fn func(Prediction)) func() {
	return t.added.subscribe(fn)
}

func (t *Timeline) OnPredictionSucceeded(fn func(Prediction)) func() {
	return t.succeeded.subscribe(fn)
}

func (t *Timeline) OnPredictionFailed(fn func(Prediction)) func() {
	return t.failed.subscribe(fn)
}

// Len returns the number of pending predictions.
func (t *Timeline) Len() int { return len(t.expected) }

// IsShowingPredictions reports whether predictions are rendered.
func (t *Timeline) IsShowingPredictions() bool { return t.show }

// Disabled reports whether an internal inconsistency turned speculation off
// for good.
func (t *Timeline) Disabled() bool { return t.disabled }

// PeekStart returns the oldest pending prediction, or nil.
func (t *Timeline) PeekStart() Prediction {
	if len(t.expected) == 0 {
		return nil
	}
	return t.expected[0].p
}

// PeekEnd returns the newest pending prediction, or nil.
func (t *Timeline) PeekEnd() Prediction {
	if len(t.expected) == 0 {
		return nil
	}
	return t.expected[len(t.expected)-1].p
}

func (t *Timeline) headGeneration() []Prediction {
	if len(t.expected) == 0 {
		return nil
	}
	gen := t.expected[0].gen
	var out []Prediction
	for _, e := range t.expected {
		if e.gen != gen {
			break
		}
		out = append(out, e.p)
	}
	return out
}

// SetShowPredictions renders or hides the head generation.
func (t *Timeline) SetShowPredictions(show bool) {
	if t.disabled {
		show = false
	}
	if show == t.show {
		return
	}
	t.show = show
	if show && t.inputBuffer != "" {
		// the view already holds the held bytes, so predictions drawn now
		// would land in the wrong place
		t.inputBuffer = ""
		t.clearPredictionState()
	}
	if t.term.AltScreen() {
		if !show {
			t.flushInputBuffer(true)
		}
		return
	}

	head := t.headGeneration()
	if show {
		t.ClearCursor()
		n := 0
		var out string
		for _, p := range head {
			if p.affectsStyle() {
				n++
			}
		}
		t.style.ExpectIncomingStyle(n)
		for _, p := range head {
			out += p.apply(t.PhysicalCursor())
		}
		t.write(out)
		return
	}
	t.write(t.rollbackAll(head))
	t.flushInputBuffer(true)
}

// flushInputBuffer writes the bytes held back from the view. While hidden
// the view receives output verbatim, so they are kept only for matching.
func (t *Timeline) flushInputBuffer(keep bool) {
	if t.inputBuffer == "" {
		return
	}
	_, _ = t.term.WriteString(t.inputBuffer)
	if !keep {
		t.inputBuffer = ""
	}
}

// UndoAllPredictions rolls back what is rendered and drops every pending
// prediction.
func (t *Timeline) UndoAllPredictions() {
	if t.show && !t.term.AltScreen() {
		t.write(t.rollbackAll(t.headGeneration()))
	}
	t.clearPredictionState()
}

// rollbackAll undoes preds newest first and restores the process's style if
// any of them redrew an old cell.
func (t *Timeline) rollbackAll(preds []Prediction) string {
	var out string
	restyle := false
	for i := len(preds) - 1; i >= 0; i-- {
		if c, ok := preds[i].(*CharacterPrediction); ok && c.rewritesCell() {
			restyle = true
		}
		out += preds[i].rollback(t.PhysicalCursor())
	}
	if restyle {
		out += sgr.Sequence(t.pen())
	}
	return out
}

// BeforeServerInput matches process output against pending predictions and
// returns the bytes the view should receive instead.
func (t *Timeline) BeforeServerInput(input string) string {
	original := input
	if t.inputBuffer != "" {
		input = t.inputBuffer + input
		t.inputBuffer = ""
	}

	if len(t.expected) == 0 || t.disabled || t.term.AltScreen() {
		t.clearPredictionState()
		if !t.show {
			input = original
		}
		t.style.Observe(input)
		return input
	}

	var output string
	seen := 0
	r := newReader(input)
	startGen := t.expected[0].gen
	emitOmitted := func() {
		if m := r.eatRe(predictionOmitRe); m != nil {
			output += m[0]
		}
	}

loop:
	for len(t.expected) > 0 && r.remaining() > 0 {
		emitOmitted()
		if r.eof() {
			break
		}

		head := t.expected[0]
		p := head.p
		if p.State() != StatePending {
			shown := t.show
			t.violation("matching %s prediction that is already %s", p.Kind(), p.State())
			if shown {
				// held bytes never reached the view
				original = input
			}
			t.style.Observe(original)
			return original
		}

		before := r.index
		switch p.matches(r, t.lookBehind) {
		case MatchSuccess:
			eaten := input[before:r.index]
			if head.gen == startGen {
				output += p.rollForwards(t.PhysicalCursor(), eaten)
			} else {
				// move the cursor for the predictions applied after it
				p.apply(t.PhysicalCursor())
				if b, ok := p.(*TentativeBoundary); ok && b.applied != nil {
					t.PhysicalCursor().MoveTo(b.applied.Position())
				}
				output += eaten
			}
			p.setState(StateConfirmed)
			t.expected = t.expected[1:]
			t.lookBehind = p
			t.succeeded.fire(p)

		case MatchBuffer:
			// keep the undecided tail for the next chunk
			t.inputBuffer = input[before:]
			r.index = len(input)
			break loop

		case MatchFailure:
			var gen []Prediction
			for _, e := range t.expected {
				if e.gen == startGen {
					gen = append(gen, e.p)
				}
			}
			output += t.rollbackAll(gen)
			p.setState(StateRejected)
			t.clearPredictionState()
			t.failed.fire(p)
			break loop
		}
	}

	emitOmitted()

	// output the predictions did not account for resets the shadow cursor
	if !r.eof() {
		rest := r.rest()
		if t.show {
			// hold an unterminated escape so nothing is appended inside it
			if tail := trailingEscapeRe.FindString(rest); tail != "" {
				rest = rest[:len(rest)-len(tail)]
				t.inputBuffer = tail
			}
		}
		output += rest
		t.clearPredictionState()
	}

	// a generation boundary was passed: render the new head generation
	if len(t.expected) > 0 && startGen != t.expected[0].gen {
		if t.show {
			t.style.Observe(output[seen:])
			seen = len(output)
		}
		for _, p := range t.headGeneration() {
			if t.show && p.affectsStyle() {
				t.style.ExpectIncomingStyle(1)
			}
			output += p.apply(t.PhysicalCursor())
		}
	}

	if !t.show {
		t.style.Observe(original)
		return original
	}
	t.style.Observe(output[seen:])

	if output == "" || output == input {
		return output
	}
	if t.physical != nil {
		output += t.physical.MoveInstruction()
	}
	// hide the cursor while it jumps around
	return ansi.ResetModeTextCursorEnable + output + ansi.SetModeTextCursorEnable
}

// AddPrediction enqueues p in the current generation. It reports whether p
// was applied to the physical cursor (and rendered, if shown).
func (t *Timeline) AddPrediction(p Prediction) bool {
	if t.disabled {
		return false
	}
	if p.State() != StatePending || t.queued(p) {
		t.violation("re-adding %s prediction in state %s", p.Kind(), p.State())
		return false
	}

	t.expected = append(t.expected, entry{gen: t.currentGen, p: p})
	t.added.fire(p)

	if t.currentGen != t.expected[0].gen {
		p.apply(t.TentativeCursor())
		return false
	}

	text := p.apply(t.PhysicalCursor())
	// the next read clones the physical cursor again
	t.tentative = nil

	if t.show && text != "" {
		if p.affectsStyle() {
			t.style.ExpectIncomingStyle(1)
		}
		t.write(text)
	}
	return true
}

// AddBoundary starts a new generation.
func (t *Timeline) AddBoundary() {
	t.currentGen++
}

// AddTentative enqueues p behind a tentative boundary so it is matched but
// does not move the physical cursor, moves the tentative cursor to where p
// leaves it and starts a new generation.
func (t *Timeline) AddTentative(p Prediction) bool {
	b := NewTentativeBoundary(p)
	applied := t.AddPrediction(b)
	if b.applied != nil {
		t.tentative = b.applied.Clone()
	}
	t.currentGen++
	return applied
}

// PhysicalCursor is where the real cursor is once every rendered prediction
// is accounted for.
func (t *Timeline) PhysicalCursor() *Cursor {
	if t.physical == nil {
		t.physical = newCursor(t.term)
	}
	return t.physical
}

// TentativeCursor is where the cursor will be once every pending prediction
// is confirmed.
func (t *Timeline) TentativeCursor() *Cursor {
	if t.tentative == nil {
		t.tentative = t.PhysicalCursor().Clone()
	}
	return t.tentative
}

// ClearCursor forgets both shadow cursors; they are re-read from the view.
func (t *Timeline) ClearCursor() {
	t.physical = nil
	t.tentative = nil
}

func (t *Timeline) clearPredictionState() {
	for _, e := range t.expected {
		if e.p.State() == StatePending {
			e.p.setState(StateSuperseded)
		}
	}
	t.expected = nil
	t.ClearCursor()
	t.lookBehind = nil
}

func (t *Timeline) queued(p Prediction) bool {
	for _, e := range t.expected {
		if e.p == p {
			return true
		}
	}
	return false
}

func (t *Timeline) write(s string) {
	if s == "" {
		return
	}
	_, _ = t.term.WriteString(s)
	t.style.Observe(s)
}

// violation turns speculation off for the rest of the session.
func (t *Timeline) violation(format string, args ...any) {
	logging.Error("typeahead: "+format+"; disabling predictions", args...)
	t.UndoAllPredictions()
	if t.show {
		t.flushInputBuffer(false)
	}
	t.show = false
	t.disabled = true
}
