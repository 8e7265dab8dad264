package typeahead

import (
	"strconv"
	"strings"

	"github.com/andyrewlee/typeahead/internal/attr"
	"github.com/andyrewlee/typeahead/internal/sgr"
)

// Highlight style names accepted by NewStyle. Anything else is parsed as a
// #rrggbb foreground color.
const (
	StyleBold       = "bold"
	StyleDim        = "dim"
	StyleItalic     = "italic"
	StyleUnderlined = "underlined"
	StyleInverted   = "inverted"
)

// Style is the highlight that predicted characters are drawn with.
//
// While tracking, it watches the SGR sequences that reach the view so that
// Undo restores what the process had set rather than blindly turning the
// attribute off. Highlight sequences the timeline wrote itself are announced
// with ExpectIncomingStyle and skipped.
type Style struct {
	name      string
	applyArgs []int
	undoArgs  []int
	apply     string
	undo      string

	// two per announced prediction: its apply and its undo
	expected int
	pen      attr.State
}

// NewStyle builds a highlight from a configured name.
func NewStyle(name string) *Style {
	s := &Style{pen: attr.New()}
	s.Update(name)
	return s
}

// Update switches to another highlight.
func (s *Style) Update(name string) {
	s.name = name
	s.applyArgs = highlightArgs(name)
	s.apply = sgr.Compile(s.applyArgs)
	s.recompute()
}

// Name returns the configured highlight name.
func (s *Style) Name() string { return s.name }

// Apply returns the sequence that turns the highlight on.
func (s *Style) Apply() string { return s.apply }

// Undo returns the sequence that restores the process's style.
func (s *Style) Undo() string { return s.undo }

// ExpectIncomingStyle announces n predictions whose highlight sequences
// are about to be observed.
func (s *Style) ExpectIncomingStyle(n int) {
	s.expected += n * 2
}

// Track restarts tracking from the process's current attributes.
func (s *Style) Track(pen attr.State) {
	s.expected = 0
	s.pen = pen
	s.recompute()
}

// Observe feeds everything written to the view.
func (s *Style) Observe(data string) {
	sgr.Scan(data, s.observeSGR)
}

func (s *Style) observeSGR(params sgr.Params) {
	var rest sgr.Params
	for i := 0; i < len(params); {
		if s.expected > 0 {
			if hasPrefixAt(params, i, s.undoArgs) {
				s.expected--
				i += len(s.undoArgs)
				continue
			}
			if hasPrefixAt(params, i, s.applyArgs) {
				s.expected--
				i += len(s.applyArgs)
				continue
			}
		}
		n := 1 + colorArity(params, i)
		if i+n > len(params) {
			n = len(params) - i
		}
		rest = append(rest, params[i:i+n]...)
		i += n
	}
	if len(rest) == 0 {
		return
	}
	sgr.Apply(&s.pen, rest)
	s.recompute()
}

// recompute derives Undo from what the process has set for the attribute
// the highlight touches.
func (s *Style) recompute() {
	s.undoArgs = undoArgs(s.applyArgs, s.pen)
	s.undo = sgr.Compile(s.undoArgs)
}

func highlightArgs(name string) []int {
	switch name {
	case StyleBold:
		return []int{1}
	case StyleDim:
		return []int{2}
	case StyleItalic:
		return []int{3}
	case StyleUnderlined:
		return []int{4}
	case StyleInverted:
		return []int{7}
	}
	r, g, b, ok := parseHexColor(name)
	if !ok {
		r, g, b = 255, 0, 0
	}
	return []int{38, 2, r, g, b}
}

func undoArgs(apply []int, pen attr.State) []int {
	switch apply[0] {
	case 1:
		if pen.IsBold() {
			return []int{1}
		}
		if pen.IsDim() {
			return []int{22, 2}
		}
		return []int{22}
	case 2:
		if pen.IsDim() {
			return []int{2}
		}
		if pen.IsBold() {
			return []int{22, 1}
		}
		return []int{22}
	case 3:
		if pen.IsItalic() {
			return []int{3}
		}
		return []int{23}
	case 4:
		if pen.IsUnderline() {
			return []int{4}
		}
		return []int{24}
	case 7:
		if pen.IsInverse() {
			return []int{7}
		}
		return []int{27}
	default:
		return sgr.FgArgs(pen)
	}
}

func parseHexColor(s string) (r, g, b int, ok bool) {
	if !strings.HasPrefix(s, "#") {
		return 0, 0, 0, false
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

func hasPrefixAt(params sgr.Params, i int, prefix []int) bool {
	if len(prefix) == 0 || i+len(prefix) > len(params) {
		return false
	}
	for j, v := range prefix {
		if params.HasSub(i+j) || params.N(i+j) != v {
			return false
		}
	}
	return true
}

// colorArity is how many parameters after i belong to a semicolon-form
// extended color starting at i.
func colorArity(params sgr.Params, i int) int {
	switch params.N(i) {
	case 38, 48, 58:
	default:
		return 0
	}
	if params.HasSub(i) {
		return 0
	}
	switch params.N(i + 1) {
	case 5:
		return 2
	case 2:
		return 4
	}
	return 0
}
