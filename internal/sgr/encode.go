package sgr

import (
	"strconv"
	"strings"

	"github.com/andyrewlee/typeahead/internal/attr"
)

// Args re-encodes a state as SGR arguments. The encoding always starts with
// a reset, so it selects st from any prior state; a default state is [0].
// The underline is encoded as a plain 4; its style and color are not.
func Args(st attr.State) []int {
	if st.IsAttributeDefault() {
		return []int{0}
	}

	args := make([]int, 1, 16)
	if st.IsBold() {
		args = append(args, 1)
	}
	if st.IsDim() {
		args = append(args, 2)
	}
	if st.IsItalic() {
		args = append(args, 3)
	}
	if st.IsUnderline() {
		args = append(args, 4)
	}
	if st.IsBlink() {
		args = append(args, 5)
	}
	if st.IsInverse() {
		args = append(args, 7)
	}
	if st.IsInvisible() {
		args = append(args, 8)
	}

	args = appendColor(args, st.Fg, 30)
	args = appendColor(args, st.Bg, 40)
	return args
}

// FgArgs returns the arguments that select st's foreground color.
func FgArgs(st attr.State) []int {
	return appendColor(nil, st.Fg, 30)
}

// base is 30 for the foreground and 40 for the background.
func appendColor(args []int, word uint32, base int) []int {
	idx := int(word & attr.PColorMask)
	switch word & attr.CMMask {
	case attr.CMRGB:
		r, g, b := attr.SplitRGB(word & attr.RGBMask)
		return append(args, base+8, 2, r, g, b)
	case attr.CMP16:
		if idx < 8 {
			return append(args, base+idx)
		}
		return append(args, base+60+idx-8)
	case attr.CMP256:
		return append(args, base+8, 5, idx)
	default:
		return append(args, base+9)
	}
}

// Sequence renders the state as a single CSI ... m sequence.
func Sequence(st attr.State) string {
	return Compile(Args(st))
}

// Compile renders SGR arguments as a CSI ... m sequence.
func Compile(args []int) string {
	var b strings.Builder
	b.Grow(4 + len(args)*4)
	b.WriteString("\x1b[")
	for i, a := range args {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(a))
	}
	b.WriteByte('m')
	return b.String()
}
