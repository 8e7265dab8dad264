package sgr

import "github.com/charmbracelet/x/ansi"

// Param is one CSI parameter. Sub is non-nil when the parameter was written in
// the colon-delimited form; it holds the values after the first one.
type Param struct {
	Value int
	Sub   []int
}

// Params is an ordered CSI parameter list.
type Params []Param

// Ints builds a list of bare parameters.
func Ints(values ...int) Params {
	out := make(Params, len(values))
	for i, v := range values {
		out[i] = Param{Value: v}
	}
	return out
}

// N returns the leading value of parameter i, or 0 when out of range.
func (p Params) N(i int) int {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i].Value
}

// HasSub reports whether parameter i was written with sub-parameters.
func (p Params) HasSub(i int) bool {
	return i >= 0 && i < len(p) && p[i].Sub != nil
}

// SubParams returns the sub-parameters of parameter i.
func (p Params) SubParams(i int) []int {
	if !p.HasSub(i) {
		return nil
	}
	return p[i].Sub
}

// FromANSI folds x/ansi parser parameters into a Params list. A parameter
// flagged HasMore is followed by its sub-parameters. Missing values become 0.
func FromANSI(params ansi.Params) Params {
	out := make(Params, 0, len(params))
	for i := 0; i < len(params); i++ {
		v, more, _ := params.Param(i, 0)
		p := Param{Value: v}
		for more && i+1 < len(params) {
			i++
			var sub int
			sub, more, _ = params.Param(i, 0)
			p.Sub = append(p.Sub, sub)
		}
		if more && p.Sub == nil {
			// trailing colon with nothing after it
			p.Sub = []int{0}
		}
		out = append(out, p)
	}
	return out
}

// ParseParams parses the textual parameter grammar of an SGR sequence, e.g.
// "1;38:2::255:128:0". An empty string yields a single 0.
func ParseParams(s string) Params {
	out := Ints(0)
	Scan("\x1b["+s+"m", func(p Params) {
		out = p
	})
	return out
}
