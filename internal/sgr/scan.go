package sgr

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Scan calls fn with the parameters of every SGR sequence in data, in order.
// Private-marker sequences such as CSI > 4 ; 1 m are not SGR and are skipped.
// A sequence without parameters is reported as a lone 0.
func Scan(data string, fn func(Params)) {
	if !strings.Contains(data, "\x1b[") {
		return
	}
	p := ansi.GetParser()
	defer ansi.PutParser(p)

	var state byte
	for len(data) > 0 {
		seq, width, n, newState := ansi.DecodeSequence(data, state, p)
		if n == 0 {
			break
		}
		if width == 0 && strings.HasPrefix(seq, "\x1b[") {
			cmd := ansi.Cmd(p.Command())
			if cmd.Final() == 'm' && cmd.Prefix() == 0 && cmd.Intermediate() == 0 {
				params := FromANSI(p.Params())
				if len(params) == 0 {
					params = Ints(0)
				}
				fn(params)
			}
		}
		data = data[n:]
		state = newState
	}
}
