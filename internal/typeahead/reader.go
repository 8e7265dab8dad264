package typeahead

import "regexp"

// MatchResult is the outcome of matching a prediction against process output.
type MatchResult int

const (
	// MatchSuccess means the prediction consumed bytes and is confirmed.
	MatchSuccess MatchResult = iota
	// MatchFailure means the output contradicts the prediction.
	MatchFailure
	// MatchBuffer means the output ended before a decision could be made.
	MatchBuffer
)

func (m MatchResult) String() string {
	switch m {
	case MatchSuccess:
		return "success"
	case MatchFailure:
		return "failure"
	case MatchBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// reader walks a chunk of process output or user input. Every eat method
// either advances past what it matched or leaves the index untouched.
type reader struct {
	input string
	index int
}

func newReader(input string) *reader {
	return &reader{input: input}
}

func (r *reader) remaining() int { return len(r.input) - r.index }

func (r *reader) eof() bool { return r.index >= len(r.input) }

func (r *reader) rest() string { return r.input[r.index:] }

func (r *reader) eatChar(c byte) bool {
	if r.eof() || r.input[r.index] != c {
		return false
	}
	r.index++
	return true
}

func (r *reader) eatStr(s string) bool {
	if len(r.input)-r.index < len(s) || r.input[r.index:r.index+len(s)] != s {
		return false
	}
	r.index += len(s)
	return true
}

// eatGradually matches s byte by byte. Running out of input after at least
// one matched byte yields MatchBuffer; the consumed prefix stays consumed so
// the caller can stash it for the next chunk.
func (r *reader) eatGradually(s string) MatchResult {
	prev := r.index
	for i := 0; i < len(s); i++ {
		if i > 0 && r.eof() {
			return MatchBuffer
		}
		if !r.eatChar(s[i]) {
			r.index = prev
			return MatchFailure
		}
	}
	return MatchSuccess
}

// eatRe matches an anchored expression at the current index and returns the
// submatches, or nil.
func (r *reader) eatRe(re *regexp.Regexp) []string {
	m := re.FindStringSubmatch(r.rest())
	if m == nil {
		return nil
	}
	r.index += len(m[0])
	return m
}

// eatRange consumes one byte in [lo, hi].
func (r *reader) eatRange(lo, hi byte) (byte, bool) {
	if r.eof() {
		return 0, false
	}
	c := r.input[r.index]
	if c < lo || c > hi {
		return 0, false
	}
	r.index++
	return c, true
}
