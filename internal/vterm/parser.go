package vterm

import (
	"strings"
	"unicode/utf8"
)

// Parser states
type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateCharset
	stateCSI
	stateCSIParam
	stateOSC
	stateOSCEscape
	stateDCS
)

// maxOSCLen bounds a runaway OSC string
const maxOSCLen = 4096

// Parser handles ANSI escape sequence parsing
type Parser struct {
	vt    *VTerm
	state parseState

	// CSI sequence building
	params          []int
	paramBuf        strings.Builder
	rawParams       strings.Builder
	intermediate    byte
	csiIntermediate byte

	// OSC sequence building
	oscBuf strings.Builder

	// UTF-8 decoding state
	utf8Buf [4]byte
	utf8Len int // expected length
	utf8Pos int // current position
}

// NewParser creates a new parser for the given VTerm
func NewParser(vt *VTerm) *Parser {
	return &Parser{
		vt:     vt,
		state:  stateGround,
		params: make([]int, 0, 16),
	}
}

// Parse processes bytes from PTY output
func (p *Parser) Parse(data []byte) {
	for _, b := range data {
		p.parseByte(b)
	}
}

func (p *Parser) parseByte(b byte) {
	switch p.state {
	case stateGround:
		p.parseGround(b)
	case stateEscape:
		p.parseEscape(b)
	case stateCharset:
		p.state = stateGround
	case stateCSI:
		p.parseCSI(b)
	case stateCSIParam:
		p.parseCSIParam(b)
	case stateOSC:
		p.parseOSC(b)
	case stateOSCEscape:
		if b == '\\' {
			p.executeOSC()
			p.state = stateGround
			return
		}
		p.state = stateEscape
		p.parseEscape(b)
	case stateDCS:
		p.parseDCS(b)
	}
}

func (p *Parser) parseGround(b byte) {
	// Handle UTF-8 continuation if we're in the middle of a sequence
	if p.utf8Len > 0 {
		if b >= 0x80 && b <= 0xBF {
			p.utf8Buf[p.utf8Pos] = b
			p.utf8Pos++
			if p.utf8Pos == p.utf8Len {
				r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
				p.vt.putChar(r)
				p.utf8Len = 0
				p.utf8Pos = 0
			}
			return
		}
		// Invalid continuation - reset and process this byte normally
		p.utf8Len = 0
		p.utf8Pos = 0
	}

	switch {
	case b == 0x1b: // ESC
		p.state = stateEscape
	case b == '\n', b == 0x0b, b == 0x0c: // LF, VT, FF
		p.vt.newline()
	case b == '\r': // CR
		p.vt.carriageReturn()
	case b == '\t': // Tab
		p.vt.tab()
	case b == '\b': // Backspace
		p.vt.backspace()
	case b == 0x07: // Bell
	case b == 0x0e, b == 0x0f: // SI/SO (charset switching)
	case b >= 0x20 && b < 0x7f: // Printable ASCII
		p.vt.putChar(rune(b))
	case b >= 0xC0 && b <= 0xDF: // 2-byte UTF-8 start
		p.startUTF8(b, 2)
	case b >= 0xE0 && b <= 0xEF: // 3-byte UTF-8 start
		p.startUTF8(b, 3)
	case b >= 0xF0 && b <= 0xF7: // 4-byte UTF-8 start
		p.startUTF8(b, 4)
	}
}

func (p *Parser) startUTF8(b byte, n int) {
	p.utf8Buf[0] = b
	p.utf8Len = n
	p.utf8Pos = 1
}

func (p *Parser) parseEscape(b byte) {
	p.state = stateGround
	switch b {
	case '[': // CSI
		p.state = stateCSI
		p.params = p.params[:0]
		p.paramBuf.Reset()
		p.rawParams.Reset()
		p.intermediate = 0
		p.csiIntermediate = 0
	case ']': // OSC
		p.state = stateOSC
		p.oscBuf.Reset()
	case 'P': // DCS
		p.state = stateDCS
	case '(', ')', '*', '+': // Charset designation
		p.state = stateCharset
	case '7': // DECSC - save cursor
		p.vt.saveCursor()
	case '8': // DECRC - restore cursor
		p.vt.restoreCursor()
	case 'M': // RI - reverse index
		p.vt.reverseIndex()
	case 'D': // IND - index
		p.vt.newline()
	case 'E': // NEL - next line
		p.vt.carriageReturn()
		p.vt.newline()
	case 'c': // RIS - reset
		p.vt.reset()
	case 0x1b:
		p.state = stateEscape
	}
}

func (p *Parser) parseOSC(b byte) {
	switch b {
	case 0x07: // BEL terminates
		p.executeOSC()
		p.state = stateGround
	case 0x1b: // ESC \ terminates
		p.state = stateOSCEscape
	default:
		if p.oscBuf.Len() < maxOSCLen {
			p.oscBuf.WriteByte(b)
		}
	}
}

// executeOSC handles window title changes; everything else is ignored.
func (p *Parser) executeOSC() {
	cmd, arg, ok := strings.Cut(p.oscBuf.String(), ";")
	p.oscBuf.Reset()
	if !ok {
		return
	}
	switch cmd {
	case "0", "2":
		p.vt.setTitle(arg)
	}
}

func (p *Parser) parseDCS(b byte) {
	// Stay in DCS until we see ESC \
	if b == 0x1b {
		p.state = stateEscape
	}
}
