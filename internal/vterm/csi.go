package vterm

import (
	"strconv"

	"github.com/andyrewlee/typeahead/internal/sgr"
)

func (p *Parser) parseCSI(b byte) {
	switch b {
	case '?', '>', '!', '<', '=':
		p.intermediate = b
		p.state = stateCSIParam
	default:
		p.state = stateCSIParam
		p.parseCSIParam(b)
	}
}

func (p *Parser) parseCSIParam(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.paramBuf.WriteByte(b)
		p.rawParams.WriteByte(b)
	case b == ';':
		p.pushParam()
		p.rawParams.WriteByte(b)
	case b == ':': // Sub-parameter separator, only meaningful to SGR
		p.paramBuf.WriteByte(b)
		p.rawParams.WriteByte(b)
	case b >= 0x20 && b <= 0x2f: // Intermediate bytes (e.g. '$')
		p.csiIntermediate = b
	case b >= 0x40 && b <= 0x7e: // Final byte
		p.pushParam()
		p.executeCSI(b)
		p.state = stateGround
	case b == 0x1b: // Escape interrupts
		p.state = stateEscape
	default:
		p.state = stateGround
	}
}

// pushParam ends one parameter. Sub-parameters are dropped here; SGR reads
// them from the raw parameter string instead.
func (p *Parser) pushParam() {
	s := p.paramBuf.String()
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			s = s[:i]
			break
		}
	}
	val, _ := strconv.Atoi(s)
	p.params = append(p.params, val)
	p.paramBuf.Reset()
}

func (p *Parser) getParam(idx, def int) int {
	if idx < len(p.params) && p.params[idx] != 0 {
		return p.params[idx]
	}
	return def
}

func (p *Parser) executeCSI(final byte) {
	if p.intermediate == '?' || p.intermediate == 0 {
		switch final {
		case 'h': // SM/DECSET - set mode
			p.executeMode(true)
			return
		case 'l': // RM/DECRST - reset mode
			p.executeMode(false)
			return
		case 'n': // DSR - device status report
			p.executeDSR()
			return
		}
	}
	if final == 'c' { // DA - device attributes
		p.executeDA()
		return
	}
	if p.intermediate != 0 || p.csiIntermediate != 0 {
		return
	}

	switch final {
	case 'A': // CUU - cursor up
		p.vt.moveCursor(-p.getParam(0, 1), 0)
	case 'B', 'e': // CUD, VPR - cursor down
		p.vt.moveCursor(p.getParam(0, 1), 0)
	case 'C', 'a': // CUF, HPR - cursor forward
		p.vt.moveCursor(0, p.getParam(0, 1))
	case 'D': // CUB - cursor back
		p.vt.moveCursor(0, -p.getParam(0, 1))
	case 'E': // CNL - cursor next line
		p.vt.CursorX = 0
		p.vt.moveCursor(p.getParam(0, 1), 0)
	case 'F': // CPL - cursor previous line
		p.vt.CursorX = 0
		p.vt.moveCursor(-p.getParam(0, 1), 0)
	case 'G', '`': // CHA, HPA - cursor horizontal absolute
		p.vt.CursorX = p.getParam(0, 1) - 1
		p.vt.clampCursor()
	case 'H', 'f': // CUP - cursor position
		p.vt.setCursorPos(p.getParam(0, 1), p.getParam(1, 1))
	case 'J': // ED - erase display
		p.vt.eraseDisplay(p.getParam(0, 0))
	case 'K': // EL - erase line
		p.vt.eraseLine(p.getParam(0, 0))
	case 'L': // IL - insert lines
		p.vt.insertLines(p.getParam(0, 1))
	case 'M': // DL - delete lines
		p.vt.deleteLines(p.getParam(0, 1))
	case 'P': // DCH - delete chars
		p.vt.deleteChars(p.getParam(0, 1))
	case 'S': // SU - scroll up
		p.vt.scrollUp(p.getParam(0, 1))
	case 'T': // SD - scroll down
		p.vt.scrollDown(p.getParam(0, 1))
	case 'X': // ECH - erase chars
		p.vt.eraseChars(p.getParam(0, 1))
	case '@': // ICH - insert chars
		p.vt.insertChars(p.getParam(0, 1))
	case 'd': // VPA - vertical position absolute
		row := p.getParam(0, 1)
		if p.vt.OriginMode {
			p.vt.CursorY = p.vt.ScrollTop + row - 1
		} else {
			p.vt.CursorY = row - 1
		}
		p.vt.clampCursor()
	case 'm': // SGR - select graphic rendition
		sgr.Apply(&p.vt.Pen, sgr.ParseParams(p.rawParams.String()))
	case 'r': // DECSTBM - set scrolling region
		p.vt.setScrollRegion(p.getParam(0, 1), p.getParam(1, p.vt.Height))
	case 's': // SCP - save cursor position
		p.vt.saveCursor()
	case 'u': // RCP - restore cursor position
		p.vt.restoreCursor()
	}
}
