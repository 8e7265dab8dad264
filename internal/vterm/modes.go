package vterm

import "fmt"

func (p *Parser) executeDSR() {
	if len(p.params) == 0 {
		return
	}

	switch p.params[0] {
	case 5: // Status report - respond "OK"
		p.vt.respond([]byte("\x1b[0n"))
	case 6: // Cursor position report, 1-indexed
		row := p.vt.CursorY + 1
		if p.vt.OriginMode {
			row -= p.vt.ScrollTop
		}
		col := min(p.vt.CursorX, p.vt.Width-1) + 1
		prefix := ""
		if p.intermediate == '?' {
			prefix = "?"
		}
		p.vt.respond(fmt.Appendf(nil, "\x1b[%s%d;%dR", prefix, row, col))
	}
}

func (p *Parser) executeDA() {
	switch p.intermediate {
	case '>': // Secondary DA - report VT220
		p.vt.respond([]byte("\x1b[>1;10;0c"))
	case 0: // Primary DA - report VT220 with ANSI color
		p.vt.respond([]byte("\x1b[?62;22c"))
	}
}

func (p *Parser) executeMode(set bool) {
	if p.intermediate != '?' {
		return
	}

	for _, param := range p.params {
		switch param {
		case 6: // DECOM - origin mode
			p.vt.OriginMode = set
			p.vt.CursorX = 0
			if set {
				p.vt.CursorY = p.vt.ScrollTop
			} else {
				p.vt.CursorY = 0
			}
			p.vt.clampCursor()
		case 25: // DECTCEM - cursor visible
			p.vt.CursorHidden = !set
		case 47, 1047: // Alternate screen buffer
			if set {
				p.vt.enterAltScreen(false)
			} else {
				p.vt.exitAltScreen(false)
			}
		case 1049: // Alternate screen buffer, saving the cursor
			if set {
				p.vt.enterAltScreen(true)
			} else {
				p.vt.exitAltScreen(true)
			}
		}
	}
}
