package vterm

func (v *VTerm) clampCursor() {
	v.CursorX = max(0, min(v.CursorX, v.Width-1))

	if v.OriginMode {
		v.CursorY = max(v.ScrollTop, min(v.CursorY, v.ScrollBottom-1))
		return
	}
	v.CursorY = max(0, min(v.CursorY, v.Height-1))
}

// setCursorPos sets cursor position (1-indexed input, converts to 0-indexed)
func (v *VTerm) setCursorPos(row, col int) {
	v.CursorY = row - 1
	if v.OriginMode {
		v.CursorY += v.ScrollTop
	}
	v.CursorX = col - 1
	v.clampCursor()
}

// moveCursor moves cursor relative to current position
func (v *VTerm) moveCursor(dy, dx int) {
	v.CursorX = min(v.CursorX, v.Width-1) + dx
	v.CursorY += dy
	v.clampCursor()
}

// setScrollRegion sets the scrolling region (1-indexed input)
func (v *VTerm) setScrollRegion(top, bottom int) {
	t := max(top-1, 0)
	b := min(bottom, v.Height)
	if t >= b-1 {
		return
	}

	v.ScrollTop = t
	v.ScrollBottom = b
	v.CursorX = 0
	if v.OriginMode {
		v.CursorY = v.ScrollTop
	} else {
		v.CursorY = 0
	}
}

// enterAltScreen switches to alternate screen buffer
func (v *VTerm) enterAltScreen(saveCursor bool) {
	if v.altScreen {
		return
	}
	if saveCursor {
		v.saveCursor()
	}
	v.altScreen = true
	v.altCursorX = v.CursorX
	v.altCursorY = v.CursorY
	v.altScreenBuf = v.Screen
	v.Screen = v.makeScreen(v.Width, v.Height)
}

// exitAltScreen returns to main screen buffer
func (v *VTerm) exitAltScreen(restoreCursor bool) {
	if !v.altScreen {
		return
	}
	v.altScreen = false
	v.Screen = v.altScreenBuf
	v.altScreenBuf = nil
	v.CursorX = v.altCursorX
	v.CursorY = v.altCursorY
	if restoreCursor {
		v.restoreCursor()
	}
	v.clampCursor()
}

// saveCursor saves cursor position and attributes
func (v *VTerm) saveCursor() {
	v.SavedCursorX = v.CursorX
	v.SavedCursorY = v.CursorY
	v.SavedPen = v.Pen
}

// restoreCursor restores cursor position and attributes
func (v *VTerm) restoreCursor() {
	v.CursorX = v.SavedCursorX
	v.CursorY = v.SavedCursorY
	v.Pen = v.SavedPen
	v.clampCursor()
}
