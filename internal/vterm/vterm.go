package vterm

import "github.com/andyrewlee/typeahead/internal/attr"

const MaxScrollback = 10000

// ResponseWriter is called when the terminal needs to answer a query (DSR, DA)
type ResponseWriter func([]byte)

// VTerm is a virtual terminal emulator with scrollback support. It mirrors
// what the user's terminal shows so predictions can be checked against it.
type VTerm struct {
	// Screen buffer (visible area)
	Screen [][]Cell

	// Scrollback buffer (oldest at index 0)
	Scrollback [][]Cell

	// Cursor position (0-indexed)
	CursorX, CursorY int

	// Dimensions
	Width, Height int

	// Alt screen mode (vim, etc.)
	altScreen    bool
	altScreenBuf [][]Cell
	altCursorX   int
	altCursorY   int

	// Scrolling region (for DECSTBM)
	ScrollTop    int
	ScrollBottom int
	OriginMode   bool

	// Attributes for new characters
	Pen attr.State

	// Saved cursor state (for DECSC/DECRC)
	SavedCursorX int
	SavedCursorY int
	SavedPen     attr.State

	CursorHidden bool
	Title        string

	parser *Parser

	responseWriter ResponseWriter
	titleHandler   func(string)
}

// New creates a new VTerm with the given dimensions
func New(width, height int) *VTerm {
	width, height = max(width, 1), max(height, 1)
	v := &VTerm{
		Width:        width,
		Height:       height,
		ScrollBottom: height,
		Pen:          attr.New(),
		SavedPen:     attr.New(),
	}
	v.Screen = v.makeScreen(width, height)
	v.Scrollback = make([][]Cell, 0, 64)
	v.parser = NewParser(v)
	return v
}

func (v *VTerm) makeScreen(width, height int) [][]Cell {
	screen := make([][]Cell, height)
	for i := range screen {
		screen[i] = MakeBlankLine(width)
	}
	return screen
}

// Resize handles terminal resize
func (v *VTerm) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == v.Width && height == v.Height {
		return
	}

	// If height shrinks, push the lines above the cursor into scrollback
	// until the cursor row fits
	if height < v.Height && !v.altScreen {
		overflow := v.CursorY + 1 - height
		for i := 0; i < overflow && len(v.Screen) > 0; i++ {
			v.Scrollback = append(v.Scrollback, v.Screen[0])
			v.Screen = v.Screen[1:]
			v.CursorY--
		}
		v.trimScrollback()
	}

	v.Screen = resizeScreen(v.Screen, width, height)
	if v.altScreenBuf != nil {
		v.altScreenBuf = resizeScreen(v.altScreenBuf, width, height)
	}

	v.Width = width
	v.Height = height

	v.ScrollTop = 0
	v.ScrollBottom = height
	v.clampCursor()
}

func resizeScreen(src [][]Cell, width, height int) [][]Cell {
	dst := make([][]Cell, height)
	for y := range dst {
		dst[y] = MakeBlankLine(width)
		if y < len(src) {
			copy(dst[y], src[y])
			normalizeLine(dst[y])
		}
	}
	return dst
}

// Write processes output bytes from the PTY. It never fails.
func (v *VTerm) Write(data []byte) (int, error) {
	v.parser.Parse(data)
	return len(data), nil
}

// SetResponseWriter sets the callback for terminal query responses
func (v *VTerm) SetResponseWriter(w ResponseWriter) {
	v.responseWriter = w
}

// SetTitleHandler is called with every window title set via OSC 0 or 2.
func (v *VTerm) SetTitleHandler(fn func(string)) {
	v.titleHandler = fn
}

func (v *VTerm) respond(data []byte) {
	if v.responseWriter != nil {
		v.responseWriter(data)
	}
}

func (v *VTerm) setTitle(title string) {
	v.Title = title
	if v.titleHandler != nil {
		v.titleHandler(title)
	}
}

// trimScrollback keeps scrollback under MaxScrollback
func (v *VTerm) trimScrollback() {
	if len(v.Scrollback) > MaxScrollback {
		v.Scrollback = v.Scrollback[len(v.Scrollback)-MaxScrollback:]
	}
}

// reset is RIS: everything but the dimensions goes back to its initial state.
func (v *VTerm) reset() {
	v.altScreen = false
	v.altScreenBuf = nil
	v.Screen = v.makeScreen(v.Width, v.Height)
	v.Scrollback = v.Scrollback[:0]
	v.CursorX, v.CursorY = 0, 0
	v.ScrollTop, v.ScrollBottom = 0, v.Height
	v.OriginMode = false
	v.CursorHidden = false
	v.Pen = attr.New()
	v.SavedCursorX, v.SavedCursorY = 0, 0
	v.SavedPen = attr.New()
}
