package attr

// Bit layout shared by the Fg and Bg words.
const (
	// bits 0..7: blue in RGB, color index in P256 and P16
	BlueMask   uint32 = 0xFF
	BlueShift         = 0
	PColorMask uint32 = 0xFF

	// bits 8..15: green in RGB
	GreenMask  uint32 = 0xFF00
	GreenShift        = 8

	// bits 16..23: red in RGB
	RedMask  uint32 = 0xFF0000
	RedShift        = 16

	// bits 24..25: color mode
	CMMask    uint32 = 0x3000000
	CMDefault uint32 = 0
	CMP16     uint32 = 0x1000000
	CMP256    uint32 = 0x2000000
	CMRGB     uint32 = 0x3000000

	// bits 0..23: RGB room
	RGBMask uint32 = 0xFFFFFF
)

// Foreground word flags (bits 26..30).
const (
	FgInverse   uint32 = 0x4000000
	FgBold      uint32 = 0x8000000
	FgUnderline uint32 = 0x10000000
	FgBlink     uint32 = 0x20000000
	FgInvisible uint32 = 0x40000000
)

// Background word flags (bits 26..28).
const (
	BgItalic      uint32 = 0x4000000
	BgDim         uint32 = 0x8000000
	BgHasExtended uint32 = 0x10000000
)

// State is the packed attribute value of one cell.
//
// Ext is shared between cells that carry the same extended attributes. It must
// be treated as immutable: callers clone it before changing anything.
type State struct {
	Fg  uint32
	Bg  uint32
	Ext *ExtendedAttrs
}

// defaultExt is the extended record referenced by Default. Never mutated.
var defaultExt = &ExtendedAttrs{UnderlineStyle: UnderlineNone, UnderlineColor: -1}

// Default is the process-wide default attribute state.
var Default = State{Ext: defaultExt}

// New returns a state equal to Default.
func New() State {
	return Default
}

// Clone returns a deep copy, including a private ExtendedAttrs.
func (s State) Clone() State {
	return State{Fg: s.Fg, Bg: s.Bg, Ext: s.ext().Clone()}
}

// Equal compares the packed words and, when present, the extended records.
func (s State) Equal(o State) bool {
	if s.Fg != o.Fg || s.Bg != o.Bg {
		return false
	}
	if s.Bg&BgHasExtended == 0 {
		return true
	}
	return *s.ext() == *o.ext()
}

func (s State) ext() *ExtendedAttrs {
	if s.Ext == nil {
		return defaultExt
	}
	return s.Ext
}

// Extended returns the extended record, never nil.
func (s State) Extended() *ExtendedAttrs {
	return s.ext()
}

func (s State) IsInverse() bool   { return s.Fg&FgInverse != 0 }
func (s State) IsBold() bool      { return s.Fg&FgBold != 0 }
func (s State) IsUnderline() bool { return s.Fg&FgUnderline != 0 }
func (s State) IsBlink() bool     { return s.Fg&FgBlink != 0 }
func (s State) IsInvisible() bool { return s.Fg&FgInvisible != 0 }
func (s State) IsItalic() bool    { return s.Bg&BgItalic != 0 }
func (s State) IsDim() bool       { return s.Bg&BgDim != 0 }

func (s State) FgColorMode() uint32 { return s.Fg & CMMask }
func (s State) BgColorMode() uint32 { return s.Bg & CMMask }

func (s State) IsFgRGB() bool     { return s.Fg&CMMask == CMRGB }
func (s State) IsBgRGB() bool     { return s.Bg&CMMask == CMRGB }
func (s State) IsFgPalette() bool { return isPalette(s.Fg) }
func (s State) IsBgPalette() bool { return isPalette(s.Bg) }
func (s State) IsFgDefault() bool { return s.Fg&CMMask == CMDefault }
func (s State) IsBgDefault() bool { return s.Bg&CMMask == CMDefault }

// IsAttributeDefault reports whether both words are zero.
func (s State) IsAttributeDefault() bool {
	return s.Fg == 0 && s.Bg == 0
}

// FgColor returns the palette index or RGB value, or -1 in default mode.
func (s State) FgColor() int32 { return colorOf(s.Fg) }

// BgColor returns the palette index or RGB value, or -1 in default mode.
func (s State) BgColor() int32 { return colorOf(s.Bg) }

// HasExtended reports whether the extended marker bit is set.
func (s State) HasExtended() bool {
	return s.Bg&BgHasExtended != 0
}

// UpdateExtended syncs the extended marker bit with the record's emptiness.
func (s *State) UpdateExtended() {
	if s.ext().IsEmpty() {
		s.Bg &^= BgHasExtended
	} else {
		s.Bg |= BgHasExtended
	}
}

// UnderlineStyle returns the effective underline style.
func (s State) UnderlineStyle() UnderlineStyle {
	if s.Fg&FgUnderline == 0 {
		return UnderlineNone
	}
	if s.HasExtended() {
		return s.ext().UnderlineStyle
	}
	return UnderlineSingle
}

func (s State) hasUnderlineColor() bool {
	return s.HasExtended() && s.ext().UnderlineColor != -1
}

// UnderlineColor returns the override color, falling back to the foreground.
func (s State) UnderlineColor() int32 {
	if s.hasUnderlineColor() {
		c := uint32(s.ext().UnderlineColor)
		if c&CMMask != CMDefault {
			return colorOf(c)
		}
	}
	return s.FgColor()
}

// UnderlineColorMode returns the override color mode, falling back to the foreground.
func (s State) UnderlineColorMode() uint32 {
	if s.hasUnderlineColor() {
		return uint32(s.ext().UnderlineColor) & CMMask
	}
	return s.FgColorMode()
}

func (s State) IsUnderlineColorRGB() bool     { return s.UnderlineColorMode() == CMRGB }
func (s State) IsUnderlineColorDefault() bool { return s.UnderlineColorMode() == CMDefault }
func (s State) IsUnderlineColorPalette() bool {
	m := s.UnderlineColorMode()
	return m == CMP16 || m == CMP256
}

// RGB packs three channels into the 24-bit color room.
func RGB(r, g, b int) uint32 {
	return uint32(r&0xFF)<<RedShift | uint32(g&0xFF)<<GreenShift | uint32(b&0xFF)
}

// SplitRGB unpacks the 24-bit color room.
func SplitRGB(c uint32) (r, g, b int) {
	return int(c&RedMask) >> RedShift, int(c&GreenMask) >> GreenShift, int(c & BlueMask)
}

func isPalette(word uint32) bool {
	m := word & CMMask
	return m == CMP16 || m == CMP256
}

func colorOf(word uint32) int32 {
	switch word & CMMask {
	case CMP16, CMP256:
		return int32(word & PColorMask)
	case CMRGB:
		return int32(word & RGBMask)
	default:
		return -1
	}
}
