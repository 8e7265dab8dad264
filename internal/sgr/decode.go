package sgr

import "github.com/andyrewlee/typeahead/internal/attr"

// Apply updates st with the SGR parameter list. Unknown codes are ignored and
// incomplete color sequences default the missing channels to 0.
func Apply(st *attr.State, params Params) {
	// Optimize a single SGR0.
	if len(params) == 1 && params[0].Sub == nil && params[0].Value == 0 {
		reset(st)
		return
	}

	for i := 0; i < len(params); i++ {
		p := params.N(i)
		switch {
		case p >= 30 && p <= 37: // fg color 8
			st.Fg &^= attr.CMMask | attr.PColorMask
			st.Fg |= attr.CMP16 | uint32(p-30)
		case p >= 40 && p <= 47: // bg color 8
			st.Bg &^= attr.CMMask | attr.PColorMask
			st.Bg |= attr.CMP16 | uint32(p-40)
		case p >= 90 && p <= 97: // fg color 16
			st.Fg &^= attr.CMMask | attr.PColorMask
			st.Fg |= attr.CMP16 | uint32(p-90) | 8
		case p >= 100 && p <= 107: // bg color 16
			st.Bg &^= attr.CMMask | attr.PColorMask
			st.Bg |= attr.CMP16 | uint32(p-100) | 8
		case p == 0:
			reset(st)
		case p == 1:
			st.Fg |= attr.FgBold
		case p == 2:
			st.Bg |= attr.BgDim
		case p == 3:
			st.Bg |= attr.BgItalic
		case p == 4:
			style := int(attr.UnderlineSingle)
			if sub := params.SubParams(i); len(sub) > 0 {
				style = sub[0]
			}
			setUnderline(st, style)
		case p == 5:
			st.Fg |= attr.FgBlink
		case p == 7:
			st.Fg |= attr.FgInverse
		case p == 8:
			st.Fg |= attr.FgInvisible
		case p == 21:
			setUnderline(st, int(attr.UnderlineDouble))
		case p == 22: // neither bold nor faint
			st.Fg &^= attr.FgBold
			st.Bg &^= attr.BgDim
		case p == 23:
			st.Bg &^= attr.BgItalic
		case p == 24:
			st.Fg &^= attr.FgUnderline
		case p == 25:
			st.Fg &^= attr.FgBlink
		case p == 27:
			st.Fg &^= attr.FgInverse
		case p == 28:
			st.Fg &^= attr.FgInvisible
		case p == 39:
			st.Fg &^= attr.CMMask | attr.RGBMask
			st.Fg |= attr.Default.Fg & (attr.PColorMask | attr.RGBMask)
		case p == 49:
			st.Bg &^= attr.CMMask | attr.RGBMask
			st.Bg |= attr.Default.Bg & (attr.PColorMask | attr.RGBMask)
		case p == 38 || p == 48 || p == 58:
			i += extractColor(params, i, st)
		case p == 59:
			ext := st.Extended().Clone()
			ext.UnderlineColor = -1
			st.Ext = ext
			st.UpdateExtended()
		}
	}
}

func reset(st *attr.State) {
	st.Fg = attr.Default.Fg
	st.Bg = attr.Default.Bg
	st.Ext = attr.Default.Ext
}

// extractColor reads an extended color starting at pos and returns how many
// following parameters it consumed.
//
// The values are normalized into [target, CM, ign, v1, v2, v3]:
//
//	RGB : [38/48/58, 2, ign, r, g, b]
//	P256: [38/48/58, 5, ign, v, ign, ign]
func extractColor(params Params, pos int, st *attr.State) int {
	// two spare slots: a colon run may overshoot the normalized width
	var accu [8]int
	accu[2] = -1
	const width = 6

	// alignment placeholder for sequences without a color space id
	cSpace := 0
	advance := 0

	for {
		accu[advance+cSpace] = params.N(pos + advance)
		if sub := params.SubParams(pos + advance); sub != nil {
			for i := 0; ; {
				if accu[1] == 5 {
					cSpace = 1
				}
				accu[advance+i+1+cSpace] = sub[i]
				i++
				if i >= len(sub) || i+advance+1+cSpace >= width {
					break
				}
			}
			break
		}
		// semicolon form: stop as soon as the color mode's arity is satisfied
		if (accu[1] == 5 && advance+cSpace >= 2) || (accu[1] == 2 && advance+cSpace >= 5) {
			break
		}
		if accu[1] != 0 {
			cSpace = 1
		}
		advance++
		if advance+pos >= len(params) || advance+cSpace >= width {
			break
		}
	}

	for i := 2; i < width; i++ {
		if accu[i] == -1 {
			accu[i] = 0
		}
	}

	switch accu[0] {
	case 38:
		st.Fg = updateColor(st.Fg, accu[1], accu[3], accu[4], accu[5])
	case 48:
		st.Bg = updateColor(st.Bg, accu[1], accu[3], accu[4], accu[5])
	case 58:
		ext := st.Extended().Clone()
		base := uint32(0)
		if ext.UnderlineColor != -1 {
			base = uint32(ext.UnderlineColor)
		}
		if accu[1] == 2 || accu[1] == 5 {
			ext.UnderlineColor = int32(updateColor(base, accu[1], accu[3], accu[4], accu[5]))
		}
		st.Ext = ext
		st.UpdateExtended()
	}
	return advance
}

func updateColor(color uint32, mode, c1, c2, c3 int) uint32 {
	switch mode {
	case 2:
		color |= attr.CMRGB
		color &^= attr.RGBMask
		color |= attr.RGB(c1, c2, c3)
	case 5:
		color &^= attr.CMMask | attr.PColorMask
		color |= attr.CMP256 | uint32(c1&0xFF)
	}
	return color
}

// setUnderline clones the shared extended record before changing it: other
// cells may hold the same pointer.
func setUnderline(st *attr.State, style int) {
	ext := st.Extended().Clone()

	// default to single underline
	if style < 0 || style > int(attr.UnderlineDashed) {
		style = int(attr.UnderlineSingle)
	}
	ext.UnderlineStyle = attr.UnderlineStyle(style)
	st.Ext = ext
	st.Fg |= attr.FgUnderline

	// 0 turns the underline off
	if style == 0 {
		st.Fg &^= attr.FgUnderline
	}
	st.UpdateExtended()
}
