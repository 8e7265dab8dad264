package vterm

// scrollUp scrolls the region up by n lines. Lines leaving the top of the
// main screen are captured to scrollback.
func (v *VTerm) scrollUp(n int) {
	if n <= 0 {
		return
	}
	n = min(n, v.ScrollBottom-v.ScrollTop)

	if !v.altScreen && v.ScrollTop == 0 {
		for i := 0; i < n; i++ {
			v.Scrollback = append(v.Scrollback, CopyLine(v.Screen[i]))
		}
		v.trimScrollback()
	}

	for i := v.ScrollTop; i < v.ScrollBottom-n; i++ {
		v.Screen[i] = v.Screen[i+n]
	}
	for i := v.ScrollBottom - n; i < v.ScrollBottom; i++ {
		v.Screen[i] = v.blankLine()
	}
}

// scrollDown scrolls the region down by n lines (reverse scroll)
func (v *VTerm) scrollDown(n int) {
	if n <= 0 {
		return
	}
	n = min(n, v.ScrollBottom-v.ScrollTop)

	for i := v.ScrollBottom - 1; i >= v.ScrollTop+n; i-- {
		v.Screen[i] = v.Screen[i-n]
	}
	for i := v.ScrollTop; i < v.ScrollTop+n; i++ {
		v.Screen[i] = v.blankLine()
	}
}
