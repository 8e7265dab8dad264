package attr

// UnderlineStyle selects how an underline is drawn.
type UnderlineStyle int

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

func (u UnderlineStyle) String() string {
	switch u {
	case UnderlineNone:
		return "none"
	case UnderlineSingle:
		return "single"
	case UnderlineDouble:
		return "double"
	case UnderlineCurly:
		return "curly"
	case UnderlineDotted:
		return "dotted"
	case UnderlineDashed:
		return "dashed"
	default:
		return "unknown"
	}
}

// ExtendedAttrs holds the attributes that do not fit the packed words.
type ExtendedAttrs struct {
	UnderlineStyle UnderlineStyle
	// UnderlineColor is a packed color word (mode | value); -1 follows the foreground.
	UnderlineColor int32
}

// NewExtendedAttrs returns an empty record.
func NewExtendedAttrs() *ExtendedAttrs {
	return &ExtendedAttrs{UnderlineStyle: UnderlineNone, UnderlineColor: -1}
}

// Clone returns a private copy.
func (e *ExtendedAttrs) Clone() *ExtendedAttrs {
	if e == nil {
		return NewExtendedAttrs()
	}
	c := *e
	return &c
}

// IsEmpty reports whether the record carries nothing worth storing per cell.
func (e *ExtendedAttrs) IsEmpty() bool {
	return e == nil || e.UnderlineStyle == UnderlineNone
}
