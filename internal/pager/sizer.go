package pager

// Sizer decides how many page buttons fit in the paginator.
// viewportWidth is the client's width in pixels, or 0 when unknown.
type Sizer interface {
	Size(viewportWidth int) int
}

// Fixed always returns the same window size.
type Fixed int

// Size implements Sizer.
func (f Fixed) Size(int) int {
	return int(f)
}

// Auto sizes the window from the available width, assuming each button takes
// roughly ApproxButtonWidth pixels. Fallback is used when the viewport width
// is unknown.
type Auto struct {
	ApproxButtonWidth int
	Fallback          int
}

// Size implements Sizer. The result is ceil(viewportWidth / ApproxButtonWidth).
func (a Auto) Size(viewportWidth int) int {
	if viewportWidth <= 0 || a.ApproxButtonWidth <= 0 {
		return a.Fallback
	}
	n := viewportWidth / a.ApproxButtonWidth
	if viewportWidth%a.ApproxButtonWidth != 0 {
		n++
	}
	return n
}
