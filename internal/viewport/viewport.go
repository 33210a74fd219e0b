// Package viewport maps a long ordered sequence onto a fixed number of display slots.
package viewport

// Window returns the half-open range [start, end) of the items that fit in size
// slots when selected is the focused index. The window is placed in proportion
// to the selection, like a scrollbar thumb, so selecting near the end of the
// list pushes the window to the end.
//
// The same placement is used for list rows and for the character columns of a
// text field that is wider than its box.
func Window(size, total, selected int) (start, end int) {
	if total <= 0 || size <= 0 {
		return 0, 0
	}
	if total <= size {
		return 0, total
	}
	if selected < 0 {
		selected = 0
	}
	if selected >= total {
		selected = total - 1
	}

	// floor((selected+1) / total * (total-size)), kept in integers so the
	// result is exact.
	start = (selected + 1) * (total - size) / total
	if start+size > total {
		start = total - size
	}
	if start < 0 {
		start = 0
	}
	return start, start + size
}
