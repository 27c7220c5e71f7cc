package ui

// FocusRing constrains Tab/Shift+Tab cycling to the focusable elements inside
// an open drawer. Next on the last element wraps to the first, Prev on the
// first wraps to the last, and with no elements every move is suppressed.
type FocusRing struct {
	ids   []string
	index int
}

// NewFocusRing creates a ring over the given element ids.
func NewFocusRing(ids []string) *FocusRing {
	return &FocusRing{ids: append([]string(nil), ids...)}
}

// SetItems replaces the ring's elements, keeping the current focus if its id
// survives the replacement.
func (r *FocusRing) SetItems(ids []string) {
	current := r.Current()
	r.ids = append(r.ids[:0:0], ids...)
	r.index = 0
	for i, id := range r.ids {
		if id == current {
			r.index = i
			return
		}
	}
}

// Len returns the number of focusable elements.
func (r *FocusRing) Len() int {
	return len(r.ids)
}

// Current returns the focused element id, or "" when the ring is empty.
func (r *FocusRing) Current() string {
	if len(r.ids) == 0 {
		return ""
	}
	return r.ids[r.index]
}

// First returns the first focusable element id, or "".
func (r *FocusRing) First() string {
	if len(r.ids) == 0 {
		return ""
	}
	return r.ids[0]
}

// Contains reports whether an element with the given id is in the ring.
func (r *FocusRing) Contains(id string) bool {
	for _, candidate := range r.ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Focus moves focus to the element with the given id if present.
func (r *FocusRing) Focus(id string) bool {
	for i, candidate := range r.ids {
		if candidate == id {
			r.index = i
			return true
		}
	}
	return false
}

// Next advances focus, wrapping from the last element to the first. Returns
// "" when the ring is empty (the keypress is suppressed entirely).
func (r *FocusRing) Next() string {
	if len(r.ids) == 0 {
		return ""
	}
	r.index = (r.index + 1) % len(r.ids)
	return r.ids[r.index]
}

// Prev moves focus backwards, wrapping from the first element to the last.
func (r *FocusRing) Prev() string {
	if len(r.ids) == 0 {
		return ""
	}
	r.index = (r.index - 1 + len(r.ids)) % len(r.ids)
	return r.ids[r.index]
}
