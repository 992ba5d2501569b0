package mirror

import "errors"

var (
	// ErrCloseRoot is returned when closing the view would pop the root window
	ErrCloseRoot = errors.New("cannot close root window")
	// ErrUnknownWindow is returned for a window id absent from the model
	ErrUnknownWindow = errors.New("unknown window")
	// ErrNoModel is returned by view commands before a model is loaded
	ErrNoModel = errors.New("no model loaded")
)

// ViewStack lists window ids root first; the last entry is visible.
// Like Registry it is never modified in place.
type ViewStack []string

// Change replaces the stack with a single root window
func (v ViewStack) Change(windowID string) ViewStack {
	return ViewStack{windowID}
}

// Push opens windowID as a popup above the current top
func (v ViewStack) Push(windowID string) ViewStack {
	out := make(ViewStack, len(v), len(v)+1)
	copy(out, v)
	return append(out, windowID)
}

// Pop closes the top popup
func (v ViewStack) Pop() (ViewStack, error) {
	if len(v) <= 1 {
		return v, ErrCloseRoot
	}
	out := make(ViewStack, len(v)-1)
	copy(out, v)
	return out, nil
}

// Root returns the bottom window
func (v ViewStack) Root() (string, bool) {
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Top returns the visible window
func (v ViewStack) Top() (string, bool) {
	if len(v) == 0 {
		return "", false
	}
	return v[len(v)-1], true
}

// IsPopup reports whether a popup is open
func (v ViewStack) IsPopup() bool {
	return len(v) > 1
}
