package model

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateWindow  = errors.New("duplicate window id")
	ErrDuplicateControl = errors.New("duplicate control id")
	ErrDanglingDefault  = errors.New("default window does not exist")
)

// FormFactor selects the default window
type FormFactor string

const (
	FormFactorMobile  FormFactor = "mobile"
	FormFactorDesktop FormFactor = "desktop"
)

// ParseFormFactor validates a form factor name
func ParseFormFactor(s string) (FormFactor, error) {
	switch FormFactor(s) {
	case FormFactorMobile, FormFactorDesktop:
		return FormFactor(s), nil
	}
	return "", fmt.Errorf("unknown form factor %q", s)
}

// Version is an immutable, indexed model document identified by its hash.
// Versions are shared by pointer and never mutated after NewVersion.
type Version struct {
	hash     string
	doc      *Document
	windows  map[string]*Window
	controls map[string]*Control
}

func controlKey(windowID, controlID string) string {
	return windowID + "$" + controlID
}

// NewVersion indexes doc. Window ids must be unique, control ids unique
// within their window, and every default window must exist.
func NewVersion(hash string, doc *Document) (*Version, error) {
	v := &Version{
		hash:     hash,
		doc:      doc,
		windows:  make(map[string]*Window, len(doc.Windows)),
		controls: make(map[string]*Control),
	}

	for i := range doc.Windows {
		window := &doc.Windows[i]
		if _, exists := v.windows[window.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateWindow, window.ID)
		}
		v.windows[window.ID] = window

		for j := range window.Controls {
			control := &window.Controls[j]
			key := controlKey(window.ID, control.ID)
			if _, exists := v.controls[key]; exists {
				return nil, fmt.Errorf("%w: %s in window %s", ErrDuplicateControl, control.ID, window.ID)
			}
			v.controls[key] = control
		}
	}

	for ff, id := range doc.DefaultWindow {
		if _, ok := v.windows[id]; !ok {
			return nil, fmt.Errorf("%w: %s -> %s", ErrDanglingDefault, ff, id)
		}
	}

	return v, nil
}

// Hash returns the content hash the version was fetched by
func (v *Version) Hash() string {
	return v.hash
}

// Document returns the underlying document; callers must not modify it
func (v *Version) Document() *Document {
	return v.doc
}

// StyleHash returns the stylesheet resource hash
func (v *Version) StyleHash() string {
	return v.doc.StyleHash
}

// HasWindow reports whether id names a window
func (v *Version) HasWindow(id string) bool {
	_, ok := v.windows[id]
	return ok
}

// Window returns a window by id
func (v *Version) Window(id string) (*Window, bool) {
	w, ok := v.windows[id]
	return w, ok
}

// Control returns a control of a window
func (v *Version) Control(windowID, controlID string) (*Control, bool) {
	c, ok := v.controls[controlKey(windowID, controlID)]
	return c, ok
}

// DefaultWindowID returns the default window for a form factor
func (v *Version) DefaultWindowID(ff FormFactor) (string, bool) {
	id, ok := v.doc.DefaultWindow[string(ff)]
	return id, ok
}

// WindowIDs returns window ids in document order
func (v *Version) WindowIDs() []string {
	ids := make([]string, 0, len(v.doc.Windows))
	for _, w := range v.doc.Windows {
		ids = append(ids, w.ID)
	}
	return ids
}
