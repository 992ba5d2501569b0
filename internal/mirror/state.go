package mirror

import (
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/model"
	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

// State is an immutable snapshot of everything the view layer renders
type State struct {
	model    *model.Version
	registry Registry
	view     ViewStack
	online   bool
}

var emptyState = &State{registry: Registry{}}

// Model returns the loaded model, nil until the first fetch succeeds
func (s *State) Model() *model.Version {
	return s.model
}

// Registry returns the component registry; callers must not modify it
func (s *State) Registry() Registry {
	return s.registry
}

// Online reports whether the session is connected
func (s *State) Online() bool {
	return s.online
}

// Ready reports whether a model is loaded and a window is shown
func (s *State) Ready() bool {
	return s.model != nil && len(s.view) > 0
}

// ViewStack returns a copy of the view stack, root first
func (s *State) ViewStack() []string {
	out := make([]string, len(s.view))
	copy(out, s.view)
	return out
}

// CurrentWindow returns the visible window id
func (s *State) CurrentWindow() (string, bool) {
	return s.view.Top()
}

// IsPopup reports whether a popup is open
func (s *State) IsPopup() bool {
	return s.view.IsPopup()
}

// HasWindow reports whether the loaded model defines a window
func (s *State) HasWindow(id string) bool {
	return s.model != nil && s.model.HasWindow(id)
}

// Control looks up a control of a window in the loaded model
func (s *State) Control(windowID, controlID string) (*model.Control, bool) {
	if s.model == nil {
		return nil, false
	}
	return s.model.Control(windowID, controlID)
}

// Window looks up a window in the loaded model
func (s *State) Window(id string) (*model.Window, bool) {
	if s.model == nil {
		return nil, false
	}
	return s.model.Window(id)
}

// DefaultWindowID returns the default window of a form factor
func (s *State) DefaultWindowID(ff model.FormFactor) (string, bool) {
	if s.model == nil {
		return "", false
	}
	return s.model.DefaultWindowID(ff)
}

// Component returns the attributes of a live component
func (s *State) Component(id string) (protocol.Attributes, bool) {
	return s.registry.Component(id)
}

// ComponentCount returns the number of live components
func (s *State) ComponentCount() int {
	return len(s.registry)
}
