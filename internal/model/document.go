package model

// Style is a list of CSS class names
type Style []string

// Resource is the content hash of a server-side resource (image, stylesheet)
type Resource string

// Document is the static UI model served by the UI server
type Document struct {
	Windows       []Window          `json:"windows"`
	DefaultWindow map[string]string `json:"defaultWindow"`
	StyleHash     string            `json:"styleHash"`
}

// Window is one screen or popup
type Window struct {
	ID                 string    `json:"id"`
	Style              Style     `json:"style"`
	Height             int       `json:"height"`
	Width              int       `json:"width"`
	BackgroundResource Resource  `json:"backgroundResource"`
	Controls           []Control `json:"controls"`
}

// Control is a widget placed on a window
type Control struct {
	ID              string          `json:"id"`
	Style           Style           `json:"style"`
	Height          int             `json:"height"`
	Width           int             `json:"width"`
	X               int             `json:"x"`
	Y               int             `json:"y"`
	Display         *ControlDisplay `json:"display"`
	Text            *ControlText    `json:"text"`
	PrimaryAction   *Action         `json:"primaryAction"`
	SecondaryAction *Action         `json:"secondaryAction"`
}

// ControlDisplay maps a component attribute to an image
type ControlDisplay struct {
	ComponentID     string                  `json:"componentId"`
	ComponentState  string                  `json:"componentState"`
	DefaultResource Resource                `json:"defaultResource"`
	Map             []ControlDisplayMapItem `json:"map"`
}

// ControlDisplayMapItem matches either a numeric range or an exact value
type ControlDisplayMapItem struct {
	Min      *float64    `json:"min"`
	Max      *float64    `json:"max"`
	Value    interface{} `json:"value"`
	Resource Resource    `json:"resource"`
}

// ControlText renders a format string with component attributes
type ControlText struct {
	Context []ControlTextContextItem `json:"context"`
	Format  string                   `json:"format"`
}

// ControlTextContextItem binds a format variable to a component attribute
type ControlTextContextItem struct {
	ID             string `json:"id"`
	ComponentID    string `json:"componentId"`
	ComponentState string `json:"componentState"`
}

// Action is what activating a control does: either a component action
// sent to the server or a window change handled locally
type Action struct {
	Component *ActionComponent `json:"component"`
	Window    *ActionWindow    `json:"window"`
}

// ActionComponent sends an action to a server component
type ActionComponent struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// ActionWindow navigates to a window or opens it as a popup
type ActionWindow struct {
	ID    string `json:"id"`
	Popup bool   `json:"popup"`
}
