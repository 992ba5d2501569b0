package protocol

// Reset is the payload of a state message: the complete registry
type Reset map[string]Attributes

// ComponentAdd instantiates or overwrites one component
type ComponentAdd struct {
	ID         string     `json:"id"`
	Attributes Attributes `json:"attributes"`
}

// ComponentRemove deletes one component
type ComponentRemove struct {
	ID string `json:"id"`
}

// StateChange sets a single attribute on a live component
type StateChange struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// ModelHash names the model document the client should load
type ModelHash string

// Action is the outbound user intent, forwarded verbatim
type Action struct {
	ComponentID string `json:"id"`
	Action      string `json:"action"`
}

// Message is a decoded inbound envelope. Payload holds one of Reset,
// ComponentAdd, ComponentRemove, StateChange, ModelHash or nil for
// ping and pong.
type Message struct {
	Kind    Kind
	Payload interface{}
}
