package protocol

import (
	"encoding/json"
	"errors"
)

// MaxFrameBytes is the default upper bound for a single inbound frame (1MB)
const MaxFrameBytes = 1024 * 1024

var (
	// ErrMalformed is wrapped by every decode failure
	ErrMalformed = errors.New("malformed frame")
	// ErrUnknownKind marks an envelope whose type is not part of the protocol
	ErrUnknownKind = errors.New("unknown message kind")
	// ErrFrameTooLarge marks a frame above the configured limit
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrEmptyID marks a component event without an id
	ErrEmptyID = errors.New("empty component id")
)

// Kind is the envelope type discriminator
type Kind string

const (
	KindState     Kind = "state"
	KindAdd       Kind = "add"
	KindRemove    Kind = "remove"
	KindChange    Kind = "change"
	KindModelHash Kind = "modelHash"
	KindPing      Kind = "ping"
	KindPong      Kind = "pong"
	KindAction    Kind = "action"
)

// Inbound reports whether the server may send this kind
func (k Kind) Inbound() bool {
	switch k {
	case KindState, KindAdd, KindRemove, KindChange, KindModelHash, KindPing, KindPong:
		return true
	}
	return false
}

// Outbound reports whether the client may send this kind
func (k Kind) Outbound() bool {
	return k == KindPing || k == KindAction
}

// Envelope is the wire frame shared by both directions
type Envelope struct {
	Kind Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Attributes is the JSON-typed attribute map of one component
type Attributes map[string]interface{}

// Clone returns a shallow copy; attribute values are treated as immutable
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
