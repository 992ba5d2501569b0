package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Codec decodes inbound frames with a size limit
type Codec struct {
	maxFrameBytes int
}

// NewCodec creates a codec; a non-positive limit selects MaxFrameBytes
func NewCodec(maxFrameBytes int) *Codec {
	if maxFrameBytes <= 0 {
		maxFrameBytes = MaxFrameBytes
	}
	return &Codec{maxFrameBytes: maxFrameBytes}
}

// Decode parses frame using the default size limit
func Decode(frame []byte) (Message, error) {
	return defaultCodec.Decode(frame)
}

var defaultCodec = NewCodec(MaxFrameBytes)

// Decode parses an inbound frame into a typed message
func (c *Codec) Decode(frame []byte) (Message, error) {
	if len(frame) > c.maxFrameBytes {
		return Message{}, fmt.Errorf("%w: %w: %d bytes exceeds %d", ErrMalformed, ErrFrameTooLarge, len(frame), c.maxFrameBytes)
	}

	var env Envelope
	if err := api.Unmarshal(frame, &env); err != nil {
		return Message{}, fmt.Errorf("%w: envelope: %w", ErrMalformed, err)
	}

	if !env.Kind.Inbound() {
		return Message{}, fmt.Errorf("%w: %w: %q", ErrMalformed, ErrUnknownKind, env.Kind)
	}

	payload, err := decodePayload(env.Kind, env.Data)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %s payload: %w", ErrMalformed, env.Kind, err)
	}

	return Message{Kind: env.Kind, Payload: payload}, nil
}

func decodePayload(kind Kind, data json.RawMessage) (interface{}, error) {
	switch kind {
	case KindState:
		var reset Reset
		if !isNull(data) {
			if err := api.Unmarshal(data, &reset); err != nil {
				return nil, err
			}
		}
		if reset == nil {
			reset = Reset{}
		}
		for id := range reset {
			if id == "" {
				return nil, ErrEmptyID
			}
		}
		return reset, nil

	case KindAdd:
		var add ComponentAdd
		if err := unmarshalObject(data, &add); err != nil {
			return nil, err
		}
		if add.ID == "" {
			return nil, ErrEmptyID
		}
		if add.Attributes == nil {
			add.Attributes = Attributes{}
		}
		return add, nil

	case KindRemove:
		var rm ComponentRemove
		if err := unmarshalObject(data, &rm); err != nil {
			return nil, err
		}
		if rm.ID == "" {
			return nil, ErrEmptyID
		}
		return rm, nil

	case KindChange:
		var change StateChange
		if err := unmarshalObject(data, &change); err != nil {
			return nil, err
		}
		if change.ID == "" {
			return nil, ErrEmptyID
		}
		if change.Name == "" {
			return nil, fmt.Errorf("empty attribute name")
		}
		return change, nil

	case KindModelHash:
		var hash string
		if err := api.Unmarshal(data, &hash); err != nil {
			return nil, err
		}
		if hash == "" {
			return nil, fmt.Errorf("empty model hash")
		}
		return ModelHash(hash), nil

	case KindPing, KindPong:
		return nil, nil
	}

	return nil, ErrUnknownKind
}

func unmarshalObject(data json.RawMessage, v interface{}) error {
	if isNull(data) {
		return fmt.Errorf("missing data")
	}
	return api.Unmarshal(data, v)
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Encode builds an outbound frame
func Encode(kind Kind, payload interface{}) ([]byte, error) {
	if !kind.Outbound() {
		return nil, fmt.Errorf("%w: cannot send %q", ErrUnknownKind, kind)
	}

	var data json.RawMessage
	if payload == nil {
		data = json.RawMessage("null")
	} else {
		raw, err := api.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", kind, err)
		}
		data = raw
	}

	return api.Marshal(Envelope{Kind: kind, Data: data})
}

// Ping returns a heartbeat frame
func Ping() []byte {
	frame, _ := Encode(KindPing, nil)
	return frame
}

// EncodeAction builds an action frame
func EncodeAction(componentID, action string) ([]byte, error) {
	return Encode(KindAction, Action{ComponentID: componentID, Action: action})
}
