package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/AgentOS/uiclient/internal/protocol"
)

func msg(payload interface{}) protocol.Message {
	var kind protocol.Kind
	switch payload.(type) {
	case protocol.Reset:
		kind = protocol.KindState
	case protocol.ComponentAdd:
		kind = protocol.KindAdd
	case protocol.ComponentRemove:
		kind = protocol.KindRemove
	case protocol.StateChange:
		kind = protocol.KindChange
	case protocol.ModelHash:
		kind = protocol.KindModelHash
	}
	return protocol.Message{Kind: kind, Payload: payload}
}

func TestRegistryApply(t *testing.T) {
	start := NewRegistry(protocol.Reset{
		"lamp": {"on": false},
	})

	tests := []struct {
		name string
		msg  protocol.Message
		want Registry
	}{
		{
			name: "reset replaces everything",
			msg:  msg(protocol.Reset{"dimmer": {"level": 10.0}}),
			want: Registry{"dimmer": {"level": 10.0}},
		},
		{
			name: "nil reset empties",
			msg:  msg(protocol.Reset(nil)),
			want: Registry{},
		},
		{
			name: "add new component",
			msg:  msg(protocol.ComponentAdd{ID: "dimmer", Attributes: protocol.Attributes{"level": 5.0}}),
			want: Registry{"lamp": {"on": false}, "dimmer": {"level": 5.0}},
		},
		{
			name: "add overwrites",
			msg:  msg(protocol.ComponentAdd{ID: "lamp", Attributes: protocol.Attributes{"label": "Hall"}}),
			want: Registry{"lamp": {"label": "Hall"}},
		},
		{
			name: "remove",
			msg:  msg(protocol.ComponentRemove{ID: "lamp"}),
			want: Registry{},
		},
		{
			name: "remove absent is a no-op",
			msg:  msg(protocol.ComponentRemove{ID: "ghost"}),
			want: Registry{"lamp": {"on": false}},
		},
		{
			name: "change existing",
			msg:  msg(protocol.StateChange{ID: "lamp", Name: "on", Value: true}),
			want: Registry{"lamp": {"on": true}},
		},
		{
			name: "change adds attribute",
			msg:  msg(protocol.StateChange{ID: "lamp", Name: "label", Value: "Hall"}),
			want: Registry{"lamp": {"on": false, "label": "Hall"}},
		},
		{
			name: "change unknown is a no-op",
			msg:  msg(protocol.StateChange{ID: "ghost", Name: "on", Value: true}),
			want: Registry{"lamp": {"on": false}},
		},
		{
			name: "model hash leaves registry alone",
			msg:  msg(protocol.ModelHash("abc")),
			want: Registry{"lamp": {"on": false}},
		},
		{
			name: "ping leaves registry alone",
			msg:  protocol.Message{Kind: protocol.KindPing},
			want: Registry{"lamp": {"on": false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := start.Apply(tt.msg)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Registry{"lamp": {"on": false}}, start, "input registry must not change")
		})
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(protocol.Reset{"lamp": {}, "fan": {}})

	once := r.Remove("lamp")
	twice := once.Remove("lamp")

	assert.Equal(t, once, twice)
	assert.Equal(t, Registry{"fan": {}}, twice)
}

func TestRegistryAddCopiesAttributes(t *testing.T) {
	attrs := protocol.Attributes{"on": true}
	r := Registry{}.Add("lamp", attrs)
	attrs["on"] = false

	v, ok := r.Attribute("lamp", "on")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = r.Attribute("ghost", "on")
	assert.False(t, ok)
}
