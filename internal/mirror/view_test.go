package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewStack(t *testing.T) {
	var v ViewStack
	_, ok := v.Top()
	assert.False(t, ok)

	v = v.Change("main")
	v = v.Push("settings")
	v = v.Push("confirm")
	assert.True(t, v.IsPopup())

	top, _ := v.Top()
	root, _ := v.Root()
	assert.Equal(t, "confirm", top)
	assert.Equal(t, "main", root)

	popped, err := v.Pop()
	require.NoError(t, err)
	assert.Equal(t, ViewStack{"main", "settings"}, popped)
	assert.Equal(t, ViewStack{"main", "settings", "confirm"}, v)

	assert.Equal(t, ViewStack{"other"}, v.Change("other"))
}

func TestViewStackRejectsClosingRoot(t *testing.T) {
	for _, v := range []ViewStack{nil, {"main"}} {
		out, err := v.Pop()
		assert.ErrorIs(t, err, ErrCloseRoot)
		assert.Equal(t, v, out)
	}
}

func TestViewStackPushDoesNotAlias(t *testing.T) {
	base := make(ViewStack, 1, 4)
	base[0] = "main"

	a := base.Push("a")
	b := base.Push("b")

	assert.Equal(t, ViewStack{"main", "a"}, a)
	assert.Equal(t, ViewStack{"main", "b"}, b)
}
