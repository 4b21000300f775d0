package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/value"
)

func TestInsertLookupOrder(t *testing.T) {
	f := frame.New("main")
	f.Insert("a", value.NewInt(1))
	f.Insert("b", value.NewInt(2))
	f.Insert("a", value.NewInt(3)) // rebinding, not reordering

	assert.Equal(t, []string{"a", "b"}, f.Names())

	v, ok := f.Lookup("a")
	require.True(t, ok)
	i, err := value.IValue(v)
	require.NoError(t, err)
	assert.EqualValues(t, 3, i)
}

func TestInsertRefcounting(t *testing.T) {
	f := frame.New("main")
	v := value.NewInt(1)
	f.Insert("a", v)
	assert.Equal(t, 1, v.Refcount)

	f.Insert("a", value.NewInt(2))
	assert.Equal(t, 0, v.Refcount, "rebinding must decrement the displaced value")
}

func TestDestroyDecrements(t *testing.T) {
	f := frame.New("main")
	v := value.NewInt(1)
	f.Insert("x", v)
	require.Equal(t, 1, v.Refcount)

	f.Destroy()
	assert.Equal(t, 0, v.Refcount)
	assert.Empty(t, f.Names())
}

func TestStateShortCircuit(t *testing.T) {
	var s frame.State
	assert.False(t, s.ShortCircuit())

	s.Breaking = true
	assert.True(t, s.ShortCircuit())

	s.Reset()
	assert.False(t, s.ShortCircuit())
}
