package dump_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/dump"
	"github.com/hybris-lang/hybris/internal/value"
)

func roundTrip(t *testing.T, v *value.Value) *value.Value {
	t.Helper()
	b, err := dump.EncodeToBytes(v)
	require.NoError(t, err)
	out, err := dump.DecodeFromBytes(b)
	require.NoError(t, err)
	return out
}

func TestRoundTripScalars(t *testing.T) {
	assert.Equal(t, value.KindNil, roundTrip(t, value.NewNil()).Kind)

	assert.EqualValues(t, 42, roundTrip(t, value.NewInt(42)).I)
	assert.EqualValues(t, -17, roundTrip(t, value.NewInt(-17)).I)

	assert.InDelta(t, 3.25, roundTrip(t, value.NewFloat(3.25)).F, 0)

	assert.EqualValues(t, 'q', roundTrip(t, value.NewChar('q')).C)

	assert.True(t, roundTrip(t, value.NewBool(true)).B)
	assert.False(t, roundTrip(t, value.NewBool(false)).B)

	assert.Equal(t, "hybris", roundTrip(t, value.NewString("hybris")).S)
	assert.Equal(t, "", roundTrip(t, value.NewString("")).S)

	assert.Equal(t, []byte{1, 2, 3}, roundTrip(t, value.NewBlob([]byte{1, 2, 3})).Blob)
}

func TestRoundTripVectorPreservesOrder(t *testing.T) {
	v := value.NewVector([]*value.Value{
		value.NewInt(1), value.NewInt(2), value.NewInt(3),
	})
	out := roundTrip(t, v)
	require.Len(t, out.Vec, 3)
	assert.EqualValues(t, 1, out.Vec[0].I)
	assert.EqualValues(t, 2, out.Vec[1].I)
	assert.EqualValues(t, 3, out.Vec[2].I)
}

func TestRoundTripNestedContainers(t *testing.T) {
	inner := value.NewVector([]*value.Value{value.NewString("a"), value.NewString("b")})
	m := value.NewOrderedMap()
	m.Put(value.NewString("k1"), value.NewInt(10))
	m.Put(value.NewString("k2"), inner)
	out := roundTrip(t, value.NewMap(m))

	pairs := out.Map.Pairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, "k1", pairs[0].Key.S)
	assert.EqualValues(t, 10, pairs[0].Value.I)
	assert.Equal(t, "k2", pairs[1].Key.S)
	require.Len(t, pairs[1].Value.Vec, 2)
	assert.Equal(t, "a", pairs[1].Value.Vec[0].S)
	assert.Equal(t, "b", pairs[1].Value.Vec[1].S)
}

func TestRoundTripMapPreservesInsertionOrder(t *testing.T) {
	m := value.NewOrderedMap()
	m.Put(value.NewString("z"), value.NewInt(1))
	m.Put(value.NewString("a"), value.NewInt(2))
	m.Put(value.NewString("m"), value.NewInt(3))
	out := roundTrip(t, value.NewMap(m))

	pairs := out.Map.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, "z", pairs[0].Key.S)
	assert.Equal(t, "a", pairs[1].Key.S)
	assert.Equal(t, "m", pairs[2].Key.S)
}

func TestEncodeRejectsClassInstances(t *testing.T) {
	_, err := dump.EncodeToBytes(&value.Value{Kind: value.KindClass})
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptTag(t *testing.T) {
	_, err := dump.DecodeFromBytes([]byte{0xFF})
	assert.Error(t, err)
}
