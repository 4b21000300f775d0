package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/gc"
	"github.com/hybris-lang/hybris/internal/value"
)

type rootSlice []*value.Value

func (r rootSlice) GCRoots() []*value.Value { return r }

func TestCollectReclaimsUnreachable(t *testing.T) {
	a := gc.New(0)
	held := a.Register(value.NewInt(1))
	value.SetReferences(held, 1)
	orphan := a.Register(value.NewInt(2))

	root := rootSlice{held}
	a.AddRoot(root)

	a.Collect()

	stats := a.Stats()
	require.Equal(t, 1, stats.Freed)
	assert.Equal(t, 1, stats.Allocated)
	_ = orphan
}

func TestCollectLeavesRefcountedUnmarkedAlone(t *testing.T) {
	a := gc.New(0)
	v := a.Register(value.NewInt(1))
	value.SetReferences(v, 1) // simulates a binding outside any known root

	a.Collect()

	assert.Equal(t, 1, a.Stats().Allocated, "refcount>0 but unmarked must survive this cycle")
}

func TestPoolProtectsAcrossCollect(t *testing.T) {
	a := gc.New(0)
	v := a.Register(value.NewInt(42))
	pin := a.Pool(v)

	a.Collect()
	assert.Equal(t, 1, a.Stats().Allocated)

	a.Depool(pin)
	a.Collect()
	assert.Equal(t, 0, a.Stats().Allocated)
}

func TestParseThreshold(t *testing.T) {
	n, err := gc.ParseThreshold("10M")
	require.NoError(t, err)
	assert.Equal(t, uint64(10*1000*1000), n)

	_, err = gc.ParseThreshold("not-a-size")
	assert.Error(t, err)
}

func TestMaybeCollectTriggersAtThreshold(t *testing.T) {
	a := gc.New(1) // threshold of one byte: every allocation crosses it
	a.Register(value.NewInt(1))
	a.MaybeCollect()
	assert.Equal(t, 0, a.Stats().Allocated)
}
