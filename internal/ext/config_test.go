package ext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/ext"
	"github.com/hybris-lang/hybris/internal/value"
)

const manifestYAML = `
name: arrays
functions:
  - sort
  - reverse
constants:
  - name: ASC
    value: 0
  - name: DESC
    value: 1
structures:
  - name: Point
    fields: [x, y]
`

func TestParseManifest(t *testing.T) {
	m, err := ext.ParseManifest([]byte(manifestYAML), "arrays.yaml")
	require.NoError(t, err)
	assert.Equal(t, "arrays", m.Name)
	assert.Equal(t, []string{"sort", "reverse"}, m.Functions)
	assert.Len(t, m.Constants, 2)
	assert.Equal(t, "Point", m.Structures[0].Name)
}

func TestNewModuleRequiresMatchingFunctions(t *testing.T) {
	m, err := ext.ParseManifest([]byte(manifestYAML), "arrays.yaml")
	require.NoError(t, err)

	_, err = ext.NewModule(m, map[string]ext.NativeFunc{
		"sort": func(vm any, argv []*value.Value) (*value.Value, error) { return value.NewNil(), nil },
	})
	assert.Error(t, err, "missing 'reverse' implementation should fail")

	mod, err := ext.NewModule(m, map[string]ext.NativeFunc{
		"sort":    func(vm any, argv []*value.Value) (*value.Value, error) { return value.NewNil(), nil },
		"reverse": func(vm any, argv []*value.Value) (*value.Value, error) { return value.NewNil(), nil },
	})
	require.NoError(t, err)

	r, err := mod.Call("sort", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, value.KindNil, r.Kind)
}

func TestConstantValues(t *testing.T) {
	m, err := ext.ParseManifest([]byte(manifestYAML), "arrays.yaml")
	require.NoError(t, err)

	consts := m.ConstantValues()
	require.Contains(t, consts, "DESC")
	i, err := value.IValue(consts["DESC"])
	require.NoError(t, err)
	assert.EqualValues(t, 1, i)
}
