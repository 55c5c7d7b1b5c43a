package candidate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeYAML(t *testing.T) {
	doc := `
name: CardiAnx-1
provenance: in_silico
properties:
  logP: 3.2
  hERG_IC50: 25
  beta1_selectivity: 150
uncertainty:
  logP: {lower: 2.9, upper: 3.5}
`
	c, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "CardiAnx-1", c.Name())
	assert.Equal(t, "in_silico", c.Provenance())
	v, ok := c.Get("hERG_IC50")
	require.True(t, ok)
	assert.Equal(t, 25, v)
	assert.Equal(t, map[string]Bounds{"logP": {Lower: 2.9, Upper: 3.5}}, c.Uncertainty())
}

func TestDecodeJSON(t *testing.T) {
	c, err := Decode(strings.NewReader(`{"name": "x", "properties": {"logP": 4.5}}`))
	require.NoError(t, err)
	v, ok := c.Get("logP")
	require.True(t, ok)
	assert.Equal(t, 4.5, v)
}

func TestDecodeRequiresName(t *testing.T) {
	_, err := Decode(strings.NewReader(`properties: {logP: 1}`))
	assert.ErrorContains(t, err, "name is required")
}
