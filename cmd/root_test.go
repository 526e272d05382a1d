package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoint(t *testing.T) {
	params, err := parsePoint("alpha=3.5, beta=-1,mmax=100")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"alpha": 3.5, "beta": -1, "mmax": 100}, params)

	params, err = parsePoint("")
	require.NoError(t, err)
	assert.Empty(t, params)

	_, err = parsePoint("alpha")
	assert.Error(t, err)
	_, err = parsePoint("alpha=abc")
	assert.Error(t, err)
}

func TestParseScan(t *testing.T) {
	name, axis, err := parseScan("lamb=0:4:5")
	require.NoError(t, err)
	assert.Equal(t, "lamb", name)
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, axis)

	for _, bad := range []string{"lamb", "lamb=0:4", "lamb=4:0:5", "lamb=0:4:1", "lamb=a:4:5"} {
		_, _, err := parseScan(bad)
		assert.Error(t, err, "scan %q accepted", bad)
	}
}
