package viz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydronet/internal/network"
	"hydronet/internal/results"
)

func vizNet() *network.Tables {
	return &network.Tables{
		Nodes: []network.Node{
			{Type: network.TypeReservoir, ID: "R1", X: 0, Y: 50, Elevation: 60},
			{Type: network.TypeJunction, ID: "J1", X: 20, Y: 50, Elevation: 10},
		},
		Pipes: []network.Pipe{
			{ID: "P1", From: "R1", To: "J1", Length: 1000, Diameter: 300, Roughness: 130},
		},
	}
}

func vizPressure() *results.TimeSeries {
	return &results.TimeSeries{
		Times:  []int{0, 3600},
		IDs:    []string{"R1", "J1"},
		Values: [][]float64{{0, 41.5}, {0, 40.9}},
	}
}

func TestDOT(t *testing.T) {
	out := DOT(vizNet())
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "P1 (300mm)")
	// Reservoirs get box shapes.
	assert.Contains(t, out, "box")
}

func TestPressureMap(t *testing.T) {
	fig := PressureMap(vizNet(), vizPressure(), -1)
	j, err := fig.JSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(j), &decoded))

	assert.Contains(t, j, `"colorscale":"Viridis"`)
	assert.Contains(t, j, `"markers+text"`)
	// Last timestep values are the marker colors.
	assert.Contains(t, j, "40.9")
}

func TestNodeLines(t *testing.T) {
	fig := NodeLines(vizPressure(), []string{"J1", "ghost"})
	// Unknown ids are skipped.
	require.Len(t, fig.Data, 1)
	assert.Equal(t, "J1", fig.Data[0]["name"])
}

func TestSingleNodeLine(t *testing.T) {
	_, err := SingleNodeLine(vizPressure(), "ghost")
	require.Error(t, err)

	fig, err := SingleNodeLine(vizPressure(), "J1")
	require.NoError(t, err)
	require.Len(t, fig.Data, 1)
	assert.Equal(t, []float64{41.5, 40.9}, fig.Data[0]["y"])
}
