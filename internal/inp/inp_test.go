package inp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydronet/internal/network"
)

func testTables() *network.Tables {
	return &network.Tables{
		Nodes: []network.Node{
			{Type: network.TypeReservoir, ID: "R1", X: 0, Y: 50, Elevation: 60},
			{Type: network.TypeJunction, ID: "J1", X: 20, Y: 50, Elevation: 10},
			{Type: network.TypeJunction, ID: "J2", X: 40, Y: 70, Elevation: 12},
			{Type: network.TypeTank, ID: "T1", X: 80, Y: 50, Elevation: 35},
		},
		Pipes: []network.Pipe{
			{ID: "P1", From: "R1", To: "J1", Length: 1000, Diameter: 300, Roughness: 130},
			{ID: "P2", From: "J1", To: "J2", Length: 800, Diameter: 250, Roughness: 130},
			{ID: "P3", From: "J2", To: "T1", Length: 600, Diameter: 200, Roughness: 120},
		},
		Demands: []network.Demand{
			{NodeID: "J1", Flow: 0.01},
			{NodeID: "J2", Flow: 0.015},
		},
	}
}

func TestWriteSections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testTables(), "Test Net"))
	out := buf.String()

	for _, section := range []string{"[TITLE]", "[JUNCTIONS]", "[RESERVOIRS]", "[TANKS]", "[PIPES]", "[DEMANDS]", "[COORDINATES]", "[TIMES]", "[OPTIONS]", "[END]"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "Test Net")
	assert.Contains(t, out, "Units\tCMS")
	assert.Contains(t, out, "Headloss\tH-W")
	// Junction line carries summed base demand.
	assert.Contains(t, out, "J1\t10\t0.01\n")
	// Tanks are not junctions.
	assert.NotContains(t, out, "T1\t35\t0\n")
}

func TestRoundTrip(t *testing.T) {
	want := testTables()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want, "roundtrip"))

	got, err := Parse(&buf)
	require.NoError(t, err)

	// Node order follows INP section order (junctions, reservoirs,
	// tanks), not table order.
	assert.ElementsMatch(t, want.Nodes, got.Nodes)
	assert.Equal(t, want.Pipes, got.Pipes)
	assert.Equal(t, want.Demands, got.Demands)
}

func TestParseSkipsCommentsAndUnknownSections(t *testing.T) {
	src := `
[TITLE]
demo

[JUNCTIONS]
;ID  Elev  Demand
J1   10    0.02   ; trailing comment

[RESERVOIRS]
R1   60

[PIPES]
P1   R1   J1   1000   300   130

[PATTERNS]
1  1.0  1.2  0.8

[COORDINATES]
J1  20  50
R1  0   50
`
	got, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	require.Len(t, got.Nodes, 2)
	j1 := got.NodeByID("J1")
	require.NotNil(t, j1)
	assert.Equal(t, 20.0, j1.X)
	assert.Equal(t, 50.0, j1.Y)

	// No [DEMANDS] section: the junction demand column is the fallback.
	require.Len(t, got.Demands, 1)
	assert.Equal(t, network.Demand{NodeID: "J1", Flow: 0.02}, got.Demands[0])
}

func TestParseFallbackDemandOrderIsStable(t *testing.T) {
	src := `
[JUNCTIONS]
J1  10  0.02
J2  12  0.03
J3  14  0.04
J4  16  0

[DEMANDS]
J3  0.05
`
	want := []network.Demand{
		{NodeID: "J3", Flow: 0.05},
		{NodeID: "J1", Flow: 0.02},
		{NodeID: "J2", Flow: 0.03},
	}
	for i := 0; i < 20; i++ {
		got, err := Parse(strings.NewReader(src))
		require.NoError(t, err)
		assert.Equal(t, want, got.Demands)
	}
}

func TestParseDemandRowsWinOverJunctionColumn(t *testing.T) {
	src := `
[JUNCTIONS]
J1  10  0.5

[DEMANDS]
J1  0.02
`
	got, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, got.Demands, 1)
	assert.Equal(t, 0.02, got.Demands[0].Flow)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(strings.NewReader("[JUNCTIONS]\nJ1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junction needs id and elevation")

	_, err = Parse(strings.NewReader("[JUNCTIONS]\nJ1 abc\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad elevation")

	_, err = Parse(strings.NewReader("[TITLE]\nempty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no junctions")
}
