package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydronet/internal/network"
)

const (
	nodesCSV = `type,id,x,y,elevation
reservoir,R1,0,50,60
node,J1,20,50,10
tank,T1,80,50,35
`
	pipesCSV = `id,from,to,length,diameter,roughness
P1,R1,J1,1000,300,130
P2,J1,T1,800,250,130
`
	demandsCSV = `node_id,demand
J1,0.015
,
`
)

func TestLoadCSV(t *testing.T) {
	tables, err := LoadCSV(strings.NewReader(nodesCSV), strings.NewReader(pipesCSV), strings.NewReader(demandsCSV))
	require.NoError(t, err)

	require.Len(t, tables.Nodes, 3)
	assert.Equal(t, network.Node{Type: network.TypeReservoir, ID: "R1", X: 0, Y: 50, Elevation: 60}, tables.Nodes[0])
	assert.Equal(t, network.TypeTank, tables.Nodes[2].Type)

	require.Len(t, tables.Pipes, 2)
	assert.Equal(t, network.Pipe{ID: "P1", From: "R1", To: "J1", Length: 1000, Diameter: 300, Roughness: 130}, tables.Pipes[0])

	// The blank trailing demand row is skipped, not an error.
	require.Len(t, tables.Demands, 1)
	assert.Equal(t, network.Demand{NodeID: "J1", Flow: 0.015}, tables.Demands[0])
}

func TestLoadCSVHeaderCaseInsensitive(t *testing.T) {
	nodes := "Type,ID,X,Y,Elevation\nnode,J1,1,2,3\n"
	tables, err := LoadCSV(strings.NewReader(nodes), strings.NewReader(pipesCSV), strings.NewReader(demandsCSV))
	require.NoError(t, err)
	assert.Equal(t, "J1", tables.Nodes[0].ID)
}

func TestLoadCSVMissingColumn(t *testing.T) {
	badPipes := "id,from,to,length,diameter\nP1,A,B,10,100\n"
	_, err := LoadCSV(strings.NewReader(nodesCSV), strings.NewReader(badPipes), strings.NewReader(demandsCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "roughness"`)
}

func TestLoadCSVBadNumber(t *testing.T) {
	badNodes := "type,id,x,y,elevation\nnode,J1,1,2,tall\n"
	_, err := LoadCSV(strings.NewReader(badNodes), strings.NewReader(pipesCSV), strings.NewReader(demandsCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `bad elevation value "tall"`)
}
