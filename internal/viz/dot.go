// Package viz builds the two visual artifacts the UI renders
// client-side: a Graphviz DOT description of the network topology and
// Plotly figure JSON for the pressure map and time-series charts.
package viz

import (
	"fmt"

	"github.com/emicklei/dot"

	"hydronet/internal/network"
)

// DOT renders the pipe graph, one directed edge per pipe labeled
// "id (diameter mm)" like the original network sketch.
func DOT(t *network.Tables) string {
	g := dot.NewGraph(dot.Directed)

	seen := map[string]dot.Node{}
	nodeOf := func(id string) dot.Node {
		if n, ok := seen[id]; ok {
			return n
		}
		n := g.Node(id)
		if nd := t.NodeByID(id); nd != nil && nd.Type != network.TypeJunction {
			n.Attr("shape", "box")
		}
		seen[id] = n
		return n
	}

	for _, p := range t.Pipes {
		g.Edge(nodeOf(p.From), nodeOf(p.To)).Label(fmt.Sprintf("%s (%gmm)", p.ID, p.Diameter))
	}
	return g.String()
}
