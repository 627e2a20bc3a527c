package viz

import (
	"encoding/json"
	"fmt"

	"hydronet/internal/network"
	"hydronet/internal/results"
)

// Figure is the {data, layout} pair plotly.js consumes. Traces and
// layout are left loosely typed; the template embeds the marshalled
// JSON and calls Plotly.newPlot with it.
type Figure struct {
	Data   []map[string]interface{} `json:"data"`
	Layout map[string]interface{}   `json:"layout"`
}

// JSON marshals the figure for direct embedding in a template.
func (f *Figure) JSON() (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PressureMap builds a scatter of node positions colored by pressure at
// the chosen timestep (negative indexes from the end), Viridis scale
// with a colorbar, node ids as hover text.
func PressureMap(t *network.Tables, pressure *results.TimeSeries, timestep int) *Figure {
	xs := make([]float64, 0, len(t.Nodes))
	ys := make([]float64, 0, len(t.Nodes))
	ids := make([]string, 0, len(t.Nodes))
	colors := make([]interface{}, 0, len(t.Nodes))

	for _, n := range t.Nodes {
		xs = append(xs, n.X)
		ys = append(ys, n.Y)
		ids = append(ids, n.ID)
		if v, ok := pressure.At(n.ID, timestep); ok {
			colors = append(colors, v)
		} else {
			colors = append(colors, nil)
		}
	}

	return &Figure{
		Data: []map[string]interface{}{{
			"type": "scatter",
			"x":    xs,
			"y":    ys,
			"mode": "markers+text",
			"marker": map[string]interface{}{
				"size":       12,
				"color":      colors,
				"colorscale": "Viridis",
				"showscale":  true,
				"colorbar":   map[string]interface{}{"title": "Pressure (m)"},
			},
			"text":      ids,
			"hoverinfo": "text",
		}},
		Layout: map[string]interface{}{
			"title":  "Pressure Map at Selected Timestep",
			"xaxis":  map[string]interface{}{"title": "X Coordinate"},
			"yaxis":  map[string]interface{}{"title": "Y Coordinate"},
			"height": 600,
		},
	}
}

// NodeLines builds one pressure-over-time line per selected node.
// Unknown ids are silently skipped; the handler warns about them.
func NodeLines(pressure *results.TimeSeries, nodeIDs []string) *Figure {
	fig := &Figure{
		Layout: map[string]interface{}{
			"title": "Pressure Over Time",
			"xaxis": map[string]interface{}{"title": "Time (s)"},
			"yaxis": map[string]interface{}{"title": "Pressure (m)"},
		},
	}
	for _, id := range nodeIDs {
		col, ok := pressure.Column(id)
		if !ok {
			continue
		}
		fig.Data = append(fig.Data, map[string]interface{}{
			"type": "scatter",
			"mode": "lines",
			"name": id,
			"x":    pressure.Times,
			"y":    col,
		})
	}
	return fig
}

// SingleNodeLine is the per-node chart shown with pipe statistics.
func SingleNodeLine(pressure *results.TimeSeries, nodeID string) (*Figure, error) {
	col, ok := pressure.Column(nodeID)
	if !ok {
		return nil, fmt.Errorf("node %s not found in pressure results", nodeID)
	}
	return &Figure{
		Data: []map[string]interface{}{{
			"type": "scatter",
			"mode": "lines",
			"name": nodeID,
			"x":    pressure.Times,
			"y":    col,
		}},
		Layout: map[string]interface{}{
			"title": fmt.Sprintf("Pressure Over Time - Node %s", nodeID),
			"xaxis": map[string]interface{}{"title": "Time (s)"},
			"yaxis": map[string]interface{}{"title": "Pressure (m)"},
		},
	}, nil
}
