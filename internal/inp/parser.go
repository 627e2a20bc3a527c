package inp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hydronet/internal/network"
)

// Parse reads an INP file back into the three tables. Sections the
// tabular model has no use for (patterns, curves, options...) are
// skipped. Coordinates come from [COORDINATES]; nodes missing there
// keep x=0, y=0.
func Parse(r io.Reader) (*network.Tables, error) {
	t := &network.Tables{}

	// Demand rows listed in [DEMANDS] win over the junction demand
	// column, which only acts as a fallback (EPANET treats the column
	// as a single category replaced by explicit rows).
	junctionDemand := map[string]float64{}
	hasDemandRow := map[string]bool{}
	coords := map[string][2]float64{}

	section := ""
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Text()
		if i := strings.Index(raw, ";"); i >= 0 {
			raw = raw[:i]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "[") {
			section = strings.ToUpper(strings.Trim(raw, "[]"))
			continue
		}
		fields := strings.Fields(raw)

		switch section {
		case "JUNCTIONS":
			if len(fields) < 2 {
				return nil, fmt.Errorf("inp line %d: junction needs id and elevation", line)
			}
			elev, err := parseFloat(fields[1], line, "elevation")
			if err != nil {
				return nil, err
			}
			t.Nodes = append(t.Nodes, network.Node{Type: network.TypeJunction, ID: fields[0], Elevation: elev})
			if len(fields) >= 3 {
				d, err := parseFloat(fields[2], line, "demand")
				if err != nil {
					return nil, err
				}
				junctionDemand[fields[0]] = d
			}
		case "RESERVOIRS":
			if len(fields) < 2 {
				return nil, fmt.Errorf("inp line %d: reservoir needs id and head", line)
			}
			head, err := parseFloat(fields[1], line, "head")
			if err != nil {
				return nil, err
			}
			t.Nodes = append(t.Nodes, network.Node{Type: network.TypeReservoir, ID: fields[0], Elevation: head})
		case "TANKS":
			if len(fields) < 2 {
				return nil, fmt.Errorf("inp line %d: tank needs id and elevation", line)
			}
			elev, err := parseFloat(fields[1], line, "elevation")
			if err != nil {
				return nil, err
			}
			t.Nodes = append(t.Nodes, network.Node{Type: network.TypeTank, ID: fields[0], Elevation: elev})
		case "PIPES":
			if len(fields) < 6 {
				return nil, fmt.Errorf("inp line %d: pipe needs id, nodes, length, diameter, roughness", line)
			}
			length, err := parseFloat(fields[3], line, "length")
			if err != nil {
				return nil, err
			}
			diam, err := parseFloat(fields[4], line, "diameter")
			if err != nil {
				return nil, err
			}
			rough, err := parseFloat(fields[5], line, "roughness")
			if err != nil {
				return nil, err
			}
			t.Pipes = append(t.Pipes, network.Pipe{
				ID: fields[0], From: fields[1], To: fields[2],
				Length: length, Diameter: diam, Roughness: rough,
			})
		case "DEMANDS":
			if len(fields) < 2 {
				return nil, fmt.Errorf("inp line %d: demand needs junction and flow", line)
			}
			flow, err := parseFloat(fields[1], line, "demand")
			if err != nil {
				return nil, err
			}
			t.Demands = append(t.Demands, network.Demand{NodeID: fields[0], Flow: flow})
			hasDemandRow[fields[0]] = true
		case "COORDINATES":
			if len(fields) < 3 {
				return nil, fmt.Errorf("inp line %d: coordinate needs node, x, y", line)
			}
			x, err := parseFloat(fields[1], line, "x")
			if err != nil {
				return nil, err
			}
			y, err := parseFloat(fields[2], line, "y")
			if err != nil {
				return nil, err
			}
			coords[fields[0]] = [2]float64{x, y}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for i := range t.Nodes {
		if c, ok := coords[t.Nodes[i].ID]; ok {
			t.Nodes[i].X = c[0]
			t.Nodes[i].Y = c[1]
		}
	}
	// Walk nodes in file order so synthesized demand rows come out
	// in a stable order.
	for _, n := range t.Nodes {
		if n.Type != network.TypeJunction {
			continue
		}
		if d, ok := junctionDemand[n.ID]; ok && d != 0 && !hasDemandRow[n.ID] {
			t.Demands = append(t.Demands, network.Demand{NodeID: n.ID, Flow: d})
		}
	}

	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("inp: no junctions, reservoirs or tanks found")
	}
	return t, nil
}

func parseFloat(s string, line int, what string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("inp line %d: bad %s %q", line, what, s)
	}
	return v, nil
}
