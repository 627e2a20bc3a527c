// Package ingest loads the node/pipe/demand tables from the upload
// formats the UI accepts: three CSV files or one XLSX workbook.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"hydronet/internal/network"
)

// Fixed column schemas. Header match is case-insensitive but every
// listed column must be present.
var (
	nodeColumns   = []string{"type", "id", "x", "y", "elevation"}
	pipeColumns   = []string{"id", "from", "to", "length", "diameter", "roughness"}
	demandColumns = []string{"node_id", "demand"}
)

// LoadCSV reads the three tables from separate CSV streams.
func LoadCSV(nodes, pipes, demands io.Reader) (*network.Tables, error) {
	t := &network.Tables{}

	nodeRows, err := readTable(nodes, "nodes", nodeColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range nodeRows {
		n, err := nodeFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("nodes row %d: %w", i+1, err)
		}
		t.Nodes = append(t.Nodes, n)
	}

	pipeRows, err := readTable(pipes, "pipes", pipeColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range pipeRows {
		p, err := pipeFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("pipes row %d: %w", i+1, err)
		}
		t.Pipes = append(t.Pipes, p)
	}

	demandRows, err := readTable(demands, "demands", demandColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range demandRows {
		d, skip, err := demandFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("demands row %d: %w", i+1, err)
		}
		if !skip {
			t.Demands = append(t.Demands, d)
		}
	}

	return t, nil
}

// readTable parses a CSV stream into maps keyed by the expected column
// names, failing up front when a column is missing.
func readTable(r io.Reader, what string, columns []string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: cannot read header: %w", what, err)
	}
	index := map[string]int{}
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", what, col)
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", what, err)
		}
		row := map[string]string{}
		for _, col := range columns {
			i := index[col]
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func nodeFromRow(row map[string]string) (network.Node, error) {
	n := network.Node{Type: network.NormalizeType(row["type"]), ID: row["id"]}
	var err error
	if n.X, err = cellFloat(row["x"], "x"); err != nil {
		return n, err
	}
	if n.Y, err = cellFloat(row["y"], "y"); err != nil {
		return n, err
	}
	if n.Elevation, err = cellFloat(row["elevation"], "elevation"); err != nil {
		return n, err
	}
	return n, nil
}

func pipeFromRow(row map[string]string) (network.Pipe, error) {
	p := network.Pipe{ID: row["id"], From: row["from"], To: row["to"]}
	var err error
	if p.Length, err = cellFloat(row["length"], "length"); err != nil {
		return p, err
	}
	if p.Diameter, err = cellFloat(row["diameter"], "diameter"); err != nil {
		return p, err
	}
	if p.Roughness, err = cellFloat(row["roughness"], "roughness"); err != nil {
		return p, err
	}
	return p, nil
}

// demandFromRow skips rows with an empty node id instead of failing,
// spreadsheet exports routinely carry trailing blank rows.
func demandFromRow(row map[string]string) (network.Demand, bool, error) {
	if row["node_id"] == "" {
		return network.Demand{}, true, nil
	}
	flow, err := cellFloat(row["demand"], "demand")
	if err != nil {
		return network.Demand{}, false, err
	}
	return network.Demand{NodeID: row["node_id"], Flow: flow}, false, nil
}

func trim(s string) string { return strings.TrimSpace(s) }

func normalizeHeader(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func cellFloat(s, what string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s value %q", what, s)
	}
	return v, nil
}
