package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hydronet/internal/network"
)

// Workbook sheet names, one per table.
const (
	SheetNodes   = "node"
	SheetPipes   = "pipe"
	SheetDemands = "demand"
)

// LoadXLSX reads the three tables from one workbook with sheets named
// node, pipe and demand, each carrying the same headers as the CSVs.
func LoadXLSX(r io.Reader) (*network.Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	defer f.Close()

	t := &network.Tables{}

	nodeRows, err := sheetRows(f, SheetNodes, nodeColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range nodeRows {
		n, err := nodeFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", SheetNodes, i+2, err)
		}
		t.Nodes = append(t.Nodes, n)
	}

	pipeRows, err := sheetRows(f, SheetPipes, pipeColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range pipeRows {
		p, err := pipeFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", SheetPipes, i+2, err)
		}
		t.Pipes = append(t.Pipes, p)
	}

	demandRows, err := sheetRows(f, SheetDemands, demandColumns)
	if err != nil {
		return nil, err
	}
	for i, row := range demandRows {
		d, skip, err := demandFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", SheetDemands, i+2, err)
		}
		if !skip {
			t.Demands = append(t.Demands, d)
		}
	}

	return t, nil
}

// sheetRows reads one sheet into maps keyed by the expected columns,
// using the first row as header.
func sheetRows(f *excelize.File, sheet string, columns []string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx: missing sheet %q", sheet)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q is empty", sheet)
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[normalizeHeader(h)] = i
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("xlsx: sheet %q missing required column %q", sheet, col)
		}
	}

	var out []map[string]string
	for _, rec := range rows[1:] {
		if emptyRow(rec) {
			continue
		}
		row := map[string]string{}
		for _, col := range columns {
			i := index[col]
			if i < len(rec) {
				row[col] = trim(rec[i])
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func emptyRow(rec []string) bool {
	for _, c := range rec {
		if trim(c) != "" {
			return false
		}
	}
	return true
}
