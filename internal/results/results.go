// Package results holds simulation output time series and the
// statistics and CSV exports built from them.
package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// TimeSeries is a timestep-by-element matrix of one reported quantity.
// Times are seconds from report start; Values[i][j] belongs to Times[i]
// and IDs[j].
type TimeSeries struct {
	Times  []int       `json:"times"`
	IDs    []string    `json:"ids"`
	Values [][]float64 `json:"values"`
}

// Stats summarizes one element's series.
type Stats struct {
	ID   string  `json:"id"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Column returns the series for one element id.
func (ts *TimeSeries) Column(id string) ([]float64, bool) {
	col := -1
	for j, v := range ts.IDs {
		if v == id {
			col = j
			break
		}
	}
	if col < 0 {
		return nil, false
	}
	out := make([]float64, len(ts.Values))
	for i := range ts.Values {
		out[i] = ts.Values[i][col]
	}
	return out, true
}

// At returns the value for one element at one timestep. A negative
// timestep indexes from the end, -1 being the last period.
func (ts *TimeSeries) At(id string, timestep int) (float64, bool) {
	if timestep < 0 {
		timestep += len(ts.Values)
	}
	if timestep < 0 || timestep >= len(ts.Values) {
		return 0, false
	}
	for j, v := range ts.IDs {
		if v == id {
			return ts.Values[timestep][j], true
		}
	}
	return 0, false
}

// ColumnStats computes min/max/mean for one element.
func (ts *TimeSeries) ColumnStats(id string) (Stats, bool) {
	col, ok := ts.Column(id)
	if !ok || len(col) == 0 {
		return Stats{}, false
	}
	s := Stats{ID: id, Min: col[0], Max: col[0]}
	var sum float64
	for _, v := range col {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Mean = sum / float64(len(col))
	return s, true
}

// Periods returns the number of reported timesteps.
func (ts *TimeSeries) Periods() int { return len(ts.Values) }

// WriteCSV writes the matrix with a time column first, one row per
// timestep, matching the layout the original exports had.
func (ts *TimeSeries) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, ts.IDs...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range ts.Values {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, fmt.Sprintf("%d", ts.Times[i]))
		for _, v := range row {
			rec = append(rec, fmt.Sprintf("%g", v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ResultSet bundles every quantity one simulation produced. Pressures
// and heads are in meters, demands and flows in m3/s, velocity in m/s.
type ResultSet struct {
	Pressure *TimeSeries `json:"pressure"`
	Head     *TimeSeries `json:"head"`
	Demand   *TimeSeries `json:"demand"`
	Flow     *TimeSeries `json:"flow"`
	Velocity *TimeSeries `json:"velocity"`
}

// ExportCSV writes pressure and flowrate CSVs next to each other and
// returns their paths, file names prefixed like the original exports
// ("final_pressure.csv", "final_flowrate.csv").
func ExportCSV(rs *ResultSet, dir, prefix string) (pressurePath, flowPath string, err error) {
	pressurePath = filepath.Join(dir, prefix+"pressure.csv")
	flowPath = filepath.Join(dir, prefix+"flowrate.csv")

	if err = writeCSVFile(pressurePath, rs.Pressure); err != nil {
		return "", "", err
	}
	if err = writeCSVFile(flowPath, rs.Flow); err != nil {
		return "", "", err
	}
	return pressurePath, flowPath, nil
}

func writeCSVFile(path string, ts *TimeSeries) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ts.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
