// Package inp reads and writes EPANET INP files, the text format the
// solver consumes. Only the sections the tabular model uses are covered:
// junctions, reservoirs, tanks, pipes, demands and coordinates.
package inp

import (
	"fmt"
	"io"
	"os"

	"hydronet/internal/network"
)

// Simulation horizon written into every generated file: 24 h extended
// period with hourly hydraulic and report steps.
const (
	DurationHours = 24
	StepHours     = 1
)

// Write renders the tables as a complete INP file. Units are CMS
// (demands in m3/s) with Hazen-Williams headloss, matching the tables.
func Write(w io.Writer, t *network.Tables, title string) error {
	bw := &errWriter{w: w}

	bw.printf("[TITLE]\n%s\n\n", title)

	bw.printf("[JUNCTIONS]\n;ID\tElev\tDemand\n")
	for _, n := range t.Nodes {
		if n.Type != network.TypeJunction {
			continue
		}
		bw.printf("%s\t%g\t%g\n", n.ID, n.Elevation, t.BaseDemand(n.ID))
	}
	bw.printf("\n[RESERVOIRS]\n;ID\tHead\n")
	for _, n := range t.Nodes {
		if n.Type == network.TypeReservoir {
			bw.printf("%s\t%g\n", n.ID, n.Elevation)
		}
	}
	bw.printf("\n[TANKS]\n;ID\tElev\tInitLvl\tMinLvl\tMaxLvl\tDiam\tMinVol\n")
	for _, n := range t.Nodes {
		if n.Type == network.TypeTank {
			// Default tank geometry: 5 m operating range, 20 m shell.
			bw.printf("%s\t%g\t2.5\t0\t5\t20\t0\n", n.ID, n.Elevation)
		}
	}

	bw.printf("\n[PIPES]\n;ID\tNode1\tNode2\tLength\tDiam\tRoughness\n")
	for _, p := range t.Pipes {
		bw.printf("%s\t%s\t%s\t%g\t%g\t%g\n", p.ID, p.From, p.To, p.Length, p.Diameter, p.Roughness)
	}

	bw.printf("\n[DEMANDS]\n;Junction\tDemand\n")
	for _, d := range t.Demands {
		if d.NodeID == "" {
			continue
		}
		bw.printf("%s\t%g\n", d.NodeID, d.Flow)
	}

	bw.printf("\n[COORDINATES]\n;Node\tX\tY\n")
	for _, n := range t.Nodes {
		bw.printf("%s\t%g\t%g\n", n.ID, n.X, n.Y)
	}

	bw.printf("\n[TIMES]\nDuration\t%d:00\nHydraulic Timestep\t%d:00\nReport Timestep\t%d:00\nReport Start\t0:00\n",
		DurationHours, StepHours, StepHours)
	bw.printf("\n[OPTIONS]\nUnits\tCMS\nHeadloss\tH-W\n")
	bw.printf("\n[END]\n")

	return bw.err
}

// WriteFile writes the network to the given path.
func WriteFile(path string, t *network.Tables, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// errWriter sticks on the first write error so section writers stay flat.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
