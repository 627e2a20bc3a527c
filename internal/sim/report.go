package sim

import (
	"bufio"
	"os"
	"strings"
)

// Report is what the rpt scan found: EPANET prints lines starting with
// "Error 2xx:" for fatal input or convergence problems and
// "WARNING:" for runs that finished with caveats.
type Report struct {
	Errors   []string
	Warnings []string
}

// ScanReport pulls error and warning lines out of the solver's report
// file so the UI can show EPANET's own message instead of an exit code.
func ScanReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep := &Report{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Error"):
			rep.Errors = append(rep.Errors, line)
		case strings.HasPrefix(strings.ToUpper(line), "WARNING"):
			rep.Warnings = append(rep.Warnings, line)
		}
	}
	return rep, sc.Err()
}
