package sim

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"hydronet/internal/inp"
	"hydronet/internal/network"
	"hydronet/internal/results"
)

// Default solver command. The stock EPANET distribution installs the
// CLI as runepanet; override with EPANET_BIN.
const defaultBin = "runepanet"

// RunInfo describes one completed solver invocation.
type RunInfo struct {
	RunID    string
	Dir      string // per-run work dir holding net.inp / net.rpt / net.out
	InpPath  string
	Duration time.Duration
	Periods  int
	Warnings []string
}

// Runner invokes the EPANET command-line solver. There is no solver in
// this codebase; all hydraulics happen in the external binary.
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// NewRunner builds a runner from EPANET_BIN and SIM_TIMEOUT (seconds).
func NewRunner() *Runner {
	r := &Runner{Bin: os.Getenv("EPANET_BIN"), Timeout: 60 * time.Second}
	if r.Bin == "" {
		r.Bin = defaultBin
	}
	if v := os.Getenv("SIM_TIMEOUT"); v != "" {
		r.Timeout = parseTimeout(v, r.Timeout)
	}
	return r
}

// parseTimeout reads SIM_TIMEOUT as a number of seconds, accepting a
// duration string like "90s" as well. Bad values keep the fallback.
func parseTimeout(v string, fallback time.Duration) time.Duration {
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	log.Printf("Ignoring invalid SIM_TIMEOUT %q, keeping %s", v, fallback)
	return fallback
}

// Run writes the network to an INP file in a fresh work dir, execs the
// solver against it and decodes the binary results. The work dir is
// kept so the UI can offer the generated INP and report for download;
// callers own cleanup.
func (r *Runner) Run(ctx context.Context, t *network.Tables, title string) (*results.ResultSet, *RunInfo, error) {
	info := &RunInfo{RunID: uuid.NewString()}

	dir, err := os.MkdirTemp("", "hydronet-run-")
	if err != nil {
		return nil, nil, err
	}
	info.Dir = dir
	info.InpPath = filepath.Join(dir, "net.inp")

	if err := inp.WriteFile(info.InpPath, t, title); err != nil {
		return nil, info, fmt.Errorf("write inp: %w", err)
	}

	rs, err := r.RunFile(ctx, info)
	if err != nil {
		return nil, info, err
	}
	return rs, info, nil
}

// RunFile runs the solver against info.InpPath. Split out so the CLI
// can point it at an existing INP file.
func (r *Runner) RunFile(ctx context.Context, info *RunInfo) (*results.ResultSet, error) {
	rptPath := filepath.Join(info.Dir, "net.rpt")
	outPath := filepath.Join(info.Dir, "net.out")

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Bin, info.InpPath, rptPath, outPath)
	cmd.Dir = info.Dir
	combined, runErr := cmd.CombinedOutput()
	info.Duration = time.Since(start)

	// The report carries EPANET's own diagnostics; prefer those over
	// the process exit status.
	rpt, rptErr := ScanReport(rptPath)
	if rptErr == nil {
		info.Warnings = rpt.Warnings
		if len(rpt.Errors) > 0 {
			return nil, fmt.Errorf("epanet: %s", rpt.Errors[0])
		}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("epanet: solver timed out after %s", r.Timeout)
	}
	if runErr != nil {
		return nil, fmt.Errorf("epanet: %s failed: %v (%s)", r.Bin, runErr, firstLine(combined))
	}

	rs, err := ReadOutputFile(outPath)
	if err != nil {
		return nil, err
	}
	info.Periods = rs.Pressure.Periods()
	return rs, nil
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' || c == '\r' {
			return string(b[:i])
		}
	}
	return string(b)
}
