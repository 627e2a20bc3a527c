package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanReport(t *testing.T) {
	rpt := `
  Page 1                                    EPANET 2.2

  WARNING: Negative pressures at 2:00:00 hrs.
  Error 203: undefined node GHOST in pipe P9
  some other line
`
	path := filepath.Join(t.TempDir(), "net.rpt")
	require.NoError(t, os.WriteFile(path, []byte(rpt), 0o644))

	rep, err := ScanReport(path)
	require.NoError(t, err)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "Error 203")
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "Negative pressures")
}

func TestScanReportMissingFile(t *testing.T) {
	_, err := ScanReport(filepath.Join(t.TempDir(), "absent.rpt"))
	assert.Error(t, err)
}
