package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydronet/internal/sim"
	"hydronet/internal/utils"
)

func workDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "hydronet-run-")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "net.out"), []byte("x"), 0o644))
	return dir
}

func TestDropRemovesWorkDir(t *testing.T) {
	s := GetSimulationService()
	dir := workDir(t)

	res := &RunResult{RunID: uuid.NewString(), Info: &sim.RunInfo{Dir: dir}}
	s.store(res)
	require.NotNil(t, s.Result(res.RunID))

	s.Drop(res.RunID)

	assert.Nil(t, s.Result(res.RunID))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "work dir should be removed when a run is dropped")
}

func TestExpiredRunLosesWorkDir(t *testing.T) {
	s := GetSimulationService()
	dir := workDir(t)

	res := &RunResult{RunID: uuid.NewString(), Info: &sim.RunInfo{Dir: dir}}
	s.storeFor(res, -time.Second)

	utils.GetCache().PurgeExpired()

	assert.Nil(t, s.Result(res.RunID))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "work dir should be removed when a run expires")
}
