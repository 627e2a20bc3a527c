package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeout(t *testing.T) {
	fallback := 60 * time.Second

	assert.Equal(t, 30*time.Second, parseTimeout("30", fallback))
	assert.Equal(t, 1500*time.Millisecond, parseTimeout("1.5", fallback))
	assert.Equal(t, 45*time.Second, parseTimeout("45s", fallback))
	assert.Equal(t, 2*time.Minute, parseTimeout("2m", fallback))

	assert.Equal(t, fallback, parseTimeout("soon", fallback))
	assert.Equal(t, fallback, parseTimeout("-5", fallback))
	assert.Equal(t, fallback, parseTimeout("0", fallback))
}

func TestNewRunnerReadsEnv(t *testing.T) {
	t.Setenv("EPANET_BIN", "/opt/epanet/runepanet")
	t.Setenv("SIM_TIMEOUT", "30s")

	r := NewRunner()
	assert.Equal(t, "/opt/epanet/runepanet", r.Bin)
	assert.Equal(t, 30*time.Second, r.Timeout)
}
