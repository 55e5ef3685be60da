package system

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsModel(t *testing.T) {
	assert.Equal(t, "No model set", New("").Model)
	assert.Equal(t, "llama-3.3-70b-versatile", New("llama-3.3-70b-versatile").Model)
}

func TestFormattedMetrics(t *testing.T) {
	m := New("llama-3.3-70b-versatile")
	m.CPUUsage = 50
	m.MemoryUsage = 150
	m.SetKeyConfigured(true)
	m.SetLastGeneration(1500 * time.Millisecond)

	out := m.GetFormattedMetrics()
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "[blue]llama-3.3-70b-versatile[white]", lines[0])
	assert.Equal(t, "[green]key set[white] (1.5s)", lines[1])
	assert.Equal(t, "CPU [red]██████[white]░░░░░░ 50%", lines[2])
	assert.Equal(t, "MEM [yellow]████████████[white] 150%", lines[3])
}

func TestFormattedMetricsWithoutKey(t *testing.T) {
	m := New("m")
	out := m.GetFormattedMetrics()
	assert.Contains(t, out, "[red]no key[white]\n")
	assert.NotContains(t, out, "s)")
}

func TestStopIsIdempotent(t *testing.T) {
	m := New("m")
	m.Start(nil)
	m.Stop()
	m.Stop()
}
