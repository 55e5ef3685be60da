package system

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Metrics samples host CPU and memory once a second for the sidebar meter,
// alongside the active model and the duration of the last generation.
type Metrics struct {
	mu          sync.RWMutex
	CPUUsage    float64
	MemoryUsage float64
	Model       string
	KeySet      bool
	LastGen     time.Duration
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func New(model string) *Metrics {
	if model == "" {
		model = "No model set"
	}
	return &Metrics{
		stopChan: make(chan struct{}),
		Model:    model,
	}
}

func (m *Metrics) SetKeyConfigured(ok bool) {
	m.mu.Lock()
	m.KeySet = ok
	m.mu.Unlock()
}

func (m *Metrics) SetLastGeneration(d time.Duration) {
	m.mu.Lock()
	m.LastGen = d
	m.mu.Unlock()
}

// Start samples until Stop is called. onUpdate, if set, runs after every
// sample.
func (m *Metrics) Start(onUpdate func()) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				m.update()
				if onUpdate != nil {
					onUpdate()
				}
			}
		}
	}()
}

func (m *Metrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Metrics) update() {
	cpuPercent, err := cpu.Percent(0, false)
	memStats, memErr := mem.VirtualMemory()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil && len(cpuPercent) > 0 {
		m.CPUUsage = cpuPercent[0]
	}
	if memErr == nil {
		m.MemoryUsage = memStats.UsedPercent
	}
}

func (m *Metrics) GetFormattedMetrics() string {
	const barWidth = 12
	const barChar = "█"
	const emptyChar = "░"

	m.mu.RLock()
	defer m.mu.RUnlock()

	var result strings.Builder

	key := "[red]no key[white]"
	if m.KeySet {
		key = "[green]key set[white]"
	}
	result.WriteString(fmt.Sprintf("[blue]%s[white]\n%s", m.Model, key))
	if m.LastGen > 0 {
		result.WriteString(fmt.Sprintf(" (%.1fs)", m.LastGen.Seconds()))
	}
	result.WriteString("\n")

	result.WriteString("CPU " + bar(m.CPUUsage, barWidth, barChar, emptyChar, "red"))
	result.WriteString(fmt.Sprintf(" %.0f%%\n", m.CPUUsage))
	result.WriteString("MEM " + bar(m.MemoryUsage, barWidth, barChar, emptyChar, "yellow"))
	result.WriteString(fmt.Sprintf(" %.0f%%", m.MemoryUsage))

	return result.String()
}

func bar(percent float64, width int, full, empty, color string) string {
	n := int(percent * float64(width) / 100)
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("[%s]%s[white]%s", color, strings.Repeat(full, n), strings.Repeat(empty, width-n))
}
