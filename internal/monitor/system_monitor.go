// Package monitor samples host resource usage (CPU, memory, disk) on a
// timer so internal/httpserver can expose it on a health endpoint, and
// logs a warning whenever a sample crosses DefaultThresholds.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/onsetgo/correntropy/internal/logging"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is one sample of host resource usage.
type Snapshot struct {
	Time        time.Time
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
}

// Thresholds marks a snapshot as degraded once any of these are exceeded.
type Thresholds struct {
	CPUPercent  float64
	MemPercent  float64
	DiskPercent float64
}

// DefaultThresholds matches the conservative defaults a long-running
// capture session should back off at.
func DefaultThresholds() Thresholds {
	return Thresholds{CPUPercent: 90, MemPercent: 90, DiskPercent: 95}
}

// Degraded reports whether snap exceeds any threshold.
func (t Thresholds) Degraded(snap Snapshot) bool {
	return snap.CPUPercent >= t.CPUPercent || snap.MemPercent >= t.MemPercent || snap.DiskPercent >= t.DiskPercent
}

// Monitor periodically samples host resources for one filesystem path
// (typically the datastore/backup directory).
type Monitor struct {
	path     string
	interval time.Duration

	mu   sync.RWMutex
	last Snapshot

	stop chan struct{}
	wg   sync.WaitGroup
}

// New builds a monitor sampling path every interval.
func New(path string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{path: path, interval: interval, stop: make(chan struct{})}
}

// Start launches the sampling loop; call Stop to end it.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		logger := logging.ForService("monitor")
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.sampleOnce(logger)
		for {
			select {
			case <-ticker.C:
				m.sampleOnce(logger)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the sampling loop and waits for it to exit.
func (m *Monitor) Stop() {
	close(m.stop)
	m.wg.Wait()
}

func (m *Monitor) sampleOnce(logger interface{ Warn(string, ...any) }) {
	snap := Snapshot{Time: time.Now()}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		snap.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemPercent = vm.UsedPercent
	}
	if du, err := disk.Usage(m.path); err == nil {
		snap.DiskPercent = du.UsedPercent
	}

	m.mu.Lock()
	m.last = snap
	m.mu.Unlock()

	if DefaultThresholds().Degraded(snap) {
		logger.Warn("host resources degraded", "cpu", snap.CPUPercent, "mem", snap.MemPercent, "disk", snap.DiskPercent)
	}
}

// Last returns the most recent snapshot taken.
func (m *Monitor) Last() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
