// Package app provides the editor session wiring and coordination.
package app

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks editor session performance: how long commands take to
// apply, how often they're rejected as no-ops, and how long a render
// build (layout relayout + encode) takes. There is no frame loop here —
// the core runs one command at a time and renders on demand — so these
// counters are keyed on command and build invocations rather than a
// fixed render cadence.
type Metrics struct {
	mu sync.RWMutex

	// Command dispatch timing.
	commandCount    atomic.Uint64
	commandTotalNs  atomic.Int64
	commandMinNs    atomic.Int64
	commandMaxNs    atomic.Int64
	lastCommandNs   atomic.Int64
	rejectedCommand atomic.Uint64

	// Render build timing (layout relayout + encode combined).
	buildCount   atomic.Uint64
	buildTotalNs atomic.Int64

	// Relayout timing in isolation, so a host can tell how much of a
	// build's cost is layout versus encoding.
	relayoutCount   atomic.Uint64
	relayoutTotalNs atomic.Int64

	// Undo/redo activity.
	undoCount atomic.Uint64
	redoCount atomic.Uint64

	// Memory (sampled periodically by the host, e.g. from runtime.MemStats).
	lastHeapBytes atomic.Uint64
	lastGCPauseNs atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.commandMinNs.Store(1<<63 - 1)
	return m
}

// RecordCommand records a successfully applied command's duration.
func (m *Metrics) RecordCommand(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.commandCount.Add(1)
	m.commandTotalNs.Add(ns)
	m.lastCommandNs.Store(ns)

	for {
		old := m.commandMinNs.Load()
		if ns >= old {
			break
		}
		if m.commandMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.commandMaxNs.Load()
		if ns <= old {
			break
		}
		if m.commandMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordRejected records a command that returned false as a no-op.
func (m *Metrics) RecordRejected() {
	m.rejectedCommand.Add(1)
}

// RecordBuild records a render build's total duration.
func (m *Metrics) RecordBuild(duration time.Duration) {
	m.buildCount.Add(1)
	m.buildTotalNs.Add(duration.Nanoseconds())
}

// RecordRelayout records a layout relayout pass's duration.
func (m *Metrics) RecordRelayout(duration time.Duration) {
	m.relayoutCount.Add(1)
	m.relayoutTotalNs.Add(duration.Nanoseconds())
}

// RecordUndo records an undo.
func (m *Metrics) RecordUndo() { m.undoCount.Add(1) }

// RecordRedo records a redo.
func (m *Metrics) RecordRedo() { m.redoCount.Add(1) }

// UpdateMemory updates memory statistics.
func (m *Metrics) UpdateMemory(heapBytes uint64, gcPauseNs int64) {
	m.lastHeapBytes.Store(heapBytes)
	m.lastGCPauseNs.Store(gcPauseNs)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	commandCount := m.commandCount.Load()
	buildCount := m.buildCount.Load()
	relayoutCount := m.relayoutCount.Load()

	var avgCommandNs int64
	if commandCount > 0 {
		avgCommandNs = m.commandTotalNs.Load() / int64(commandCount)
	}
	var avgBuildNs int64
	if buildCount > 0 {
		avgBuildNs = m.buildTotalNs.Load() / int64(buildCount)
	}
	var avgRelayoutNs int64
	if relayoutCount > 0 {
		avgRelayoutNs = m.relayoutTotalNs.Load() / int64(relayoutCount)
	}

	minCommandNs := m.commandMinNs.Load()
	if minCommandNs == 1<<63-1 {
		minCommandNs = 0
	}

	return MetricsSnapshot{
		Uptime:           time.Since(m.startTime),
		CommandCount:     commandCount,
		AvgCommandNs:     avgCommandNs,
		MinCommandNs:     minCommandNs,
		MaxCommandNs:     m.commandMaxNs.Load(),
		LastCommandNs:    m.lastCommandNs.Load(),
		RejectedCommands: m.rejectedCommand.Load(),
		BuildCount:       buildCount,
		AvgBuildNs:       avgBuildNs,
		RelayoutCount:    relayoutCount,
		AvgRelayoutNs:    avgRelayoutNs,
		UndoCount:        m.undoCount.Load(),
		RedoCount:        m.redoCount.Load(),
		HeapBytes:        m.lastHeapBytes.Load(),
		LastGCPauseNs:    m.lastGCPauseNs.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.commandCount.Store(0)
	m.commandTotalNs.Store(0)
	m.commandMinNs.Store(1<<63 - 1)
	m.commandMaxNs.Store(0)
	m.lastCommandNs.Store(0)
	m.rejectedCommand.Store(0)
	m.buildCount.Store(0)
	m.buildTotalNs.Store(0)
	m.relayoutCount.Store(0)
	m.relayoutTotalNs.Store(0)
	m.undoCount.Store(0)
	m.redoCount.Store(0)
	m.lastHeapBytes.Store(0)
	m.lastGCPauseNs.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime           time.Duration
	CommandCount     uint64
	AvgCommandNs     int64
	MinCommandNs     int64
	MaxCommandNs     int64
	LastCommandNs    int64
	RejectedCommands uint64
	BuildCount       uint64
	AvgBuildNs       int64
	RelayoutCount    uint64
	AvgRelayoutNs    int64
	UndoCount        uint64
	RedoCount        uint64
	HeapBytes        uint64
	LastGCPauseNs    int64
}

// RejectRate returns the fraction of dispatched commands that were
// rejected as no-ops, in percent.
func (s MetricsSnapshot) RejectRate() float64 {
	total := s.CommandCount + s.RejectedCommands
	if total == 0 {
		return 0
	}
	return float64(s.RejectedCommands) / float64(total) * 100
}

// HeapMB returns heap size in megabytes.
func (s MetricsSnapshot) HeapMB() float64 {
	return float64(s.HeapBytes) / (1024 * 1024)
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// ElapsedMs returns the elapsed time in milliseconds.
func (t *Timer) ElapsedMs() float64 {
	return float64(t.Elapsed().Nanoseconds()) / 1e6
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}

var (
	appMetrics     *Metrics
	appMetricsOnce sync.Once
)

// GetMetrics returns the application-wide metrics instance.
func GetMetrics() *Metrics {
	appMetricsOnce.Do(func() {
		if appMetrics == nil {
			appMetrics = NewMetrics()
		}
	})
	return appMetrics
}

// SetMetrics sets the application-wide metrics instance.
func SetMetrics(m *Metrics) {
	appMetrics = m
}
