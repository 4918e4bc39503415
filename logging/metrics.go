package logging

import "sync"

// Metrics keeps simple uint64 counters and gauges keyed by name. It backs
// the telemetry adapters used by the simulation packages.
type Metrics struct {
	mu     sync.RWMutex
	values map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

// TelemetryAdd increments the named counter by delta.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.values[key] += delta
	m.mu.Unlock()
}

// TelemetryStore overwrites the named gauge.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

// TelemetryValue reads back a counter or gauge, mainly for tests and the
// diagnostics snapshot.
func (m *Metrics) TelemetryValue(key string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// TelemetrySnapshot copies every tracked value.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied
}
