package telemetry

import (
	"sync"
)

// TimeSeries is an append-only sequence of samples with monotonically
// increasing length. It is safe to append concurrently with reads; readers
// always observe a consistent prefix.
type TimeSeries struct {
	mu      sync.RWMutex
	samples []Sample
}

// NewTimeSeries returns an empty time series.
func NewTimeSeries() *TimeSeries {
	return &TimeSeries{}
}

// Append adds one sample at the end of the series.
func (t *TimeSeries) Append(sample Sample) {
	t.mu.Lock()
	t.samples = append(t.samples, sample)
	t.mu.Unlock()
}

// Len returns the current length of the series.
func (t *TimeSeries) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.samples)
}

// Snapshot returns a copy of the whole series.
func (t *TimeSeries) Snapshot() []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Range returns a copy of samples in the half open interval [from, to).
// Bounds are clamped to the current length.
func (t *TimeSeries) Range(from, to int) []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if from < 0 {
		from = 0
	}
	if to > len(t.samples) {
		to = len(t.samples)
	}
	if from >= to {
		return nil
	}
	out := make([]Sample, to-from)
	copy(out, t.samples[from:to])
	return out
}
