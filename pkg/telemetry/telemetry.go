// Package telemetry produces a continuous, crash tolerant time series of
// resource usage for the controller host and for every active target node,
// independent of which experiment is running.
package telemetry

import (
	"time"
)

// HostSourceID identifies the controller host in the time series.
const HostSourceID = "host"

// Sample is a point-in-time resource reading for one source.
// Load averages are reported for the host only.
type Sample struct {
	Timestamp     time.Time
	SourceID      string
	CPUPercent    float64
	MemoryUsedMB  float64
	MemoryTotalMB float64
	MemoryPercent float64
	Load1         float64
	Load5         float64
	Load15        float64

	// Unavailable marks a degraded sample: the source could not be read at
	// this instant. Such samples keep the series continuous without faking
	// metric values.
	Unavailable bool
}

// Source is the capability that, when polled, returns an instantaneous
// resource reading. Implementations keep whatever state they need to derive
// rates between polls.
type Source interface {
	// ID returns the source identifier recorded in samples.
	ID() string
	// Collect reads the source once.
	Collect() (Sample, error)
}
