// Package experiment defines the configuration matrix of a benchmark suite
// and the records produced while driving it.
package experiment

import (
	"fmt"
	"sort"
	"time"
)

// Backend is the transport mechanism used to execute remote commands.
type Backend string

const (
	// BackendControlPersist is the OpenSSH client with ControlMaster multiplexing.
	BackendControlPersist Backend = "controlpersist"
	// BackendSSHLib is the pure Go SSH library transport.
	BackendSSHLib Backend = "sshlib"
)

// KnownBackends lists transports the run executor can drive.
var KnownBackends = []Backend{BackendControlPersist, BackendSSHLib}

// Phase distinguishes priming runs from measured runs.
type Phase string

const (
	// PhaseWarmup marks unmeasured priming runs excluded from analysis.
	PhaseWarmup Phase = "warmup"
	// PhaseMeasurement marks timed runs feeding the statistical analyzer.
	PhaseMeasurement Phase = "measurement"
)

// Status is the outcome of a single run.
type Status string

const (
	// StatusSuccess means the workload completed with exit code zero.
	StatusSuccess Status = "success"
	// StatusFailure means the workload failed or could not be started.
	StatusFailure Status = "failure"
	// StatusTimeout means the workload exceeded the per-run timeout.
	StatusTimeout Status = "timeout"
)

// ScalingGroup is a named subset of target nodes of fixed size.
type ScalingGroup struct {
	Name  string   `yaml:"name"`
	Nodes []string `yaml:"nodes"`
}

// Workload is a named command executed against every node of a group.
type Workload struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

// Configuration identifies one scheduled unit of work. It is immutable;
// backend switches are expressed by constructing a new value, never by
// mutating shared state.
type Configuration struct {
	Backend   Backend
	Group     ScalingGroup
	Workload  Workload
	Iteration int
	Phase     Phase
}

// ID renders the configuration as a unique, log-friendly identifier.
func (c Configuration) ID() string {
	return fmt.Sprintf("%s_%s_%s_%s_%d", c.Backend, c.Group.Name, c.Workload.Name, c.Phase, c.Iteration)
}

// SeriesKey identifies the iteration series this configuration belongs to.
// Iterations within one series must execute in order.
func (c Configuration) SeriesKey() string {
	return fmt.Sprintf("%s|%s|%s", c.Backend, c.Group.Name, c.Workload.Name)
}

// NodeSet returns the sorted, de-duplicated set of nodes this configuration
// targets. Two configurations with intersecting node sets must never run
// concurrently.
func (c Configuration) NodeSet() []string {
	set := map[string]struct{}{}
	for _, node := range c.Group.Nodes {
		set[node] = struct{}{}
	}
	nodes := make([]string, 0, len(set))
	for node := range set {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

func (c Configuration) String() string {
	return c.ID()
}

// RunRecord is created when a configuration is dispatched and completed once
// on termination. It is terminal after End is set.
type RunRecord struct {
	Config   Configuration
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Status   Status

	// WindowStart and WindowEnd are offsets into the suite-wide telemetry
	// series covering this run's execution. The samples themselves are not
	// copied.
	WindowStart int
	WindowEnd   int
}

// HasTelemetry tells whether a non-empty telemetry window was recorded.
func (r RunRecord) HasTelemetry() bool {
	return r.WindowEnd > r.WindowStart
}

// GroupKey identifies the statistical group of the record.
func (r RunRecord) GroupKey() string {
	return r.Config.SeriesKey()
}

func (r RunRecord) String() string {
	return fmt.Sprintf("%s status=%s duration=%s", r.Config.ID(), r.Status, r.Duration)
}
