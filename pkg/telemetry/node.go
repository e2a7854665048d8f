package telemetry

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
)

// nodeProbeCommand reads the same procfs files the host source uses, with a
// separator so the output can be split deterministically.
const nodeProbeCommand = "cat /proc/stat; echo ---; cat /proc/meminfo"

// NodeSource polls a single target node over an executor. Per-node CPU usage
// is derived from counter deltas between consecutive polls, the same way the
// host source does it.
type NodeSource struct {
	node        string
	exec        executor.Executor
	readTimeout time.Duration
	previous    cpuCounters
	initialized bool
}

// NewNodeSource returns a Source polling given node through the executor
// built by the factory.
func NewNodeSource(node string, factory executor.Factory, readTimeout time.Duration) (*NodeSource, error) {
	exec, err := factory(node)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot build telemetry executor for node %q", node)
	}
	return &NodeSource{
		node:        node,
		exec:        exec,
		readTimeout: readTimeout,
	}, nil
}

// ID returns the source identifier recorded in samples.
func (n *NodeSource) ID() string {
	return n.node
}

// Collect runs the probe command on the node and parses its output.
func (n *NodeSource) Collect() (Sample, error) {
	handle, err := n.exec.Execute(nodeProbeCommand)
	if err != nil {
		return Sample{}, errors.Wrapf(err, "cannot start telemetry probe on node %q", n.node)
	}

	if !handle.Wait(n.readTimeout) {
		handle.Stop()
		return Sample{}, errors.Errorf("telemetry probe on node %q timed out", n.node)
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return Sample{}, err
	}
	if exitCode != 0 {
		return Sample{}, errors.Errorf("telemetry probe on node %q exited with code %d", n.node, exitCode)
	}

	parts := strings.SplitN(handle.Output(), "---", 2)
	if len(parts) != 2 {
		return Sample{}, errors.Errorf("malformed telemetry probe output from node %q", n.node)
	}

	counters, err := parseCPUStat(parts[0])
	if err != nil {
		return Sample{}, errors.Wrapf(err, "node %q", n.node)
	}
	totalMB, usedMB, err := parseMeminfo(parts[1])
	if err != nil {
		return Sample{}, errors.Wrapf(err, "node %q", n.node)
	}

	sample := Sample{
		Timestamp:     time.Now(),
		SourceID:      n.node,
		MemoryUsedMB:  usedMB,
		MemoryTotalMB: totalMB,
	}
	if totalMB > 0 {
		sample.MemoryPercent = 100 * usedMB / totalMB
	}
	if n.initialized {
		sample.CPUPercent = cpuPercent(n.previous, counters)
	}
	n.previous = counters
	n.initialized = true

	return sample, nil
}
