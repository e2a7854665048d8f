// Package runner fans a workload command out across the nodes of a scaling
// group through a transport backend and measures how long the full fan-out
// takes. It adapts transport executors to the scheduler: one Run call is one
// timed unit of work.
package runner

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// Outcome is the result of one fan-out run. Duration is wall clock time from
// the first dispatch until the last node finished (or until the timeout).
type Outcome struct {
	Status   experiment.Status
	Duration time.Duration
}

// Runner executes configurations through per-backend executor factories.
// It performs no retries; retry policy belongs to the scheduler.
type Runner struct {
	factories map[experiment.Backend]executor.Factory
	timeout   time.Duration
}

// NewRunner returns a runner with the given per-backend factories and
// per-run timeout.
func NewRunner(factories map[experiment.Backend]executor.Factory, timeout time.Duration) *Runner {
	return &Runner{
		factories: factories,
		timeout:   timeout,
	}
}

type nodeResult struct {
	node     string
	exitCode int
	timedOut bool
	err      error
}

// Run executes the configuration's workload on every node of its group and
// blocks until all nodes finished or the per-run timeout elapsed. A non-zero
// exit on any node yields StatusFailure; exceeding the timeout yields
// StatusTimeout and stops all still-running tasks. An error is returned only
// when the configuration cannot be dispatched at all.
func (r *Runner) Run(config experiment.Configuration) (Outcome, error) {
	factory, ok := r.factories[config.Backend]
	if !ok {
		return Outcome{}, errors.Errorf("no executor factory registered for backend %q", config.Backend)
	}

	nodes := config.NodeSet()
	if len(nodes) == 0 {
		return Outcome{}, errors.Errorf("configuration %q has no target nodes", config.ID())
	}

	log.Debugf("Dispatching %q to %d node(s)", config.ID(), len(nodes))

	start := time.Now()
	deadline := start.Add(r.timeout)
	results := make(chan nodeResult, len(nodes))

	var wg sync.WaitGroup
	for _, node := range nodes {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			results <- runOnNode(factory, node, config.Workload.Command, deadline)
		}(node)
	}
	wg.Wait()
	close(results)

	duration := time.Since(start)
	status := experiment.StatusSuccess
	for result := range results {
		switch {
		case result.timedOut:
			// Timeout dominates: the measured duration is not comparable.
			status = experiment.StatusTimeout
		case result.err != nil:
			if status != experiment.StatusTimeout {
				status = experiment.StatusFailure
			}
			log.Warnf("Run %q failed on node %q: %v", config.ID(), result.node, result.err)
		case result.exitCode != 0:
			if status != experiment.StatusTimeout {
				status = experiment.StatusFailure
			}
			log.Warnf("Run %q exited with code %d on node %q", config.ID(), result.exitCode, result.node)
		}
	}

	return Outcome{Status: status, Duration: duration}, nil
}

// runOnNode starts the command on one node and waits until it terminates or
// the shared deadline passes. On deadline the task is stopped so no workload
// outlives its run.
func runOnNode(factory executor.Factory, node, command string, deadline time.Time) nodeResult {
	exec, err := factory(node)
	if err != nil {
		return nodeResult{node: node, err: errors.Wrapf(err, "cannot build executor for node %q", node)}
	}

	handle, err := exec.Execute(command)
	if err != nil {
		return nodeResult{node: node, err: errors.Wrapf(err, "cannot start workload on node %q", node)}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 || !handle.Wait(remaining) {
		if err := handle.Stop(); err != nil {
			log.Warnf("Could not stop timed out task on node %q: %v", node, err)
		}
		return nodeResult{node: node, timedOut: true}
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		return nodeResult{node: node, err: errors.Wrapf(err, "cannot read exit code from node %q", node)}
	}
	return nodeResult{node: node, exitCode: exitCode}
}
