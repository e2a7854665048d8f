// Package executor provides execution environments for workload commands.
// An Executor starts a command asynchronously and hands back a TaskHandle.
// The caller that started a task holds the only handle capable of stopping
// it; there is no out-of-band process tracking.
package executor

// Executor is responsible for creating execution environment for given workload.
// It returns a TaskHandle when the workload started gracefully.
// The workload is executed asynchronously.
type Executor interface {
	// Execute executes command on underlying platform.
	Execute(command string) (TaskHandle, error)
	// Name returns user-friendly name of executor.
	Name() string
}

// Factory builds an Executor targeting a single node. Each transport backend
// provides its own factory so that the caller can fan a workload out across
// a scaling group without knowing transport details.
type Factory func(node string) (Executor, error)
