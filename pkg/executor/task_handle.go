package executor

import (
	"time"
)

// TaskState is an enum presenting current task state.
type TaskState int

const (
	// RUNNING task state means that task is still running.
	RUNNING TaskState = iota
	// TERMINATED task state means that task completed or stopped.
	TERMINATED
)

// TaskHandle represents a process which can be stopped or monitored.
type TaskHandle interface {
	// Stop stops a task. It is safe to call on an already terminated task.
	Stop() error
	// Status returns a state of the task.
	Status() TaskState
	// ExitCode returns an exitCode. If task is not terminated it returns error.
	ExitCode() (int, error)
	// Wait blocks until the task terminates or the timeout elapses.
	// Zero timeout means wait indefinitely.
	// It returns true if the task is terminated.
	Wait(timeout time.Duration) bool
	// Output returns collected stdout and stderr of the task.
	Output() string
	// Address returns address of the node the task was executed on.
	Address() string
}
