package executor

import (
	"bytes"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Local provides the execution environment on the local machine via
// exec.Command. It runs the command as the current user through `sh -c`.
type Local struct {
}

// NewLocal returns a Local instance.
func NewLocal() Local {
	return Local{}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	log.Debug("Starting ", command)

	cmd := exec.Command("sh", "-c", command)
	// Additional process group ID is set for the parent process and its
	// children so that Stop can kill the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	output := &bytes.Buffer{}
	cmd.Stdout = output
	cmd.Stderr = output

	err := cmd.Start()
	if err != nil {
		return nil, errors.Wrapf(err, "could not start command %q", command)
	}

	log.Debug("Started with pid ", cmd.Process.Pid)

	t := &localTaskHandle{
		cmd:    cmd,
		output: output,
		done:   make(chan struct{}),
	}

	go func() {
		// Wait grabs the process state in any case (success or failure),
		// the exit code is decoded from it below.
		cmd.Wait()

		waitStatus := cmd.ProcessState.Sys().(syscall.WaitStatus)
		if waitStatus.Exited() {
			t.exitCode = waitStatus.ExitStatus()
		} else {
			// Show what signal caused the termination.
			t.exitCode = -int(waitStatus.Signal())
		}

		log.Debug("Ended ", command, " with status code: ", t.exitCode)
		close(t.done)
	}()

	return t, nil
}

// localTaskHandle implements the TaskHandle interface.
type localTaskHandle struct {
	cmd      *exec.Cmd
	output   *bytes.Buffer
	done     chan struct{}
	exitCode int

	stopOnce sync.Once
	stopErr  error
}

// Stop terminates the local task.
func (t *localTaskHandle) Stop() error {
	if t.Status() == TERMINATED {
		return nil
	}

	t.stopOnce.Do(func() {
		// We signal the entire process group.
		// The kill syscall interprets a negated PID N as the process group N belongs to.
		log.Debug("Sending SIGKILL to process group ", t.cmd.Process.Pid)
		err := syscall.Kill(-t.cmd.Process.Pid, syscall.SIGKILL)
		if err != nil {
			t.stopErr = errors.Wrapf(err, "could not kill process group %d", t.cmd.Process.Pid)
			return
		}
		<-t.done
	})

	return t.stopErr
}

// Status returns a state of the task.
func (t *localTaskHandle) Status() TaskState {
	select {
	case <-t.done:
		return TERMINATED
	default:
		return RUNNING
	}
}

// ExitCode returns an exit code of the task. Returns error if task is not terminated.
func (t *localTaskHandle) ExitCode() (int, error) {
	if t.Status() != TERMINATED {
		return 0, errors.New("task is not terminated")
	}
	return t.exitCode, nil
}

// Wait blocks until the task terminates or the timeout elapses.
func (t *localTaskHandle) Wait(timeout time.Duration) bool {
	if timeout == 0 {
		<-t.done
		return true
	}

	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Output returns collected stdout and stderr of the task.
func (t *localTaskHandle) Output() string {
	return t.output.String()
}

// Address returns address of the node the task was executed on.
func (t *localTaskHandle) Address() string {
	return "127.0.0.1"
}
