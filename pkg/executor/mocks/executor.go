// Package mocks provides testify based mocks for executor interfaces.
package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
)

// Executor is a mock implementation of executor.Executor.
type Executor struct {
	mock.Mock
}

// Execute provides a mock function.
func (m *Executor) Execute(command string) (executor.TaskHandle, error) {
	args := m.Called(command)

	var handle executor.TaskHandle
	if args.Get(0) != nil {
		handle = args.Get(0).(executor.TaskHandle)
	}
	return handle, args.Error(1)
}

// Name provides a mock function.
func (m *Executor) Name() string {
	args := m.Called()
	return args.String(0)
}

// TaskHandle is a mock implementation of executor.TaskHandle.
type TaskHandle struct {
	mock.Mock
}

// Stop provides a mock function.
func (m *TaskHandle) Stop() error {
	args := m.Called()
	return args.Error(0)
}

// Status provides a mock function.
func (m *TaskHandle) Status() executor.TaskState {
	args := m.Called()
	return args.Get(0).(executor.TaskState)
}

// ExitCode provides a mock function.
func (m *TaskHandle) ExitCode() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// Wait provides a mock function.
func (m *TaskHandle) Wait(timeout time.Duration) bool {
	args := m.Called(timeout)
	return args.Bool(0)
}

// Output provides a mock function.
func (m *TaskHandle) Output() string {
	args := m.Called()
	return args.String(0)
}

// Address provides a mock function.
func (m *TaskHandle) Address() string {
	args := m.Called()
	return args.String(0)
}
