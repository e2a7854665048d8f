package runner

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor/mocks"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

func testConfiguration(nodes ...string) experiment.Configuration {
	return experiment.Configuration{
		Backend:   experiment.BackendSSHLib,
		Group:     experiment.ScalingGroup{Name: "small", Nodes: nodes},
		Workload:  experiment.Workload{Name: "ping", Command: "true"},
		Iteration: 0,
		Phase:     experiment.PhaseMeasurement,
	}
}

func successfulHandle() *mocks.TaskHandle {
	handle := new(mocks.TaskHandle)
	handle.On("Wait", mock.Anything).Return(true)
	handle.On("ExitCode").Return(0, nil)
	return handle
}

func TestRunner(t *testing.T) {
	Convey("While running workloads through mocked executors", t, func() {
		perNode := map[string]*mocks.Executor{}
		factory := func(node string) (executor.Executor, error) {
			exec, ok := perNode[node]
			if !ok {
				return nil, errors.Errorf("unexpected node %q", node)
			}
			return exec, nil
		}
		factories := map[experiment.Backend]executor.Factory{
			experiment.BackendSSHLib: factory,
		}
		runner := NewRunner(factories, time.Second)

		Convey("All nodes succeeding should yield a successful outcome", func() {
			for _, node := range []string{"node1", "node2", "node3"} {
				exec := new(mocks.Executor)
				exec.On("Execute", "true").Return(successfulHandle(), nil)
				perNode[node] = exec
			}

			outcome, err := runner.Run(testConfiguration("node1", "node2", "node3"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusSuccess)
			So(outcome.Duration, ShouldBeGreaterThan, 0)
			for _, exec := range perNode {
				exec.AssertExpectations(t)
			}
		})

		Convey("A non-zero exit on one node should fail the whole run", func() {
			failing := new(mocks.TaskHandle)
			failing.On("Wait", mock.Anything).Return(true)
			failing.On("ExitCode").Return(2, nil)

			okExec := new(mocks.Executor)
			okExec.On("Execute", "true").Return(successfulHandle(), nil)
			badExec := new(mocks.Executor)
			badExec.On("Execute", "true").Return(failing, nil)
			perNode["node1"] = okExec
			perNode["node2"] = badExec

			outcome, err := runner.Run(testConfiguration("node1", "node2"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusFailure)
		})

		Convey("A node exceeding the timeout should yield a timeout and be stopped", func() {
			hanging := new(mocks.TaskHandle)
			hanging.On("Wait", mock.Anything).Return(false)
			hanging.On("Stop").Return(nil)

			exec := new(mocks.Executor)
			exec.On("Execute", "true").Return(hanging, nil)
			perNode["node1"] = exec

			outcome, err := runner.Run(testConfiguration("node1"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusTimeout)
			hanging.AssertCalled(t, "Stop")
		})

		Convey("Timeout should dominate over failures on other nodes", func() {
			hanging := new(mocks.TaskHandle)
			hanging.On("Wait", mock.Anything).Return(false)
			hanging.On("Stop").Return(nil)

			failing := new(mocks.TaskHandle)
			failing.On("Wait", mock.Anything).Return(true)
			failing.On("ExitCode").Return(1, nil)

			hangingExec := new(mocks.Executor)
			hangingExec.On("Execute", "true").Return(hanging, nil)
			failingExec := new(mocks.Executor)
			failingExec.On("Execute", "true").Return(failing, nil)
			perNode["node1"] = hangingExec
			perNode["node2"] = failingExec

			outcome, err := runner.Run(testConfiguration("node1", "node2"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusTimeout)
		})

		Convey("A task that cannot be started should fail the run, not error it", func() {
			exec := new(mocks.Executor)
			exec.On("Execute", "true").Return(nil, errors.New("connection refused"))
			perNode["node1"] = exec

			outcome, err := runner.Run(testConfiguration("node1"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusFailure)
		})

		Convey("Duplicate nodes in a group should be dispatched once", func() {
			exec := new(mocks.Executor)
			exec.On("Execute", "true").Return(successfulHandle(), nil).Once()
			perNode["node1"] = exec

			outcome, err := runner.Run(testConfiguration("node1", "node1"))
			So(err, ShouldBeNil)
			So(outcome.Status, ShouldEqual, experiment.StatusSuccess)
			exec.AssertExpectations(t)
		})

		Convey("An unknown backend should return an error", func() {
			config := testConfiguration("node1")
			config.Backend = experiment.Backend("telnet")

			_, err := runner.Run(config)
			So(err, ShouldNotBeNil)
		})

		Convey("A configuration without nodes should return an error", func() {
			_, err := runner.Run(testConfiguration())
			So(err, ShouldNotBeNil)
		})
	})
}
