package report

import (
	"bytes"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/analysis"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

func records(backend experiment.Backend, durationsSeconds ...float64) []experiment.RunRecord {
	out := make([]experiment.RunRecord, 0, len(durationsSeconds))
	for i, seconds := range durationsSeconds {
		out = append(out, experiment.RunRecord{
			Config: experiment.Configuration{
				Backend:   backend,
				Group:     experiment.ScalingGroup{Name: "small", Nodes: []string{"node1"}},
				Workload:  experiment.Workload{Name: "ping", Command: "true"},
				Iteration: i + 1,
				Phase:     experiment.PhaseMeasurement,
			},
			Duration: time.Duration(seconds * float64(time.Second)),
			Status:   experiment.StatusSuccess,
		})
	}
	return out
}

func TestReport(t *testing.T) {
	Convey("While rendering a suite report", t, func() {
		Convey("A distinguishable comparison should name the faster backend", func() {
			all := append(
				records(experiment.BackendControlPersist, 10, 12, 11, 13, 10),
				records(experiment.BackendSSHLib, 20, 22, 19, 21, 23)...)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)

			var buffer bytes.Buffer
			report.Render(&buffer)
			output := buffer.String()

			So(output, ShouldContainSubstring, "Summary statistics")
			So(output, ShouldContainSubstring, "controlpersist")
			So(output, ShouldContainSubstring, "sshlib")
			So(output, ShouldContainSubstring, "controlpersist faster by")
			So(output, ShouldContainSubstring, "No anomalous runs detected.")
		})

		Convey("Insufficient data should be visibly distinct from non-significance", func() {
			all := append(
				records(experiment.BackendControlPersist, 10),
				records(experiment.BackendSSHLib, 20, 22, 19)...)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)

			var buffer bytes.Buffer
			report.Render(&buffer)
			output := buffer.String()

			So(output, ShouldContainSubstring, "insufficient data")
			So(output, ShouldNotContainSubstring, "no significant difference")
		})

		Convey("Anomalous runs should be listed with their z-scores", func() {
			all := records(experiment.BackendControlPersist, 10.2, 10.5, 9.8, 10.1, 100)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)
			So(report.Anomalies, ShouldHaveLength, 1)

			var buffer bytes.Buffer
			report.Render(&buffer)
			So(buffer.String(), ShouldContainSubstring, "Anomalous runs")
			So(buffer.String(), ShouldContainSubstring, "100.000s")
		})

		Convey("Analyzer output should persist as CSV files", func() {
			all := append(
				records(experiment.BackendControlPersist, 10, 12, 11, 13, 10),
				records(experiment.BackendSSHLib, 20, 22, 19, 21, 23)...)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)

			dir, err := os.MkdirTemp("", "report")
			So(err, ShouldBeNil)
			defer os.RemoveAll(dir)
			So(report.WriteFiles(dir), ShouldBeNil)

			summary, err := os.ReadFile(path.Join(dir, SummaryFileName))
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(summary)), "\n")
			So(lines, ShouldHaveLength, 3)
			So(lines[0], ShouldEqual, "backend,scaling_group,workload,sample_count,mean,std_dev")
			So(lines[1], ShouldEqual, "controlpersist,small,ping,5,11.200000,1.303840")

			significance, err := os.ReadFile(path.Join(dir, SignificanceFileName))
			So(err, ShouldBeNil)
			rows := strings.Split(strings.TrimSpace(string(significance)), "\n")
			So(rows, ShouldHaveLength, 2)
			So(rows[0], ShouldEqual, "scaling_group,workload,backend_a,backend_b,p_value,distinguishable")
			So(rows[1], ShouldStartWith, "small,ping,controlpersist,sshlib,")
			So(rows[1], ShouldEndWith, ",true")
		})

		Convey("Insufficient data should persist as null fields, not verdicts", func() {
			all := append(
				records(experiment.BackendControlPersist, 10),
				records(experiment.BackendSSHLib, 20, 22, 19)...)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)

			dir, err := os.MkdirTemp("", "report")
			So(err, ShouldBeNil)
			defer os.RemoveAll(dir)
			So(report.WriteFiles(dir), ShouldBeNil)

			summary, err := os.ReadFile(path.Join(dir, SummaryFileName))
			So(err, ShouldBeNil)
			So(string(summary), ShouldContainSubstring, "controlpersist,small,ping,1,10.000000,\n")

			significance, err := os.ReadFile(path.Join(dir, SignificanceFileName))
			So(err, ShouldBeNil)
			So(string(significance), ShouldContainSubstring, "small,ping,controlpersist,sshlib,,\n")
		})

		Convey("Reliability rows should count failures", func() {
			all := records(experiment.BackendControlPersist, 10, 11)
			failed := all[0]
			failed.Config.Iteration = 3
			failed.Status = experiment.StatusFailure
			failed.Duration = 0
			all = append(all, failed)

			report, err := Build(all, analysis.DefaultConfidence, analysis.DefaultAnomalyThreshold)
			So(err, ShouldBeNil)
			So(report.Summaries[0].Failures, ShouldEqual, 1)

			var buffer bytes.Buffer
			report.Render(&buffer)
			So(buffer.String(), ShouldContainSubstring, "67%")
		})
	})
}
