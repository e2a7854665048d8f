package telemetry

import (
	"os"
	"path"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTelemetryWriters(t *testing.T) {
	Convey("While persisting a time series to CSV files", t, func() {
		tempDir, err := os.MkdirTemp("", "telemetry_writer_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		timestamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		series := NewTimeSeries()
		series.Append(Sample{
			Timestamp:     timestamp,
			SourceID:      HostSourceID,
			CPUPercent:    12.5,
			MemoryPercent: 50,
			Load1:         0.5,
			Load5:         1,
			Load15:        1.5,
		})
		series.Append(Sample{
			Timestamp:     timestamp.Add(time.Second),
			SourceID:      "node1",
			CPUPercent:    25,
			MemoryUsedMB:  1024,
			MemoryTotalMB: 4096,
		})
		series.Append(Sample{
			Timestamp:   timestamp.Add(2 * time.Second),
			SourceID:    "node1",
			Unavailable: true,
		})

		Convey("The host file should contain only host rows in the documented layout", func() {
			hostPath := path.Join(tempDir, "telemetry_host.csv")
			So(WriteHostCSV(series, hostPath), ShouldBeNil)

			content, err := os.ReadFile(hostPath)
			So(err, ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(string(content)), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, "timestamp,cpu_percent,memory_percent,load_1,load_5,load_15")
			So(lines[1], ShouldEqual, "2024-05-01T12:00:00Z,12.50,50.00,0.50,1.00,1.50")
		})

		Convey("The node file should keep degraded rows with empty metric fields", func() {
			nodePath := path.Join(tempDir, "telemetry_nodes.csv")
			So(WriteNodeCSV(series, nodePath), ShouldBeNil)

			content, err := os.ReadFile(nodePath)
			So(err, ShouldBeNil)

			lines := strings.Split(strings.TrimSpace(string(content)), "\n")
			So(lines, ShouldHaveLength, 3)
			So(lines[0], ShouldEqual, "timestamp,node_id,cpu_percent,memory_used_mb,memory_total_mb")
			So(lines[1], ShouldEqual, "2024-05-01T12:00:01Z,node1,25.00,1024.00,4096.00")
			So(lines[2], ShouldEqual, "2024-05-01T12:00:02Z,node1,,,")
		})
	})
}
