package telemetry

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const statFixture = `cpu  100 0 100 700 100 0 0 0 0 0
cpu0 50 0 50 350 50 0 0 0 0 0
intr 12345
`

const statFixtureLater = `cpu  200 0 200 1200 200 0 0 0 0 0
cpu0 100 0 100 600 100 0 0 0 0 0
intr 23456
`

const meminfoFixture = `MemTotal:        8388608 kB
MemFree:         2097152 kB
MemAvailable:    4194304 kB
Buffers:          524288 kB
`

func TestProcfsParsing(t *testing.T) {
	Convey("While parsing /proc/stat content", t, func() {
		Convey("The aggregate cpu line should yield idle and total counters", func() {
			counters, err := parseCPUStat(statFixture)
			So(err, ShouldBeNil)
			So(counters.total, ShouldEqual, uint64(1000))
			So(counters.idle, ShouldEqual, uint64(800))
		})

		Convey("Content without an aggregate cpu line should yield an error", func() {
			_, err := parseCPUStat("intr 12345\nctxt 6789\n")
			So(err, ShouldNotBeNil)
		})

		Convey("Busy percentage should be derived from counter deltas", func() {
			previous, err := parseCPUStat(statFixture)
			So(err, ShouldBeNil)
			current, err := parseCPUStat(statFixtureLater)
			So(err, ShouldBeNil)

			// Delta total is 800 jiffies of which 600 were idle or iowait.
			So(cpuPercent(previous, current), ShouldAlmostEqual, 25.0, 0.01)
		})

		Convey("Identical consecutive readings should yield zero usage", func() {
			counters, err := parseCPUStat(statFixture)
			So(err, ShouldBeNil)
			So(cpuPercent(counters, counters), ShouldEqual, 0)
		})
	})

	Convey("While parsing /proc/meminfo content", t, func() {
		Convey("Total and used memory should be reported in megabytes", func() {
			totalMB, usedMB, err := parseMeminfo(meminfoFixture)
			So(err, ShouldBeNil)
			So(totalMB, ShouldAlmostEqual, 8192, 0.01)
			So(usedMB, ShouldAlmostEqual, 4096, 0.01)
		})

		Convey("Missing MemAvailable should yield an error", func() {
			_, _, err := parseMeminfo("MemTotal: 8388608 kB\n")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("While parsing /proc/loadavg content", t, func() {
		Convey("All three load averages should be extracted", func() {
			load1, load5, load15, err := parseLoadAvg("0.52 1.04 2.08 2/345 6789\n")
			So(err, ShouldBeNil)
			So(load1, ShouldAlmostEqual, 0.52)
			So(load5, ShouldAlmostEqual, 1.04)
			So(load15, ShouldAlmostEqual, 2.08)
		})

		Convey("Truncated content should yield an error", func() {
			_, _, _, err := parseLoadAvg("0.52 1.04")
			So(err, ShouldNotBeNil)
		})
	})
}
