package telemetry

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTimeSeries(t *testing.T) {
	Convey("While using an in-memory time series", t, func() {
		series := NewTimeSeries()

		Convey("A fresh series should be empty", func() {
			So(series.Len(), ShouldEqual, 0)
			So(series.Snapshot(), ShouldBeEmpty)
		})

		Convey("Appended samples should be readable in order", func() {
			for i := 0; i < 5; i++ {
				series.Append(Sample{SourceID: HostSourceID, CPUPercent: float64(i)})
			}
			snapshot := series.Snapshot()
			So(snapshot, ShouldHaveLength, 5)
			for i, sample := range snapshot {
				So(sample.CPUPercent, ShouldEqual, float64(i))
			}
		})

		Convey("Range should return the half open interval with clamped bounds", func() {
			for i := 0; i < 10; i++ {
				series.Append(Sample{CPUPercent: float64(i)})
			}

			window := series.Range(3, 6)
			So(window, ShouldHaveLength, 3)
			So(window[0].CPUPercent, ShouldEqual, 3)
			So(window[2].CPUPercent, ShouldEqual, 5)

			So(series.Range(-5, 2), ShouldHaveLength, 2)
			So(series.Range(8, 100), ShouldHaveLength, 2)
			So(series.Range(6, 6), ShouldBeEmpty)
			So(series.Range(7, 3), ShouldBeEmpty)
		})

		Convey("Concurrent appends and reads should observe consistent prefixes", func() {
			const writers = 4
			const perWriter = 250

			var wg sync.WaitGroup
			wg.Add(writers)
			for w := 0; w < writers; w++ {
				go func() {
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						series.Append(Sample{Timestamp: time.Now()})
					}
				}()
			}

			// Readers run while writers are active; length never decreases.
			previousLen := 0
			for i := 0; i < 100; i++ {
				length := series.Len()
				So(length, ShouldBeGreaterThanOrEqualTo, previousLen)
				So(len(series.Snapshot()), ShouldBeGreaterThanOrEqualTo, previousLen)
				previousLen = length
			}

			wg.Wait()
			So(series.Len(), ShouldEqual, writers*perWriter)
		})
	})
}
