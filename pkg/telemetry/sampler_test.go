package telemetry

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeSource counts polls and can be switched into a failing mode.
type fakeSource struct {
	id      string
	polls   int64
	failing int32
}

func (f *fakeSource) ID() string {
	return f.id
}

func (f *fakeSource) Collect() (Sample, error) {
	atomic.AddInt64(&f.polls, 1)
	if atomic.LoadInt32(&f.failing) == 1 {
		return Sample{}, errors.New("source unreachable")
	}
	return Sample{Timestamp: time.Now(), SourceID: f.id, CPUPercent: 42}, nil
}

func TestSampler(t *testing.T) {
	Convey("While running a sampler over fake sources", t, func() {
		host := &fakeSource{id: HostSourceID}
		node := &fakeSource{id: "node1"}
		series := NewTimeSeries()
		sampler := NewSampler(host, []Source{node}, series)

		Convey("Both sources should be polled and samples appended", func() {
			handle := sampler.Start(10*time.Millisecond, 10*time.Millisecond)
			time.Sleep(100 * time.Millisecond)
			handle.Stop()

			So(series.Len(), ShouldBeGreaterThan, 2)

			var hostSamples, nodeSamples int
			for _, sample := range series.Snapshot() {
				switch sample.SourceID {
				case HostSourceID:
					hostSamples++
				case "node1":
					nodeSamples++
				}
			}
			So(hostSamples, ShouldBeGreaterThan, 0)
			So(nodeSamples, ShouldBeGreaterThan, 0)
		})

		Convey("Samples should carry non-decreasing timestamps per source", func() {
			handle := sampler.Start(5*time.Millisecond, 5*time.Millisecond)
			time.Sleep(60 * time.Millisecond)
			handle.Stop()

			last := map[string]time.Time{}
			for _, sample := range series.Snapshot() {
				So(sample.Timestamp.Before(last[sample.SourceID]), ShouldBeFalse)
				last[sample.SourceID] = sample.Timestamp
			}
		})

		Convey("After Stop returns no further samples should be appended", func() {
			handle := sampler.Start(5*time.Millisecond, 5*time.Millisecond)
			time.Sleep(50 * time.Millisecond)
			handle.Stop()

			lengthAfterStop := series.Len()
			time.Sleep(50 * time.Millisecond)
			So(series.Len(), ShouldEqual, lengthAfterStop)

			Convey("And Stop should be idempotent", func() {
				handle.Stop()
				handle.Stop()
				So(series.Len(), ShouldEqual, lengthAfterStop)
			})
		})

		Convey("A failing source should degrade to unavailable samples without stopping the loop", func() {
			atomic.StoreInt32(&node.failing, 1)

			handle := sampler.Start(5*time.Millisecond, 5*time.Millisecond)
			time.Sleep(60 * time.Millisecond)
			handle.Stop()

			var degraded, healthy int
			for _, sample := range series.Snapshot() {
				if sample.SourceID == "node1" {
					So(sample.Unavailable, ShouldBeTrue)
					degraded++
				} else {
					So(sample.Unavailable, ShouldBeFalse)
					healthy++
				}
			}
			So(degraded, ShouldBeGreaterThan, 0)
			So(healthy, ShouldBeGreaterThan, 0)
		})
	})
}
