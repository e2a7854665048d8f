package telemetry

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Sampler drives periodic collection from the host source and from all node
// sources into one shared time series. The host is typically sampled more
// frequently than nodes because per-node polling cost scales with fleet size.
type Sampler struct {
	host   Source
	nodes  []Source
	series *TimeSeries
}

// NewSampler returns a sampler appending to the given series.
func NewSampler(host Source, nodes []Source, series *TimeSeries) *Sampler {
	return &Sampler{
		host:   host,
		nodes:  nodes,
		series: series,
	}
}

// Handle owns the lifecycle of started sampling loops. The caller that
// started the sampler holds the only handle capable of stopping it.
type Handle struct {
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Stop terminates both sampling loops. After Stop returns no further samples
// are appended. Stop is idempotent; calling it on an already stopped handle
// is a no-op.
func (h *Handle) Stop() {
	h.once.Do(func() {
		close(h.stop)
	})
	h.wg.Wait()
}

// Start begins two independent periodic polling loops and returns a handle
// that supports Stop.
func (s *Sampler) Start(hostInterval, nodeInterval time.Duration) *Handle {
	handle := &Handle{stop: make(chan struct{})}

	handle.wg.Add(2)
	go s.loop(handle, hostInterval, []Source{s.host})
	go s.loop(handle, nodeInterval, s.nodes)

	return handle
}

// loop polls all given sources once per interval until stopped. A read
// failure for one source degrades that source's sample and never aborts the
// loop or affects other sources.
func (s *Sampler) loop(handle *Handle, interval time.Duration, sources []Source) {
	defer handle.wg.Done()

	if len(sources) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// One immediate poll so short suites still get telemetry coverage.
	s.pollAll(sources)

	for {
		select {
		case <-handle.stop:
			return
		case <-ticker.C:
			s.pollAll(sources)
		}
	}
}

func (s *Sampler) pollAll(sources []Source) {
	for _, source := range sources {
		sample, err := source.Collect()
		if err != nil {
			log.Warnf("Telemetry source %q unavailable: %v", source.ID(), err)
			sample = Sample{
				Timestamp:   time.Now(),
				SourceID:    source.ID(),
				Unavailable: true,
			}
		}
		s.series.Append(sample)
	}
}
