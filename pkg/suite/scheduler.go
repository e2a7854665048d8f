// Package suite drives the full configuration matrix of one benchmark run:
// deterministic enumeration, warmup and measurement phases, bounded
// parallelism with node-set mutual exclusion, bounded retries and a
// fail-fast guard against a systemically broken backend.
package suite

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/runner"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/telemetry"
)

// State is the lifecycle position of one suite execution.
type State string

const (
	// StateInitialized means no run has been dispatched yet.
	StateInitialized State = "initialized"
	// StateWarmupRunning means priming runs are in flight.
	StateWarmupRunning State = "warmup_running"
	// StateMeasurementRunning means timed runs are in flight.
	StateMeasurementRunning State = "measurement_running"
	// StateCompleted means every configuration was measured.
	StateCompleted State = "completed"
	// StateFailed means the consecutive-failure guard tripped and the
	// remaining matrix was abandoned. Records gathered so far are preserved.
	StateFailed State = "failed"
)

// Runner executes one configuration and reports its timed outcome.
type Runner interface {
	Run(config experiment.Configuration) (runner.Outcome, error)
}

// Config carries everything one suite execution needs.
type Config struct {
	Matrix  experiment.Matrix
	Runner  Runner
	Records *RecordStore

	// Series receives telemetry appended by Sampler; run records store
	// window offsets into it. Sampler may be nil when telemetry is disabled.
	Series  *telemetry.TimeSeries
	Sampler *telemetry.Sampler

	HostInterval time.Duration
	NodeInterval time.Duration

	// Parallelism bounds concurrently executing iteration series. The
	// default of 1 runs strictly sequentially, the scientifically preferred
	// mode. Values above 1 only overlap runs with disjoint node sets.
	Parallelism int
	// RetryLimit is the number of retries for one failed run.
	RetryLimit int
	// MaxConsecutiveFailures trips the Failed state when this many
	// measurement configurations in a row exhaust their retries.
	MaxConsecutiveFailures int
	// CoolDown is slept after every measurement run so one run's tail load
	// does not bleed into the next measurement. Warmup runs skip it.
	CoolDown time.Duration

	// OnRunComplete, when set, observes every completed measurement record.
	OnRunComplete func(experiment.RunRecord)
}

// Scheduler executes one suite. It is single-use: construct, Execute, read
// final state.
type Scheduler struct {
	config Config

	nodeLocks map[string]*sync.Mutex

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	lastFailure         error

	cancel context.CancelFunc
}

// NewScheduler validates defaults and returns a scheduler in the
// Initialized state.
func NewScheduler(config Config) *Scheduler {
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	if config.RetryLimit < 0 {
		config.RetryLimit = 0
	}
	if config.MaxConsecutiveFailures < 1 {
		config.MaxConsecutiveFailures = 3
	}
	return &Scheduler{
		config: config,
		state:  StateInitialized,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	log.Infof("Suite state: %s", state)
}

// Execute drives the whole matrix. It returns a ValidationError before any
// run when the matrix is invalid, the last failure cause when the
// consecutive-failure guard tripped, and the context error on cancellation.
// In all non-validation cases records gathered so far remain in the store.
func (s *Scheduler) Execute(ctx context.Context) error {
	if err := s.config.Matrix.Validate(); err != nil {
		return err
	}

	s.buildNodeLocks()

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	if s.config.Sampler != nil {
		handle := s.config.Sampler.Start(s.config.HostInterval, s.config.NodeInterval)
		defer handle.Stop()
	}

	s.setState(StateWarmupRunning)
	if err := s.runPhase(ctx, experiment.PhaseWarmup); err != nil {
		return s.finish(err)
	}

	s.setState(StateMeasurementRunning)
	if err := s.runPhase(ctx, experiment.PhaseMeasurement); err != nil {
		return s.finish(err)
	}

	return s.finish(nil)
}

func (s *Scheduler) finish(err error) error {
	s.mu.Lock()
	tripped := s.lastFailure
	s.mu.Unlock()

	if tripped != nil {
		s.setState(StateFailed)
		return tripped
	}
	if err != nil {
		// Cancellation: partial records are flushed by the caller and stay
		// valid; the suite just never reaches a terminal state.
		return err
	}
	s.setState(StateCompleted)
	return nil
}

func (s *Scheduler) buildNodeLocks() {
	s.nodeLocks = map[string]*sync.Mutex{}
	for _, group := range s.config.Matrix.Groups {
		for _, node := range group.Nodes {
			if _, ok := s.nodeLocks[node]; !ok {
				s.nodeLocks[node] = &sync.Mutex{}
			}
		}
	}
}

// runPhase executes all configurations of one phase. Iterations of one
// {backend, group, workload} series run strictly in order on a single
// worker; distinct series may overlap up to the configured parallelism.
func (s *Scheduler) runPhase(ctx context.Context, phase experiment.Phase) error {
	series := groupBySeries(s.config.Matrix.Enumerate(phase))
	if len(series) == 0 {
		return nil
	}

	queue := make(chan []experiment.Configuration, len(series))
	for _, one := range series {
		queue <- one
	}
	close(queue)

	workers := s.config.Parallelism
	if workers > len(series) {
		workers = len(series)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for one := range queue {
				for _, config := range one {
					if ctx.Err() != nil {
						return
					}
					s.executeOne(ctx, config)
				}
			}
		}()
	}
	wg.Wait()

	return ctx.Err()
}

// groupBySeries partitions configurations into per-series queues, keeping
// both the series order and the iteration order of the enumeration.
func groupBySeries(configs []experiment.Configuration) [][]experiment.Configuration {
	index := map[string]int{}
	var series [][]experiment.Configuration
	for _, config := range configs {
		key := config.SeriesKey()
		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, nil)
		}
		series[i] = append(series[i], config)
	}
	return series
}

// executeOne runs a single configuration under its node locks, with bounded
// retries, and completes its record.
func (s *Scheduler) executeOne(ctx context.Context, config experiment.Configuration) {
	unlock := s.lockNodes(config)
	defer unlock()

	// The window includes the latest sample at or preceding the run start,
	// so a run that completes between two sampler ticks still carries
	// telemetry instead of an empty [n, n) window.
	windowStart := s.seriesLen() - 1
	if windowStart < 0 {
		windowStart = 0
	}
	start := time.Now()
	status, duration := s.runWithRetries(ctx, config)
	end := time.Now()
	windowEnd := s.seriesLen()

	record := experiment.RunRecord{
		Config:      config,
		Start:       start,
		End:         end,
		Duration:    duration,
		Status:      status,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	if config.Phase == experiment.PhaseWarmup {
		// Warmup runs only prime caches and connections; failures are
		// diagnostics, not data.
		if status != experiment.StatusSuccess {
			log.Warnf("Warmup run %q ended with status %s", config.ID(), status)
		}
		return
	}

	s.config.Records.Append(record)
	if s.config.OnRunComplete != nil {
		s.config.OnRunComplete(record)
	}
	s.trackFailures(config, status)
	s.coolDown(ctx)
}

// runWithRetries executes the configuration up to RetryLimit+1 times and
// returns the final status with the successful attempt's measured duration.
// Failed and timed out runs carry a null duration; their measured time is
// not comparable.
func (s *Scheduler) runWithRetries(ctx context.Context, config experiment.Configuration) (experiment.Status, time.Duration) {
	var outcome runner.Outcome

	err := retry.Do(
		func() error {
			// Reset per attempt: the recorded status must reflect the final
			// attempt, not a stale outcome from an earlier one.
			outcome = runner.Outcome{}
			result, err := s.config.Runner.Run(config)
			if err != nil {
				return err
			}
			outcome = result
			if result.Status != experiment.StatusSuccess {
				return errors.Errorf("run %q ended with status %s", config.ID(), result.Status)
			}
			return nil
		},
		retry.Attempts(uint(s.config.RetryLimit)+1),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err == nil {
		return experiment.StatusSuccess, outcome.Duration
	}

	log.Warnf("Run %q failed after %d attempt(s): %v", config.ID(), s.config.RetryLimit+1, err)
	if outcome.Status != "" && outcome.Status != experiment.StatusSuccess {
		return outcome.Status, 0
	}
	return experiment.StatusFailure, 0
}

func (s *Scheduler) trackFailures(config experiment.Configuration, status experiment.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == experiment.StatusSuccess {
		s.consecutiveFailures = 0
		return
	}

	s.consecutiveFailures++
	s.lastFailure = errors.Errorf("run %q ended with status %s", config.ID(), status)
	if s.consecutiveFailures >= s.config.MaxConsecutiveFailures {
		log.Errorf("Aborting suite: %d consecutive configuration failures, last: %v",
			s.consecutiveFailures, s.lastFailure)
		s.cancel()
	} else {
		// Not tripped yet; only remember the cause once the guard fires.
		s.lastFailure = nil
	}
}

func (s *Scheduler) coolDown(ctx context.Context) {
	if s.config.CoolDown <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.config.CoolDown):
	}
}

func (s *Scheduler) seriesLen() int {
	if s.config.Series == nil {
		return 0
	}
	return s.config.Series.Len()
}

// lockNodes acquires the per-node mutexes of the configuration in sorted
// order, so overlapping node sets serialize instead of deadlocking.
func (s *Scheduler) lockNodes(config experiment.Configuration) func() {
	nodes := config.NodeSet()
	sort.Strings(nodes)

	locked := make([]*sync.Mutex, 0, len(nodes))
	for _, node := range nodes {
		lock := s.nodeLocks[node]
		lock.Lock()
		locked = append(locked, lock)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
