// Package analysis turns raw run durations into per-group summaries,
// backend-to-backend significance tests and outlier reports. Only successful
// measurement runs enter any statistic; failed and timed out runs are counted
// but never averaged.
package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// DefaultConfidence is the confidence level used when none is configured.
const DefaultConfidence = 0.95

// Summary aggregates all successful runs of one {backend, group, workload}
// combination.
type Summary struct {
	Backend  experiment.Backend
	Group    string
	Workload string

	// Samples are successful run durations in seconds, in execution order.
	Samples []float64
	// Failures counts runs excluded from the statistics (failed or timed out).
	Failures int

	Mean   float64
	StdDev float64
	// CV is the coefficient of variation (stddev/mean), a unitless
	// run-to-run stability measure.
	CV float64

	Confidence float64
	CILower    float64
	CIUpper    float64

	// InsufficientData is set when fewer than two successful samples exist.
	// Mean and the interval collapse to the single point if one exists.
	InsufficientData bool
}

// Count returns the number of successful samples.
func (s Summary) Count() int {
	return len(s.Samples)
}

// Key identifies the summary's statistical group.
func (s Summary) Key() string {
	return string(s.Backend) + "|" + s.Group + "|" + s.Workload
}

// Summarize groups measurement records by {backend, group, workload} and
// computes descriptive statistics with a confidence interval at the given
// level. Warmup records are ignored.
func Summarize(records []experiment.RunRecord, confidence float64) ([]Summary, error) {
	if confidence <= 0 || confidence >= 1 {
		return nil, errors.Errorf("confidence level must be in (0, 1), got %v", confidence)
	}

	groups := map[string]*Summary{}
	var order []string

	for _, record := range records {
		if record.Config.Phase != experiment.PhaseMeasurement {
			continue
		}
		key := record.GroupKey()
		summary, ok := groups[key]
		if !ok {
			summary = &Summary{
				Backend:    record.Config.Backend,
				Group:      record.Config.Group.Name,
				Workload:   record.Config.Workload.Name,
				Confidence: confidence,
			}
			groups[key] = summary
			order = append(order, key)
		}
		if record.Status != experiment.StatusSuccess {
			summary.Failures++
			continue
		}
		summary.Samples = append(summary.Samples, record.Duration.Seconds())
	}

	sort.Strings(order)
	summaries := make([]Summary, 0, len(order))
	for _, key := range order {
		summary := groups[key]
		if err := summary.compute(); err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *Summary) compute() error {
	switch len(s.Samples) {
	case 0:
		s.InsufficientData = true
		return nil
	case 1:
		s.InsufficientData = true
		s.Mean = s.Samples[0]
		s.CILower = s.Samples[0]
		s.CIUpper = s.Samples[0]
		return nil
	}

	mean, err := stats.Mean(s.Samples)
	if err != nil {
		return errors.Wrap(err, "cannot compute mean")
	}
	stddev, err := stats.StandardDeviationSample(s.Samples)
	if err != nil {
		return errors.Wrap(err, "cannot compute standard deviation")
	}

	s.Mean = mean
	s.StdDev = stddev
	if mean != 0 {
		s.CV = stddev / mean
	}

	n := float64(len(s.Samples))
	df := n - 1
	critical := studentTQuantile(1-(1-s.Confidence)/2, df)
	margin := critical * stddev / math.Sqrt(n)
	s.CILower = mean - margin
	s.CIUpper = mean + margin
	return nil
}
