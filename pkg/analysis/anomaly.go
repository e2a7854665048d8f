package analysis

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// DefaultAnomalyThreshold flags runs deviating more than this many standard
// deviations from the rest of their group.
const DefaultAnomalyThreshold = 2.0

// Anomaly is a successful run whose duration is an outlier within its
// statistical group. Anomalies are reported, never removed from the data.
type Anomaly struct {
	Record experiment.RunRecord
	ZScore float64
}

// DetectAnomalies finds successful measurement runs whose duration deviates
// from their group by more than threshold standard deviations. Each candidate
// is scored against the group with itself left out, so a single extreme value
// cannot inflate the deviation it is measured against.
func DetectAnomalies(records []experiment.RunRecord, threshold float64) []Anomaly {
	groups := map[string][]experiment.RunRecord{}
	var order []string
	for _, record := range records {
		if record.Config.Phase != experiment.PhaseMeasurement || record.Status != experiment.StatusSuccess {
			continue
		}
		key := record.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], record)
	}

	var anomalies []Anomaly
	for _, key := range order {
		group := groups[key]
		if len(group) < 3 {
			// Two samples cannot tell an outlier from ordinary spread.
			continue
		}
		durations := make([]float64, len(group))
		for i, record := range group {
			durations[i] = record.Duration.Seconds()
		}

		for i, record := range group {
			z := leaveOneOutZ(durations, i)
			if math.Abs(z) > threshold {
				anomalies = append(anomalies, Anomaly{Record: record, ZScore: z})
			}
		}
	}
	return anomalies
}

// leaveOneOutZ scores durations[i] against the mean and standard deviation of
// the remaining samples.
func leaveOneOutZ(durations []float64, i int) float64 {
	rest := make([]float64, 0, len(durations)-1)
	rest = append(rest, durations[:i]...)
	rest = append(rest, durations[i+1:]...)

	mean, err := stats.Mean(rest)
	if err != nil {
		return 0
	}
	stddev, err := stats.StandardDeviationSample(rest)
	if err != nil || stddev == 0 {
		switch {
		case durations[i] > mean:
			return math.Inf(1)
		case durations[i] < mean:
			return math.Inf(-1)
		}
		return 0
	}
	return (durations[i] - mean) / stddev
}
