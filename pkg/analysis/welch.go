package analysis

import (
	"math"

	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// Effect size interpretation thresholds for the absolute value of Cohen's d.
const (
	effectSmall  = 0.2
	effectMedium = 0.5
	effectLarge  = 0.8
)

// Comparison is the outcome of Welch's t-test between two backends on the
// same {group, workload} combination.
type Comparison struct {
	Group    string
	Workload string

	A Summary
	B Summary

	TStatistic       float64
	DegreesOfFreedom float64
	PValue           float64

	// Distinguishable is true when the difference in means is statistically
	// significant at the summaries' confidence level.
	Distinguishable bool

	// CohenD quantifies the effect size of the difference; Effect is its
	// conventional interpretation (negligible, small, medium, large).
	CohenD float64
	Effect string

	// Faster names the backend with the lower mean duration. Empty when the
	// difference is not distinguishable.
	Faster experiment.Backend
	// RelativeDiff is |meanA - meanB| relative to the slower mean.
	RelativeDiff float64

	// InsufficientData is true when either side has fewer than two samples.
	// No verdict is possible then; this must never be presented as "no
	// significant difference".
	InsufficientData bool
}

// Compare runs Welch's unequal-variance t-test between two summaries of the
// same group and workload.
func Compare(a, b Summary) (Comparison, error) {
	if a.Group != b.Group || a.Workload != b.Workload {
		return Comparison{}, errors.Errorf(
			"cannot compare %s/%s with %s/%s: different statistical groups",
			a.Group, a.Workload, b.Group, b.Workload)
	}
	if a.Backend == b.Backend {
		return Comparison{}, errors.Errorf("cannot compare backend %q with itself", a.Backend)
	}

	comparison := Comparison{
		Group:    a.Group,
		Workload: a.Workload,
		A:        a,
		B:        b,
	}

	if a.InsufficientData || b.InsufficientData {
		comparison.InsufficientData = true
		return comparison, nil
	}

	nA, nB := float64(a.Count()), float64(b.Count())
	varA, varB := a.StdDev*a.StdDev, b.StdDev*b.StdDev
	seA, seB := varA/nA, varB/nB
	se := math.Sqrt(seA + seB)
	if se == 0 {
		// Identical constant samples on both sides: means are either equal
		// (indistinguishable) or trivially different.
		comparison.Distinguishable = a.Mean != b.Mean
	} else {
		comparison.TStatistic = (a.Mean - b.Mean) / se

		// Welch–Satterthwaite approximation of the degrees of freedom.
		comparison.DegreesOfFreedom = (seA + seB) * (seA + seB) /
			(seA*seA/(nA-1) + seB*seB/(nB-1))

		comparison.PValue = 2 * studentTCDF(-math.Abs(comparison.TStatistic), comparison.DegreesOfFreedom)
		comparison.Distinguishable = comparison.PValue < 1-a.Confidence
	}

	pooled := math.Sqrt(((nA-1)*varA + (nB-1)*varB) / (nA + nB - 2))
	if pooled > 0 {
		comparison.CohenD = (a.Mean - b.Mean) / pooled
	}
	comparison.Effect = interpretEffect(comparison.CohenD)

	if comparison.Distinguishable {
		slower := math.Max(a.Mean, b.Mean)
		if slower > 0 {
			comparison.RelativeDiff = math.Abs(a.Mean-b.Mean) / slower
		}
		if a.Mean < b.Mean {
			comparison.Faster = a.Backend
		} else {
			comparison.Faster = b.Backend
		}
	}

	return comparison, nil
}

// CompareBackends pairs up summaries sharing {group, workload} across two
// different backends and compares each pair.
func CompareBackends(summaries []Summary) ([]Comparison, error) {
	byGroup := map[string][]Summary{}
	var order []string
	for _, summary := range summaries {
		key := summary.Group + "|" + summary.Workload
		if _, ok := byGroup[key]; !ok {
			order = append(order, key)
		}
		byGroup[key] = append(byGroup[key], summary)
	}

	var comparisons []Comparison
	for _, key := range order {
		pair := byGroup[key]
		if len(pair) != 2 {
			continue
		}
		comparison, err := Compare(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, comparison)
	}
	return comparisons, nil
}

func interpretEffect(d float64) string {
	abs := math.Abs(d)
	switch {
	case abs >= effectLarge:
		return "large"
	case abs >= effectMedium:
		return "medium"
	case abs >= effectSmall:
		return "small"
	default:
		return "negligible"
	}
}
