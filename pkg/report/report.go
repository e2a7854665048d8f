// Package report renders the human readable digest of a suite: per-group
// summary statistics, backend significance verdicts, run reliability and
// flagged anomalies.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/analysis"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// Report holds everything the digest renders.
type Report struct {
	Summaries   []analysis.Summary
	Comparisons []analysis.Comparison
	Anomalies   []analysis.Anomaly
}

// Render writes all digest tables to the given writer.
func (r Report) Render(out io.Writer) {
	r.renderSummaries(out)
	r.renderComparisons(out)
	r.renderReliability(out)
	r.renderAnomalies(out)
}

func (r Report) renderSummaries(out io.Writer) {
	fmt.Fprintln(out, "Summary statistics (successful measurement runs):")
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"backend", "scaling_group", "workload", "sample_count", "mean", "std_dev", "cv", "ci_low", "ci_high"})

	for _, summary := range r.Summaries {
		if summary.InsufficientData {
			table.Append([]string{
				string(summary.Backend), summary.Group, summary.Workload,
				fmt.Sprintf("%d", summary.Count()),
				formatSeconds(summary.Mean), "insufficient data", "-", "-", "-",
			})
			continue
		}
		table.Append([]string{
			string(summary.Backend), summary.Group, summary.Workload,
			fmt.Sprintf("%d", summary.Count()),
			formatSeconds(summary.Mean),
			formatSeconds(summary.StdDev),
			fmt.Sprintf("%.1f%%", 100*summary.CV),
			formatSeconds(summary.CILower),
			formatSeconds(summary.CIUpper),
		})
	}
	table.Render()
	fmt.Fprintln(out)
}

func (r Report) renderComparisons(out io.Writer) {
	if len(r.Comparisons) == 0 {
		return
	}

	fmt.Fprintln(out, "Backend comparison (Welch's t-test):")
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"scaling_group", "workload", "backend_a", "backend_b", "p_value", "distinguishable", "effect", "verdict"})

	for _, comparison := range r.Comparisons {
		// "Insufficient data" must never read as "no significant
		// difference"; the verdict column spells the distinction out.
		pValue := fmt.Sprintf("%.4f", comparison.PValue)
		distinguishable := fmt.Sprintf("%t", comparison.Distinguishable)
		verdict := "no significant difference"
		if comparison.InsufficientData {
			pValue = "-"
			distinguishable = "-"
			verdict = "insufficient data to determine"
		} else if comparison.Distinguishable {
			verdict = fmt.Sprintf("%s faster by %.1f%% (%s effect)",
				comparison.Faster, 100*comparison.RelativeDiff, comparison.Effect)
		}
		table.Append([]string{
			comparison.Group, comparison.Workload,
			string(comparison.A.Backend), string(comparison.B.Backend),
			pValue, distinguishable, comparison.Effect, verdict,
		})
	}
	table.Render()
	fmt.Fprintln(out)
}

func (r Report) renderReliability(out io.Writer) {
	fmt.Fprintln(out, "Run reliability:")
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"backend", "scaling_group", "workload", "successes", "failures", "success_rate"})

	for _, summary := range r.Summaries {
		total := summary.Count() + summary.Failures
		rate := "-"
		if total > 0 {
			rate = fmt.Sprintf("%.0f%%", 100*float64(summary.Count())/float64(total))
		}
		table.Append([]string{
			string(summary.Backend), summary.Group, summary.Workload,
			fmt.Sprintf("%d", summary.Count()),
			fmt.Sprintf("%d", summary.Failures),
			rate,
		})
	}
	table.Render()
	fmt.Fprintln(out)
}

func (r Report) renderAnomalies(out io.Writer) {
	if len(r.Anomalies) == 0 {
		fmt.Fprintln(out, "No anomalous runs detected.")
		return
	}

	fmt.Fprintln(out, "Anomalous runs (kept in the data set, annotated only):")
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"backend", "scaling_group", "workload", "iteration", "duration", "z_score"})

	for _, anomaly := range r.Anomalies {
		config := anomaly.Record.Config
		table.Append([]string{
			string(config.Backend), config.Group.Name, config.Workload.Name,
			fmt.Sprintf("%d", config.Iteration),
			formatSeconds(anomaly.Record.Duration.Seconds()),
			fmt.Sprintf("%+.2f", anomaly.ZScore),
		})
	}
	table.Render()
}

// Build assembles a report from raw records at the given confidence level
// and anomaly threshold.
func Build(records []experiment.RunRecord, confidence, anomalyThreshold float64) (Report, error) {
	summaries, err := analysis.Summarize(records, confidence)
	if err != nil {
		return Report{}, err
	}
	comparisons, err := analysis.CompareBackends(summaries)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Summaries:   summaries,
		Comparisons: comparisons,
		Anomalies:   analysis.DetectAnomalies(records, anomalyThreshold),
	}, nil
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.3fs", seconds)
}
