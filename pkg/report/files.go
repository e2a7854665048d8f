package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path"

	"github.com/pkg/errors"
)

// Analyzer output file names inside a suite directory. Their layouts are part
// of the persisted contract, so downstream tooling consumes them instead of
// scraping the rendered tables.
const (
	SummaryFileName      = "analysis_summary.csv"
	SignificanceFileName = "analysis_significance.csv"
)

// WriteFiles persists the machine readable analyzer output into the given
// suite directory, alongside the run records it was computed from.
func (r Report) WriteFiles(outputDir string) error {
	if err := r.writeSummaryCSV(path.Join(outputDir, SummaryFileName)); err != nil {
		return err
	}
	return r.writeSignificanceCSV(path.Join(outputDir, SignificanceFileName))
}

// writeSummaryCSV persists per-group summary statistics:
// backend, scaling_group, workload, sample_count, mean, std_dev.
// Groups without enough samples carry an empty std_dev field.
func (r Report) writeSummaryCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create summary file %q", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"backend", "scaling_group", "workload", "sample_count", "mean", "std_dev"}); err != nil {
		return errors.Wrap(err, "could not write summary header")
	}

	for _, summary := range r.Summaries {
		stdDev := ""
		if !summary.InsufficientData {
			stdDev = fmt.Sprintf("%.6f", summary.StdDev)
		}
		row := []string{
			string(summary.Backend), summary.Group, summary.Workload,
			fmt.Sprintf("%d", summary.Count()),
			fmt.Sprintf("%.6f", summary.Mean),
			stdDev,
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write summary row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush summary file")
}

// writeSignificanceCSV persists backend comparison verdicts:
// scaling_group, workload, backend_a, backend_b, p_value, distinguishable.
// Comparisons lacking data carry empty p_value and distinguishable fields,
// never a false "indistinguishable" verdict.
func (r Report) writeSignificanceCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create significance file %q", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"scaling_group", "workload", "backend_a", "backend_b", "p_value", "distinguishable"}); err != nil {
		return errors.Wrap(err, "could not write significance header")
	}

	for _, comparison := range r.Comparisons {
		pValue := ""
		distinguishable := ""
		if !comparison.InsufficientData {
			pValue = fmt.Sprintf("%.6f", comparison.PValue)
			distinguishable = fmt.Sprintf("%t", comparison.Distinguishable)
		}
		row := []string{
			comparison.Group, comparison.Workload,
			string(comparison.A.Backend), string(comparison.B.Backend),
			pValue, distinguishable,
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write significance row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush significance file")
}
