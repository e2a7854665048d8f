package telemetry

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Persisted CSV layouts are significant for downstream tooling and must not
// change shape. Degraded samples keep their row with empty metric fields.

// WriteHostCSV persists all host samples of the series to a CSV file.
// Layout: timestamp, cpu_percent, memory_percent, load_1, load_5, load_15.
func WriteHostCSV(series *TimeSeries, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create host telemetry file %q", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "cpu_percent", "memory_percent", "load_1", "load_5", "load_15"}); err != nil {
		return errors.Wrap(err, "could not write host telemetry header")
	}

	for _, sample := range series.Snapshot() {
		if sample.SourceID != HostSourceID {
			continue
		}
		row := []string{formatTimestamp(sample.Timestamp), "", "", "", "", ""}
		if !sample.Unavailable {
			row[1] = formatMetric(sample.CPUPercent)
			row[2] = formatMetric(sample.MemoryPercent)
			row[3] = formatMetric(sample.Load1)
			row[4] = formatMetric(sample.Load5)
			row[5] = formatMetric(sample.Load15)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write host telemetry row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush host telemetry file")
}

// WriteNodeCSV persists all node samples of the series to a CSV file.
// Layout: timestamp, node_id, cpu_percent, memory_used_mb, memory_total_mb.
func WriteNodeCSV(series *TimeSeries, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create node telemetry file %q", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"timestamp", "node_id", "cpu_percent", "memory_used_mb", "memory_total_mb"}); err != nil {
		return errors.Wrap(err, "could not write node telemetry header")
	}

	for _, sample := range series.Snapshot() {
		if sample.SourceID == HostSourceID {
			continue
		}
		row := []string{formatTimestamp(sample.Timestamp), sample.SourceID, "", "", ""}
		if !sample.Unavailable {
			row[2] = formatMetric(sample.CPUPercent)
			row[3] = formatMetric(sample.MemoryUsedMB)
			row[4] = formatMetric(sample.MemoryTotalMB)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "could not write node telemetry row")
		}
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "could not flush node telemetry file")
}

func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatMetric(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
