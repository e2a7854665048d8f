package suite

import (
	"strconv"
	"strings"
	"time"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/metadata"
)

// TypeSuite groups the suite-level metadata entries.
const TypeSuite = "suite"

// RecordSuiteMetadata stores the reproducibility record of one suite: start
// time, concurrency, iteration counts and the matrix shape, alongside the
// runtime environment (flags, environment, platform descriptors).
func RecordSuiteMetadata(store metadata.Metadata, suiteID string, config Config, start time.Time) error {
	if err := metadata.RecordRuntimeEnv(store, start); err != nil {
		return err
	}

	matrix := config.Matrix
	backends := make([]string, 0, len(matrix.Backends))
	for _, backend := range matrix.Backends {
		backends = append(backends, string(backend))
	}
	groups := make([]string, 0, len(matrix.Groups))
	for _, group := range matrix.Groups {
		groups = append(groups, group.Name)
	}
	workloads := make([]string, 0, len(matrix.Workloads))
	for _, workload := range matrix.Workloads {
		workloads = append(workloads, workload.Name)
	}

	return store.RecordMap(map[string]string{
		"suite_id":               suiteID,
		"start_time":             start.Format(time.RFC3339),
		"parallelism":            strconv.Itoa(config.Parallelism),
		"warmup_iterations":      strconv.Itoa(matrix.WarmupIterations),
		"measurement_iterations": strconv.Itoa(matrix.MeasurementIterations),
		"backends":               strings.Join(backends, ","),
		"scaling_groups":         strings.Join(groups, ","),
		"workloads":              strings.Join(workloads, ","),
		"cool_down_period":       config.CoolDown.String(),
	}, TypeSuite)
}
