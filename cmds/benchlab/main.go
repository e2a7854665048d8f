package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/analysis"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/metadata"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/report"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/runner"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/suite"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/telemetry"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/utils/errutil"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/utils/uuid"
)

const (
	exitCompleted     = 0
	exitAborted       = 1
	exitInvalidMatrix = 2
)

var (
	matrixFileFlag = conf.NewFileFlag("matrix", "Path to the YAML configuration matrix", "matrix.yaml")
	confidenceFlag = conf.NewFloatFlag("confidence", "Confidence level for intervals and significance tests", analysis.DefaultConfidence)
	anomalyFlag    = conf.NewFloatFlag("anomaly_threshold", "Z-score threshold flagging anomalous runs", analysis.DefaultAnomalyThreshold)
	progressFlag   = conf.NewBoolFlag("progress", "Render a progress bar while the suite runs", true)
)

func main() {
	conf.SetAppName("benchlab")
	conf.SetHelp(`Benchlab drives a full SSH transport benchmark suite: it executes every
configuration of the matrix over both transports, records run durations and
host/node telemetry, and renders a statistical comparison report.`)

	errutil.Check(conf.ParseFlags())
	log.SetLevel(conf.LogLevel())

	matrix, err := experiment.LoadMatrix(matrixFileFlag.Value())
	if err != nil {
		log.Errorf("Cannot load configuration matrix: %v", err)
		os.Exit(exitInvalidMatrix)
	}
	if err := matrix.Validate(); err != nil {
		log.Errorf("%v", err)
		os.Exit(exitInvalidMatrix)
	}

	suiteID := uuid.New()
	outputDir := path.Join(suite.OutputDirFlag.Value(), suiteID)
	errutil.Check(os.MkdirAll(outputDir, 0755))

	log.Infof("Starting suite %s: %s", suiteID, experiment.DescribeMatrix(matrix))
	log.Infof("Writing artifacts to %s", outputDir)

	metadataStore, err := metadata.NewDefault(suiteID, outputDir)
	errutil.Check(err)

	records := suite.NewRecordStore()
	series := telemetry.NewTimeSeries()

	config := suite.Config{
		Matrix:                 matrix,
		Runner:                 newRunner(),
		Records:                records,
		Series:                 series,
		Sampler:                newSampler(matrix, series),
		HostInterval:           telemetry.HostIntervalFlag.Value(),
		NodeInterval:           telemetry.NodeIntervalFlag.Value(),
		Parallelism:            suite.ParallelismFlag.Value(),
		RetryLimit:             suite.RetryLimitFlag.Value(),
		MaxConsecutiveFailures: suite.MaxConsecutiveFailuresFlag.Value(),
		CoolDown:               suite.CoolDownFlag.Value(),
	}

	var bar *pb.ProgressBar
	if progressFlag.Value() {
		bar = pb.StartNew(len(matrix.Enumerate(experiment.PhaseMeasurement)))
		config.OnRunComplete = func(experiment.RunRecord) { bar.Increment() }
	}

	start := time.Now()
	errutil.Check(suite.RecordSuiteMetadata(metadataStore, suiteID, config, start))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := suite.NewScheduler(config)
	runErr := scheduler.Execute(ctx)
	if bar != nil {
		bar.Finish()
	}

	// Partial results are always flushed, even on abort or cancellation.
	flush(records, series, outputDir)

	if runErr != nil {
		log.Errorf("Suite %s did not complete: %v", suiteID, runErr)
		os.Exit(exitAborted)
	}

	digest, err := report.Build(records.Snapshot(), confidenceFlag.Value(), anomalyFlag.Value())
	errutil.Check(err)
	errutil.Check(digest.WriteFiles(outputDir))
	fmt.Printf("\nSuite %s completed in %s.\n\n", suiteID, time.Since(start).Round(time.Second))
	digest.Render(os.Stdout)

	os.Exit(exitCompleted)
}

func newRunner() *runner.Runner {
	factories := map[experiment.Backend]executor.Factory{
		experiment.BackendControlPersist: executor.NewControlPersistFactory(executor.DefaultControlPersistConfig()),
		experiment.BackendSSHLib:         executor.NewSSHLibFactory(executor.DefaultSSHLibConfig()),
	}
	return runner.NewRunner(factories, runner.RunTimeoutFlag.Value())
}

// newSampler builds telemetry sources for the host and the union of all
// matrix nodes. Node probes reuse the multiplexed transport so monitoring
// does not pay a handshake per sample.
func newSampler(matrix experiment.Matrix, series *telemetry.TimeSeries) *telemetry.Sampler {
	factory := executor.NewControlPersistFactory(executor.DefaultControlPersistConfig())
	readTimeout := telemetry.NodeReadTimeoutFlag.Value()

	seen := map[string]bool{}
	var nodes []telemetry.Source
	for _, group := range matrix.Groups {
		for _, node := range group.Nodes {
			if seen[node] {
				continue
			}
			seen[node] = true
			source, err := telemetry.NewNodeSource(node, factory, readTimeout)
			errutil.Check(err)
			nodes = append(nodes, source)
		}
	}

	return telemetry.NewSampler(telemetry.NewHostSource(), nodes, series)
}

func flush(records *suite.RecordStore, series *telemetry.TimeSeries, outputDir string) {
	checks := []error{
		records.WriteCSV(path.Join(outputDir, "run_results.csv")),
		records.WriteJSON(path.Join(outputDir, "records.json")),
		telemetry.WriteHostCSV(series, path.Join(outputDir, "telemetry_host.csv")),
		telemetry.WriteNodeCSV(series, path.Join(outputDir, "telemetry_nodes.csv")),
	}
	for _, err := range checks {
		if err != nil {
			log.Errorf("Flushing suite artifacts: %v", err)
		}
	}
}
