package main

import (
	"os"
	"path"

	log "github.com/sirupsen/logrus"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/analysis"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/report"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/suite"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/utils/errutil"
)

var (
	inputFlag      = conf.NewFileFlag("input", "Path to the records.json file of a suite", "records.json")
	confidenceFlag = conf.NewFloatFlag("confidence", "Confidence level for intervals and significance tests", analysis.DefaultConfidence)
	anomalyFlag    = conf.NewFloatFlag("anomaly_threshold", "Z-score threshold flagging anomalous runs", analysis.DefaultAnomalyThreshold)
)

// Offline analyzer: rebuilds the statistical report from persisted run
// records, so past suites can be re-analyzed at a different confidence level
// without re-running anything.
func main() {
	conf.SetAppName("benchlab-analyze")
	conf.SetHelp(`Loads persisted run records and renders summary statistics, backend
significance verdicts, reliability and anomaly tables.`)

	errutil.Check(conf.ParseFlags())
	log.SetLevel(conf.LogLevel())

	records, err := suite.LoadRecords(inputFlag.Value())
	errutil.Check(err)
	log.Infof("Loaded %d run record(s) from %s", len(records), inputFlag.Value())

	digest, err := report.Build(records, confidenceFlag.Value(), anomalyFlag.Value())
	errutil.Check(err)

	// Analyzer output lands next to the input records, so re-analysis
	// refreshes the suite directory's persisted tables.
	outputDir := path.Dir(inputFlag.Value())
	errutil.Check(digest.WriteFiles(outputDir))
	log.Infof("Wrote %s and %s to %s", report.SummaryFileName, report.SignificanceFileName, outputDir)

	digest.Render(os.Stdout)
}
