package main

import (
	"os"
	"os/signal"
	"path"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/executor"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/suite"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/telemetry"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/utils/errutil"
)

var nodesFlag = conf.NewSliceFlag("node", "Target node to monitor. Repeat for multiple nodes (--node=a --node=b)")

// Standalone telemetry monitor: samples the controller host and any given
// nodes until interrupted, then writes the telemetry CSV files. The sampling
// lifecycle is owned by the handle returned from Start; stopping is a signal
// to this process, not a pid file lookup.
func main() {
	conf.SetAppName("benchlab-monitor")
	conf.SetHelp(`Samples host and node resource telemetry continuously, independent of any
running suite, and writes the telemetry CSV files on interrupt.`)

	errutil.Check(conf.ParseFlags())
	log.SetLevel(conf.LogLevel())

	outputDir := suite.OutputDirFlag.Value()
	errutil.Check(os.MkdirAll(outputDir, 0755))

	series := telemetry.NewTimeSeries()

	factory := executor.NewControlPersistFactory(executor.DefaultControlPersistConfig())
	var nodes []telemetry.Source
	for _, node := range nodesFlag.Value() {
		source, err := telemetry.NewNodeSource(node, factory, telemetry.NodeReadTimeoutFlag.Value())
		errutil.Check(err)
		nodes = append(nodes, source)
	}

	sampler := telemetry.NewSampler(telemetry.NewHostSource(), nodes, series)
	handle := sampler.Start(telemetry.HostIntervalFlag.Value(), telemetry.NodeIntervalFlag.Value())
	log.Infof("Monitoring host and %d node(s); interrupt to stop and flush", len(nodes))

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-interrupt

	handle.Stop()
	log.Infof("Collected %d samples", series.Len())

	errutil.Check(telemetry.WriteHostCSV(series, path.Join(outputDir, "telemetry_host.csv")))
	errutil.Check(telemetry.WriteNodeCSV(series, path.Join(outputDir, "telemetry_nodes.csv")))
}
