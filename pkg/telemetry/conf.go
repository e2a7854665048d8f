package telemetry

import (
	"time"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

var (
	// HostIntervalFlag controls how often the controller host is sampled.
	HostIntervalFlag = conf.NewDurationFlag("telemetry_host_interval", "Interval between controller host telemetry samples", 2*time.Second)
	// NodeIntervalFlag controls how often every target node is sampled.
	NodeIntervalFlag = conf.NewDurationFlag("telemetry_node_interval", "Interval between target node telemetry samples", 5*time.Second)
	// NodeReadTimeoutFlag bounds a single node telemetry probe.
	NodeReadTimeoutFlag = conf.NewDurationFlag("telemetry_node_read_timeout", "Timeout for a single node telemetry probe", 4*time.Second)
)
