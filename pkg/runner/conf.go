package runner

import (
	"time"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

// RunTimeoutFlag bounds one full fan-out run across a scaling group.
var RunTimeoutFlag = conf.NewDurationFlag("run_timeout", "Timeout for a single workload run across a scaling group", 5*time.Minute)
