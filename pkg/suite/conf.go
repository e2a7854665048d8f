package suite

import (
	"time"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

var (
	// ParallelismFlag bounds concurrently executing iteration series.
	// 1 is the scientifically preferred sequential mode.
	ParallelismFlag = conf.NewIntFlag("parallelism", "Number of concurrently executing iteration series (node sets never overlap)", 1)
	// RetryLimitFlag is the number of retries for one failed run.
	RetryLimitFlag = conf.NewIntFlag("retries", "Number of retries for a single failed run", 1)
	// MaxConsecutiveFailuresFlag aborts the suite after this many
	// configurations in a row exhaust their retries.
	MaxConsecutiveFailuresFlag = conf.NewIntFlag("max_consecutive_failures", "Number of consecutive configuration failures aborting the suite", 3)
	// CoolDownFlag is slept after every measurement run.
	CoolDownFlag = conf.NewDurationFlag("cool_down_period", "Idle period after each measurement run", 5*time.Second)
	// OutputDirFlag is the directory all suite artifacts are written to.
	OutputDirFlag = conf.NewStringFlag("output_dir", "Directory for run records, telemetry and metadata", "benchlab_results")
)
