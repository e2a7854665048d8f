package metadata

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/experiment"
)

// RecordRuntimeEnv stores the full runtime environment of a suite: flag
// configuration, BENCHLAB_ environment variables, hostname, start time and
// platform descriptors.
func RecordRuntimeEnv(metadata Metadata, suiteStart time.Time) error {
	if err := recordFlags(metadata); err != nil {
		return err
	}

	if err := recordEnv(metadata, conf.EnvironmentPrefix); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}
	err = metadata.RecordMap(map[string]string{
		"time": suiteStart.Format(time.RFC822Z),
		"host": hostname,
	}, TypeEmpty)
	if err != nil {
		return err
	}

	return recordPlatformMetrics(metadata)
}

// recordFlags saves the whole flag based configuration.
func recordFlags(metadata Metadata) error {
	return metadata.RecordMap(conf.GetFlags(), TypeFlags)
}

// recordEnv adds all environment variables that start with the given prefix.
func recordEnv(metadata Metadata, prefix string) error {
	envMetadata := map[string]string{}
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, prefix) {
			fields := strings.SplitN(env, "=", 2)
			envMetadata[fields[0]] = fields[1]
		}
	}
	return metadata.RecordMap(envMetadata, TypeEnviron)
}

// recordPlatformMetrics stores host hardware and OS descriptors.
func recordPlatformMetrics(metadata Metadata) error {
	return metadata.RecordMap(experiment.GetPlatformMetrics(), TypePlatform)
}
