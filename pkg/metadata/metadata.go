// Package metadata persists per-suite reproducibility information: flags,
// environment, platform descriptors. Backends: a local JSON file (default),
// Cassandra and InfluxDB for shared lab deployments.
package metadata

import (
	"fmt"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

// Predefined kinds of metadata. A kind groups entries by their common
// characteristics: flags passed to the binary, environment variables,
// recorded platform descriptors. Kind is just a string; callers can define
// their own.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
)

// Metadata defines methods which must be supported by a storage backend.
type Metadata interface {
	// Record stores a key and value and associates them with the suite id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates it with the suite id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves a single metadata kind from the store.
	GetByKind(kind string) (map[string]string, error)
	// Clear deletes all metadata entries associated with the current suite id.
	Clear() error
}

// NewDefault initializes the metadata backend selected by the metadata_db
// flag. The file backend writes into outputDir.
func NewDefault(suiteID, outputDir string) (Metadata, error) {
	switch conf.DefaultMetadataDB.Value() {
	case "file":
		return NewFile(suiteID, outputDir)
	case "cassandra":
		return NewCassandra(suiteID, DefaultCassandraConfig())
	case "influxdb":
		return NewInfluxDB(suiteID, DefaultInfluxDBConfig())
	}
	return nil, fmt.Errorf("unsupported database for metadata: %s", conf.DefaultMetadataDB.Value())
}
