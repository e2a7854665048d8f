package metadata

import (
	"fmt"
	"strings"
	"time"

	"github.com/influxdata/influxdb/client/v2"
	"github.com/pkg/errors"

	"github.com/saeedmfat/ansible-ssh-backend-performance-benchmark-lab/pkg/conf"
)

const influxMeasurement = "metadata"

// InfluxDBConfig holds configuration for InfluxDB.
type InfluxDBConfig struct {
	httpConfig     client.HTTPConfig
	dbName         string
	createDatabase bool
}

// InfluxDB keeps the client session alive and tags all metadata with the
// suite id.
type InfluxDB struct {
	suiteID string
	session client.Client
	config  InfluxDBConfig
}

// DefaultInfluxDBConfig applies the InfluxDB settings from the command line
// flags and environment variables.
func DefaultInfluxDBConfig() InfluxDBConfig {
	return InfluxDBConfig{
		dbName:         conf.InfluxDBName.Value(),
		createDatabase: conf.InfluxDBCreateDatabase.Value(),
		httpConfig: client.HTTPConfig{
			Addr:               fmt.Sprintf("http://%s:%d", conf.InfluxDBAddress.Value(), conf.InfluxDBPort.Value()),
			Username:           conf.InfluxDBUsername.Value(),
			Password:           conf.InfluxDBPassword.Value(),
			InsecureSkipVerify: conf.InfluxDBInsecureSkipVerify.Value(),
		},
	}
}

// NewInfluxDB returns the Metadata backend from a suite id and configuration.
func NewInfluxDB(suiteID string, config InfluxDBConfig) (Metadata, error) {
	metadata := &InfluxDB{
		suiteID: suiteID,
		config:  config,
	}

	session, err := client.NewHTTPClient(config.httpConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create influx client for suite %s", suiteID)
	}
	metadata.session = session

	if config.createDatabase {
		response, err := session.Query(client.Query{
			Command: fmt.Sprintf("CREATE DATABASE %s", config.dbName),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "cannot create influx database for suite %s", suiteID)
		}
		if response.Error() != nil {
			return nil, errors.Wrapf(response.Error(), "cannot create influx database for suite %s", suiteID)
		}
	}

	return metadata, nil
}

// storeMap writes one point per call with the suite id and kind as tags.
func (m *InfluxDB) storeMap(metadata map[string]string, kind string) error {
	batchPoints, err := client.NewBatchPoints(client.BatchPointsConfig{Database: m.config.dbName})
	if err != nil {
		return errors.Wrapf(err, "creation of batch points failed for metadata kind %q", kind)
	}

	tags := map[string]string{"kind": kind, "suite_id": m.suiteID}
	fields := make(map[string]interface{}, len(metadata))
	for key, value := range metadata {
		fields[key] = value
	}

	point, err := client.NewPoint(influxMeasurement, tags, fields, time.Now())
	if err != nil {
		return errors.Wrapf(err, "cannot create new point, kind %q", kind)
	}
	batchPoints.AddPoint(point)

	return errors.Wrapf(m.session.Write(batchPoints), "cannot publish metadata of kind %q", kind)
}

// Record stores a key and value and associates them with the suite id.
func (m *InfluxDB) Record(key, value, kind string) error {
	return m.storeMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates it with the suite id.
func (m *InfluxDB) RecordMap(metadata map[string]string, kind string) error {
	return m.storeMap(metadata, kind)
}

// GetByKind retrieves a single metadata kind from the database. If
// duplicates exist the most recent point wins.
func (m *InfluxDB) GetByKind(kind string) (map[string]string, error) {
	metadata := make(map[string]string)
	cmd := fmt.Sprintf("SELECT last(*) FROM %s WHERE suite_id='%s' AND kind='%s' GROUP BY suite_id,kind",
		influxMeasurement, m.suiteID, kind)

	response, err := m.session.Query(client.Query{Command: cmd, Database: m.config.dbName})
	if err != nil {
		return nil, errors.Wrapf(err, "metadata query failed for suite %s", m.suiteID)
	}
	if response.Error() != nil {
		return nil, errors.Wrapf(response.Error(), "metadata query failed for suite %s", m.suiteID)
	}

	for _, result := range response.Results {
		for _, row := range result.Series {
			for _, value := range row.Values {
				for idx, cell := range value {
					// Index 0 is the timestamp; results may be sparse so
					// skip empty cells too.
					if cell != nil && idx != 0 {
						column := strings.Replace(row.Columns[idx], "last_", "", 1)
						metadata[column] = cell.(string)
					}
				}
			}
		}
	}

	return metadata, nil
}

// Clear deletes all metadata entries associated with the current suite id.
func (m *InfluxDB) Clear() error {
	cmd := fmt.Sprintf("DROP SERIES FROM %s WHERE suite_id ='%s'", influxMeasurement, m.suiteID)

	response, err := m.session.Query(client.Query{Command: cmd, Database: m.config.dbName})
	if err != nil {
		return errors.Wrapf(err, "metadata delete failed for suite %s", m.suiteID)
	}
	if response.Error() != nil {
		return errors.Wrapf(response.Error(), "metadata delete failed for suite %s", m.suiteID)
	}
	return nil
}
