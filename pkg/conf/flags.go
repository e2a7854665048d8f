package conf

import "time"

// Shared flags used by more than one package.
var (
	// DefaultMetadataDB is the database to store suite metadata in.
	DefaultMetadataDB = NewStringFlag("metadata_db", "Backend for suite metadata: file, cassandra or influxdb", "file")

	// CassandraAddress is an address of the Cassandra cluster.
	CassandraAddress = NewStringFlag("cassandra_address", "Address of Cassandra DB endpoint for metadata storage", "127.0.0.1")
	// CassandraUsername holds the user name which will be presented when connecting to the cluster.
	CassandraUsername = NewStringFlag("cassandra_username", "The user name which will be presented when connecting to the Cassandra cluster", "")
	// CassandraPassword holds the password which will be presented when connecting to the cluster.
	CassandraPassword = NewStringFlag("cassandra_password", "The password which will be presented when connecting to the Cassandra cluster", "")
	// CassandraConnectionTimeout limits the time spent establishing a connection.
	CassandraConnectionTimeout = NewDurationFlag("cassandra_timeout", "Timeout of connection to Cassandra cluster", 5*time.Second)
	// CassandraPort is the port the Cassandra cluster listens on.
	CassandraPort = NewIntFlag("cassandra_port", "Port of Cassandra DB endpoint", 9042)
	// CassandraKeyspaceName is the keyspace metadata is written to.
	CassandraKeyspaceName = NewStringFlag("cassandra_keyspace", "Keyspace for suite metadata", "benchlab")
	// CassandraCreateKeyspace decides whether the keyspace should be created on connect.
	CassandraCreateKeyspace = NewBoolFlag("cassandra_create_keyspace", "Create the metadata keyspace if it does not exist", true)

	// InfluxDBAddress is an address of InfluxDB endpoint.
	InfluxDBAddress = NewStringFlag("influxdb_address", "Address of InfluxDB endpoint for metadata storage", "127.0.0.1")
	// InfluxDBPort is a port InfluxDB listens on.
	InfluxDBPort = NewIntFlag("influxdb_port", "Port of InfluxDB endpoint", 8086)
	// InfluxDBUsername holds the user name which will be presented when connecting to InfluxDB.
	InfluxDBUsername = NewStringFlag("influxdb_username", "The user name which will be presented when connecting to InfluxDB", "")
	// InfluxDBPassword holds the password which will be presented when connecting to InfluxDB.
	InfluxDBPassword = NewStringFlag("influxdb_password", "The password which will be presented when connecting to InfluxDB", "")
	// InfluxDBName is the name of the database metadata will be written to.
	InfluxDBName = NewStringFlag("influxdb_name", "Name of the InfluxDB database for metadata", "benchlab")
	// InfluxDBCreateDatabase decides whether the database should be created on connect.
	InfluxDBCreateDatabase = NewBoolFlag("influxdb_create_database", "Create InfluxDB database if it does not exist", true)
	// InfluxDBInsecureSkipVerify skips TLS certificate validation.
	InfluxDBInsecureSkipVerify = NewBoolFlag("influxdb_insecure_skip_verify", "Skip TLS certificate validation when connecting to InfluxDB", false)
)
