package types

import "errors"

// Config holds backend selection and parameters for opening a Storage.
type Config struct {
	Backend  string         `json:"backend" yaml:"backend"`
	DataDir  string         `json:"data_dir" yaml:"data_dir"`
	FileName string         `json:"file" yaml:"file"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	S3       S3Config       `json:"s3" yaml:"s3"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

// S3Config configures the s3 backend. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3Config struct {
	Bucket    string `json:"bucket" yaml:"bucket"`
	Key       string `json:"key" yaml:"key"`
	Region    string `json:"region" yaml:"region"`
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	PathStyle bool   `json:"path_style" yaml:"path_style"`
}

// Supported backend names.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
)

// Defaults applied when the corresponding Config field is empty.
const (
	DefaultFileName = "workers.json"
	DefaultS3Key    = "roster/workers.json"
	DefaultS3Region = "us-east-1"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDSNMissing     = errors.New("postgres backend requires a dsn")
	ErrBucketMissing  = errors.New("s3 backend requires a bucket")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSON:     true,
	BackendSQLite:   true,
	BackendPostgres: true,
	BackendS3:       true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Backend {
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return ErrDSNMissing
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return ErrBucketMissing
		}
	}
	return nil
}

// RecordsFile returns the configured JSON file name or DefaultFileName.
func (c Config) RecordsFile() string {
	if c.FileName == "" {
		return DefaultFileName
	}
	return c.FileName
}
