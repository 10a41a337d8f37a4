// Config loading for the roster CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/roster/internal/logger"
	"github.com/mesh-intelligence/roster/internal/paths"
	"github.com/mesh-intelligence/roster/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "ROSTER"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyFile        = "file"
	cfgKeyLogLevel    = "log.level"
	cfgKeyLogFormat   = "log.format"
	cfgKeyPostgresDSN = "postgres.dsn"
	cfgKeyS3Bucket    = "s3.bucket"
	cfgKeyS3Key       = "s3.key"
	cfgKeyS3Region    = "s3.region"
	cfgKeyS3Endpoint  = "s3.endpoint"
	cfgKeyS3PathStyle = "s3.path_style"

	defaultLogLevel = "warn"
)

// envKeys are the keys a ROSTER_* variable overrides. data_dir is absent:
// ROSTER_DATA_DIR ranks below config.yaml and is handled by paths.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyFile,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
	cfgKeyPostgresDSN,
	cfgKeyS3Bucket,
	cfgKeyS3Key,
	cfgKeyS3Region,
	cfgKeyS3Endpoint,
	cfgKeyS3PathStyle,
}

// envName returns the variable bound to key, e.g. log.level -> ROSTER_LOG_LEVEL.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendJSON)
	v.SetDefault(cfgKeyFile, types.DefaultFileName)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, logger.FormatConsole)
	v.SetDefault(cfgKeyS3Key, types.DefaultS3Key)
	v.SetDefault(cfgKeyS3Region, types.DefaultS3Region)
	for _, key := range envKeys {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// buildConfig resolves the storage configuration from flags and viper.
func buildConfig(v *viper.Viper, f rootFlags) (types.Config, error) {
	backend := f.backend
	if backend == "" {
		backend = v.GetString(cfgKeyBackend)
	}
	dataDir, err := paths.ResolveDataDir(f.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{
		Backend:  strings.ToLower(strings.TrimSpace(backend)),
		DataDir:  dataDir,
		FileName: v.GetString(cfgKeyFile),
		Postgres: types.PostgresConfig{DSN: v.GetString(cfgKeyPostgresDSN)},
		S3: types.S3Config{
			Bucket:    v.GetString(cfgKeyS3Bucket),
			Key:       v.GetString(cfgKeyS3Key),
			Region:    v.GetString(cfgKeyS3Region),
			Endpoint:  v.GetString(cfgKeyS3Endpoint),
			PathStyle: v.GetBool(cfgKeyS3PathStyle),
		},
	}, nil
}

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend  string                `yaml:"backend"`
	DataDir  string                `yaml:"data_dir,omitempty"`
	File     string                `yaml:"file"`
	Log      logSection            `yaml:"log"`
	Postgres *types.PostgresConfig `yaml:"postgres,omitempty"`
	S3       *types.S3Config       `yaml:"s3,omitempty"`
}

type logSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const configHeader = "# roster configuration\n# ROSTER_* environment variables override these keys.\n\n"

// writeConfigIfMissing creates config.yaml in configDir from cfg. An existing
// file is left alone and false is returned.
func writeConfigIfMissing(configDir string, cfg types.Config, dataDirFlag string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	out := configFile{
		Backend: cfg.Backend,
		File:    cfg.RecordsFile(),
		Log:     logSection{Level: defaultLogLevel, Format: logger.FormatConsole},
	}
	if dataDirFlag != "" {
		out.DataDir = cfg.DataDir
	}
	switch cfg.Backend {
	case types.BackendPostgres:
		out.Postgres = &types.PostgresConfig{DSN: cfg.Postgres.DSN}
	case types.BackendS3:
		s3 := cfg.S3
		out.S3 = &s3
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
