package config

import (
	"strings"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "TXCONTEXT"

// DefaultProgramID owns every context buffer account unless overridden.
const DefaultProgramID = "SySTEM1eSU2p4BGQfQpimFEWWSC1XDFeun3Nqzz3rT7"

type StoreBackendType string

const (
	StoreBackend_LevelDB  StoreBackendType = "leveldb"
	StoreBackend_Postgres StoreBackendType = "postgres"
)

func ParseStoreBackend(s string) StoreBackendType {
	switch strings.ToLower(s) {
	case string(StoreBackend_Postgres):
		return StoreBackend_Postgres
	default:
		return StoreBackend_LevelDB
	}
}

type Config struct {
	Debug            bool
	ProgramID        string
	StoreConfig      StoreConfig
	DatabaseConfig   DatabaseConfig
	BufferConfig     BufferConfig
	DataDogConfig    DataDogConfig
	PrometheusConfig PrometheusConfig

	BufferCommandConfig BufferCommandConfig
	ReplayConfig        ReplayConfig
}

type StoreConfig struct {
	Backend     StoreBackendType
	LevelDBPath string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DbName      string
	SchemaName  string
	SSLMode     string
	SSLCert     string
	SSLKey      string
	SSLRootCert string
}

type BufferConfig struct {
	// Capacity is the account size used when creating new buffer accounts.
	Capacity int
	// OutputRegionCapacity bounds the emitted output region of one invocation.
	OutputRegionCapacity int
}

type DataDogConfig struct {
	StatsdConfig struct {
		Enabled    bool
		Url        string
		SampleRate float64
	}
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type BufferCommandConfig struct {
	Key    string
	Root   string
	Reinit bool
}

type ReplayConfig struct {
	ScenarioFile     string
	OutputFile       string
	ShowProgressBars bool
}

var (
	Debug     = "debug"
	ProgramID = "program-id"

	StoreBackend     = "store.backend"
	StoreLevelDBPath = "store.leveldb-path"

	DatabaseHost        = "database.host"
	DatabasePort        = "database.port"
	DatabaseUser        = "database.user"
	DatabasePassword    = "database.password"
	DatabaseDbName      = "database.db_name"
	DatabaseSchemaName  = "database.schema_name"
	DatabaseSSLMode     = "database.ssl_mode"
	DatabaseSSLCert     = "database.ssl_cert"
	DatabaseSSLKey      = "database.ssl_key"
	DatabaseSSLRootCert = "database.ssl_root_cert"

	BufferCapacity             = "buffer.capacity"
	BufferOutputRegionCapacity = "buffer.output-region-capacity"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample_rate"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	// command specific flags
	BufferKey        = "buffer-key"
	BufferRoot       = "buffer-root"
	BufferReinit     = "reinit"
	ScenarioFile     = "scenario"
	OutputFile       = "output"
	ShowProgressBars = "progress"
)

const (
	DefaultBufferCapacity       = 20 * 1024
	DefaultOutputRegionCapacity = 10 * 1024
)

func NewConfig() *Config {
	return &Config{
		Debug:     viper.GetBool(normalizeFlagName(Debug)),
		ProgramID: viperStringOrDefault(ProgramID, DefaultProgramID),

		StoreConfig: StoreConfig{
			Backend:     ParseStoreBackend(viper.GetString(normalizeFlagName(StoreBackend))),
			LevelDBPath: viper.GetString(normalizeFlagName(StoreLevelDBPath)),
		},

		DatabaseConfig: DatabaseConfig{
			Host:        viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:        viper.GetInt(normalizeFlagName(DatabasePort)),
			User:        viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:    viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:      viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName:  viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SSLMode:     viper.GetString(normalizeFlagName(DatabaseSSLMode)),
			SSLCert:     viper.GetString(normalizeFlagName(DatabaseSSLCert)),
			SSLKey:      viper.GetString(normalizeFlagName(DatabaseSSLKey)),
			SSLRootCert: viper.GetString(normalizeFlagName(DatabaseSSLRootCert)),
		},

		BufferConfig: BufferConfig{
			Capacity:             viperIntOrDefault(BufferCapacity, DefaultBufferCapacity),
			OutputRegionCapacity: viperIntOrDefault(BufferOutputRegionCapacity, DefaultOutputRegionCapacity),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: struct {
				Enabled    bool
				Url        string
				SampleRate float64
			}{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},

		BufferCommandConfig: BufferCommandConfig{
			Key:    viper.GetString(normalizeFlagName(BufferKey)),
			Root:   viper.GetString(normalizeFlagName(BufferRoot)),
			Reinit: viper.GetBool(normalizeFlagName(BufferReinit)),
		},

		ReplayConfig: ReplayConfig{
			ScenarioFile:     viper.GetString(normalizeFlagName(ScenarioFile)),
			OutputFile:       viper.GetString(normalizeFlagName(OutputFile)),
			ShowProgressBars: viper.GetBool(normalizeFlagName(ShowProgressBars)),
		},
	}
}

func viperStringOrDefault(key string, def string) string {
	if v := viper.GetString(normalizeFlagName(key)); v != "" {
		return v
	}
	return def
}

func viperIntOrDefault(key string, def int) int {
	if v := viper.GetInt(normalizeFlagName(key)); v > 0 {
		return v
	}
	return def
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}
