package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "tdashboard.cfg.json"

// SourceConfig selects where telemetry snapshots come from.
type SourceConfig struct {
	Type       string        `json:"type" mapstructure:"type"`
	URL        string        `json:"url" mapstructure:"url"`
	Interval   time.Duration `json:"interval" mapstructure:"interval"`
	ReplayFile string        `json:"replayFile" mapstructure:"replayFile"`
	ReplayLoop bool          `json:"replayLoop" mapstructure:"replayLoop"`
}

// MemoryConfig holds in-memory frame store settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	HistorySize    int    `json:"historySize" mapstructure:"historySize"`
}

// WebSocketConfig holds frame streaming settings
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// SQLiteConfig holds SQLite storage settings. An empty Path keeps the
// database in memory and dumps it to DumpPath periodically.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
}

// StorageConfig holds storage backend configuration
type StorageConfig struct {
	Backends      []string        `json:"backends" mapstructure:"backends"`
	BufferSize    int             `json:"bufferSize" mapstructure:"bufferSize"`
	FlushInterval time.Duration   `json:"flushInterval" mapstructure:"flushInterval"`
	Memory        MemoryConfig    `json:"memory" mapstructure:"memory"`
	WebSocket     WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	SQLite        SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers the default value of every known key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("language", "")

	viper.SetDefault("source.type", "signalr")
	viper.SetDefault("source.url", "http://localhost:25555")
	viper.SetDefault("source.interval", "250ms")
	viper.SetDefault("source.replayFile", "")
	viper.SetDefault("source.replayLoop", false)

	viper.SetDefault("storage.backends", []string{"memory"})
	viper.SetDefault("storage.bufferSize", 1000)
	viper.SetDefault("storage.flushInterval", "2s")
	viper.SetDefault("storage.memory.outputDir", "./frames")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.historySize", 600)
	viper.SetDefault("storage.websocket.url", "ws://localhost:8080/ws")
	viper.SetDefault("storage.websocket.secret", "")
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpInterval", "1m")
	viper.SetDefault("storage.sqlite.dumpPath", "./tdashboard.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "tdashboard")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "tdashboard")
	viper.SetDefault("influx.bucket", "truck_telemetry")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "tdashboard")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "30s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "1m")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// GetLanguage returns the configured locale tag, empty when unset.
func GetLanguage() string {
	return viper.GetString("language")
}

// GetSourceConfig returns the telemetry source configuration.
func GetSourceConfig() SourceConfig {
	return SourceConfig{
		Type:       viper.GetString("source.type"),
		URL:        viper.GetString("source.url"),
		Interval:   viper.GetDuration("source.interval"),
		ReplayFile: viper.GetString("source.replayFile"),
		ReplayLoop: viper.GetBool("source.replayLoop"),
	}
}

// GetStorageConfig returns the storage configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Backends:      viper.GetStringSlice("storage.backends"),
		BufferSize:    viper.GetInt("storage.bufferSize"),
		FlushInterval: viper.GetDuration("storage.flushInterval"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			HistorySize:    viper.GetInt("storage.memory.historySize"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}
