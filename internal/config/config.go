package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jellexet/valuebuf/pkg/buffer"
	"github.com/jellexet/valuebuf/pkg/pool"
)

// Pool names accepted by the buffer.pool key
const (
	PoolShared = "shared"
	PoolHeap   = "heap"
)

// Config holds all configuration for the editor
type Config struct {
	Debug    bool   `yaml:"debug" mapstructure:"debug"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string `yaml:"log_file" mapstructure:"log_file"`

	// Document storage configuration
	Buffer BufferConfig `yaml:"buffer" mapstructure:"buffer"`
}

// BufferConfig selects where document storage comes from
type BufferConfig struct {
	Pool            string `yaml:"pool" mapstructure:"pool"`
	InitialCapacity int    `yaml:"initial_capacity" mapstructure:"initial_capacity"`

	// Track wraps the provider in a pool.Counting so leaks show up in the log
	Track bool `yaml:"track" mapstructure:"track"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "",
		LogFile:  "",
		Buffer: BufferConfig{
			Pool:            PoolShared,
			InitialCapacity: buffer.DefaultCapacity,
			Track:           false,
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// Environment variables use the VEDIT_ prefix, e.g. VEDIT_BUFFER_POOL.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Register every key so AutomaticEnv can find nested ones
	v.SetDefault("debug", config.Debug)
	v.SetDefault("log_level", config.LogLevel)
	v.SetDefault("log_file", config.LogFile)
	v.SetDefault("buffer.pool", config.Buffer.Pool)
	v.SetDefault("buffer.initial_capacity", config.Buffer.InitialCapacity)
	v.SetDefault("buffer.track", config.Buffer.Track)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("VEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for values the editor cannot use
func (c *Config) Validate() error {
	switch c.Buffer.Pool {
	case PoolShared, PoolHeap:
	default:
		return fmt.Errorf("unknown buffer pool %q (want %s or %s)", c.Buffer.Pool, PoolShared, PoolHeap)
	}
	if c.Buffer.InitialCapacity < 0 {
		return fmt.Errorf("initial capacity must not be negative, got %d", c.Buffer.InitialCapacity)
	}
	return nil
}

// level resolves LogLevel. An empty LogLevel means debug when Debug is set
// and info otherwise.
func (c *Config) level() zapcore.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if c.Debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// NewLogger creates a zap logger based on the configuration.
// The editor owns the terminal, so entries only go to LogFile; without a
// log file the logger discards everything.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.LogFile == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.Level.SetLevel(c.level())
	cfg.OutputPaths = []string{c.LogFile}
	cfg.ErrorOutputPaths = []string{c.LogFile}

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("error creating logger: %w", err)
	}

	return logger, nil
}

// NewProvider builds the storage provider chain for documents.
//
// The base provider is pool.Default or pool.Heap. With Buffer.Track set it
// is wrapped in a pool.Counting, which is also returned so callers can
// report its stats; otherwise the returned *pool.Counting is nil. At debug
// level every rent and return is logged.
func (c *Config) NewProvider(logger *zap.Logger) (pool.Provider, *pool.Counting) {
	var p pool.Provider = pool.Default
	if c.Buffer.Pool == PoolHeap {
		p = pool.Heap{}
	}

	var counting *pool.Counting
	if c.Buffer.Track {
		counting = pool.NewCounting(p)
		p = counting
	}

	if logger != nil && logger.Core().Enabled(zapcore.DebugLevel) {
		p = pool.NewLogged(p, logger)
	}
	return p, counting
}
