package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jellexet/valuebuf/pkg/buffer"
	"github.com/jellexet/valuebuf/pkg/pool"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.LogLevel)
	assert.Equal(t, zapcore.InfoLevel, cfg.level())
	assert.Equal(t, PoolShared, cfg.Buffer.Pool)
	assert.Equal(t, buffer.DefaultCapacity, cfg.Buffer.InitialCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeFile(t, "vedit.yaml", `
debug: true
log_level: warn
buffer:
  pool: heap
  initial_capacity: 4096
  track: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, PoolHeap, cfg.Buffer.Pool)
	assert.Equal(t, 4096, cfg.Buffer.InitialCapacity)
	assert.True(t, cfg.Buffer.Track)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "vedit.yaml", "buffer:\n  pool: heap\n")
	t.Setenv("VEDIT_BUFFER_POOL", "shared")
	t.Setenv("VEDIT_BUFFER_INITIAL_CAPACITY", "128")
	t.Setenv("VEDIT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, PoolShared, cfg.Buffer.Pool)
	assert.Equal(t, 128, cfg.Buffer.InitialCapacity)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "buffer: [unterminated\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"heap pool", func(c *Config) { c.Buffer.Pool = PoolHeap }, ""},
		{"zero capacity", func(c *Config) { c.Buffer.InitialCapacity = 0 }, ""},
		{"unknown pool", func(c *Config) { c.Buffer.Pool = "arena" }, "unknown buffer pool"},
		{"negative capacity", func(c *Config) { c.Buffer.InitialCapacity = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		want  zapcore.Level
	}{
		{"debug", false, zapcore.DebugLevel},
		{"INFO", true, zapcore.InfoLevel},
		{"warn", false, zapcore.WarnLevel},
		{"error", false, zapcore.ErrorLevel},
		{"", true, zapcore.DebugLevel},
		{"verbose", false, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level, Debug: tt.debug}
		assert.Equal(t, tt.want, cfg.level(), "level %q debug %v", tt.level, tt.debug)
	}

	cfg := DefaultConfig()
	cfg.Debug = true
	assert.Equal(t, zapcore.DebugLevel, cfg.level(), "debug flag on defaults")
}

func TestDebugFlagEnablesRegionLogging(t *testing.T) {
	path := writeFile(t, "vedit.yaml", "debug: true\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.LogFile = filepath.Join(t.TempDir(), "vedit.log")

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	p, _ := cfg.NewProvider(logger)
	assert.IsType(t, &pool.Logged{}, p)
}

func TestNewLogger(t *testing.T) {
	t.Run("no file discards", func(t *testing.T) {
		logger, err := DefaultConfig().NewLogger()
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vedit.log")
		cfg := DefaultConfig()
		cfg.LogFile = path
		cfg.LogLevel = "debug"

		logger, err := cfg.NewLogger()
		require.NoError(t, err)
		logger.Debug("hello from test", zap.Int("n", 1))
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello from test")
	})
}

func TestNewProvider(t *testing.T) {
	t.Run("shared by default", func(t *testing.T) {
		p, counting := DefaultConfig().NewProvider(zap.NewNop())
		assert.Nil(t, counting)
		assert.Same(t, pool.Default, p)
	})

	t.Run("heap", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Buffer.Pool = PoolHeap
		p, _ := cfg.NewProvider(nil)
		assert.IsType(t, pool.Heap{}, p)
	})

	t.Run("tracked", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Buffer.Track = true
		p, counting := cfg.NewProvider(zap.NewNop())
		require.NotNil(t, counting)
		assert.Same(t, counting, p)

		b := buffer.NewString("tracked text", buffer.WithProvider(p))
		assert.Equal(t, 1, counting.Stats().Outstanding)
		b.Dispose()
		assert.Equal(t, 0, counting.Stats().Outstanding)
	})

	t.Run("debug logging", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		p, _ := DefaultConfig().NewProvider(zap.New(core))
		assert.IsType(t, &pool.Logged{}, p)

		b := buffer.New(buffer.WithProvider(p))
		b.Dispose()
		assert.Equal(t, 2, logs.Len())
	})
}
