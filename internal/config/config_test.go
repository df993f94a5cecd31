package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/rframe/internal/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, 8, cfg.GroupParallelThreshold)
	assert.Equal(t, 0, cfg.WorkerPoolSize) // 0 means auto-detect
	assert.Equal(t, 1024, cfg.CollectChunkSize)
	assert.True(t, cfg.StringFallback)
	assert.True(t, cfg.StrictBinding)
	assert.False(t, cfg.MetricsCollection)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogEncoding)
	assert.Positive(t, cfg.Workers())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:   "valid config",
			mutate: func(c *config.Config) {},
		},
		{
			name:          "non-positive threshold",
			mutate:        func(c *config.Config) { c.GroupParallelThreshold = 0 },
			expectedError: "GroupParallelThreshold must be positive, got 0",
		},
		{
			name:          "negative worker pool",
			mutate:        func(c *config.Config) { c.WorkerPoolSize = -2 },
			expectedError: "WorkerPoolSize must be non-negative, got -2",
		},
		{
			name:          "zero chunk size",
			mutate:        func(c *config.Config) { c.CollectChunkSize = 0 },
			expectedError: "CollectChunkSize must be positive, got 0",
		},
		{
			name:          "bad encoding",
			mutate:        func(c *config.Config) { c.LogEncoding = "xml" },
			expectedError: `LogEncoding must be json or console, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestConfig_LoadFromJSON(t *testing.T) {
	cfg, err := config.LoadFromJSON([]byte(`{"group_parallel_threshold": 2, "strict_binding": false}`))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.GroupParallelThreshold)
	assert.False(t, cfg.StrictBinding)
	assert.Equal(t, 1024, cfg.CollectChunkSize) // filled by WithDefaults

	_, err = config.LoadFromJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	cfg, err := config.LoadFromYAML([]byte("collect_chunk_size: 16\nlog_level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.CollectChunkSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.GroupParallelThreshold)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	original := config.NewConfig()
	original.WorkerPoolSize = 3

	data, err := original.YAML()
	require.NoError(t, err)

	loaded, err := config.LoadFromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "rframe.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("worker_pool_size: 6\nstring_fallback: false\n"), 0o600))

	cfg, err := config.LoadFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.WorkerPoolSize)
	assert.False(t, cfg.StringFallback)
	assert.True(t, cfg.StrictBinding) // default survives

	jsonPath := filepath.Join(dir, "rframe.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"log_encoding": "json"}`), 0o600))

	cfg, err = config.LoadFromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogEncoding)
}

func TestConfig_UnsupportedFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rframe.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

	_, err := config.LoadFromFile(path)
	assert.ErrorContains(t, err, "unsupported config file format")
}

func TestConfig_LoadFromNonExistentFile(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("RFRAME_GROUP_PARALLEL_THRESHOLD", "3")
	t.Setenv("RFRAME_METRICS_COLLECTION", "true")
	t.Setenv("RFRAME_LOG_ENCODING", "json")

	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.GroupParallelThreshold)
	assert.True(t, cfg.MetricsCollection)
	assert.Equal(t, "json", cfg.LogEncoding)
}

func TestConfig_LoadFromEnvRejectsInvalidValues(t *testing.T) {
	t.Setenv("RFRAME_COLLECT_CHUNK_SIZE", "-5")

	_, err := config.LoadFromEnv()
	assert.ErrorContains(t, err, "CollectChunkSize must be positive")
}

func TestConfig_LoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rframe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nworker_pool_size: 2\ncollect_chunk_size: 10\n"), 0o600))
	t.Setenv("RFRAME_WORKER_POOL_SIZE", "4")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("collect-chunk-size", 1, "")
	flags.String("metrics-addr", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level", "error", "--metrics-addr", ":9100"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)    // flag beats file
	assert.Equal(t, 4, cfg.WorkerPoolSize)    // env beats file
	assert.Equal(t, 10, cfg.CollectChunkSize) // unset flag does not override
	assert.Equal(t, 8, cfg.GroupParallelThreshold)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestConfig_WithDefaults(t *testing.T) {
	partial := config.Config{WorkerPoolSize: 5}
	cfg := partial.WithDefaults()

	assert.Equal(t, 5, cfg.WorkerPoolSize)
	assert.Equal(t, 8, cfg.GroupParallelThreshold)
	assert.Equal(t, 1024, cfg.CollectChunkSize)
	assert.False(t, cfg.StrictBinding) // booleans are never defaulted
}

func TestGlobalConfig_SetAndGet(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	custom := config.NewConfig()
	custom.GroupParallelThreshold = 99
	config.SetGlobalConfig(custom)

	assert.Equal(t, 99, config.GetGlobalConfig().GroupParallelThreshold)
}
