// Package config provides configuration management for rframe operations
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables read by LoadFromEnv and Load
const EnvPrefix = "RFRAME_"

// Config represents the global configuration for rframe operations
type Config struct {
	// Group processing
	GroupParallelThreshold int `json:"group_parallel_threshold" yaml:"group_parallel_threshold" koanf:"group_parallel_threshold"` // Minimum group count to fan out GroupModify
	WorkerPoolSize         int `json:"worker_pool_size" yaml:"worker_pool_size" koanf:"worker_pool_size"`                         // Number of worker goroutines (0 = auto-detect)

	// Collection
	CollectChunkSize int  `json:"collect_chunk_size" yaml:"collect_chunk_size" koanf:"collect_chunk_size"` // Items per parallel collection partition
	StringFallback   bool `json:"string_fallback" yaml:"string_fallback" koanf:"string_fallback"`          // Store unconvertable values as text

	// Binding
	StrictBinding bool `json:"strict_binding" yaml:"strict_binding" koanf:"strict_binding"` // Fail binding on missing or mistyped columns

	// Observability
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection" koanf:"metrics_collection"` // Enable metrics collection
	MetricsAddr       string `json:"metrics_addr" yaml:"metrics_addr" koanf:"metrics_addr"`                   // Serve metrics over HTTP while a command runs
	LogLevel          string `json:"log_level" yaml:"log_level" koanf:"log_level"`
	LogEncoding       string `json:"log_encoding" yaml:"log_encoding" koanf:"log_encoding"` // json or console
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultGroupParallelThreshold = 8
	DefaultCollectChunkSize       = 1024
	DefaultLogLevel               = "info"
	DefaultLogEncoding            = "console"
)

func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		GroupParallelThreshold: DefaultGroupParallelThreshold,
		WorkerPoolSize:         0, // Auto-detect
		CollectChunkSize:       DefaultCollectChunkSize,
		StringFallback:         true,
		StrictBinding:          true,
		MetricsCollection:      false,
		LogLevel:               DefaultLogLevel,
		LogEncoding:            DefaultLogEncoding,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.GroupParallelThreshold <= 0 {
		return fmt.Errorf("GroupParallelThreshold must be positive, got %d", c.GroupParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if c.CollectChunkSize <= 0 {
		return fmt.Errorf("CollectChunkSize must be positive, got %d", c.CollectChunkSize)
	}

	switch c.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("LogEncoding must be json or console, got %q", c.LogEncoding)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.GroupParallelThreshold == 0 {
		c.GroupParallelThreshold = defaults.GroupParallelThreshold
	}
	if c.CollectChunkSize == 0 {
		c.CollectChunkSize = defaults.CollectChunkSize
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = defaults.LogEncoding
	}

	// Boolean fields are left alone so that an explicit false survives.
	// Use NewConfig() directly if you need boolean defaults.

	return c
}

// Workers returns the worker pool size, resolving 0 to the CPU count
func (c Config) Workers() int {
	if c.WorkerPoolSize > 0 {
		return c.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data
func LoadFromYAML(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// YAML renders the configuration as YAML
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// LoadFromFile loads configuration from a JSON or YAML file
func LoadFromFile(filename string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		data, err := os.ReadFile(filename)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
		}
		return LoadFromJSON(data)
	case ".yaml", ".yml":
		k := koanf.New(".")
		if err := loadDefaults(k); err != nil {
			return Config{}, err
		}
		if err := k.Load(file.Provider(filename), kyaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
		}
		return decode(k)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}
}

// LoadFromEnv loads configuration from RFRAME_ environment variables on top of the defaults
func LoadFromEnv() (Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return Config{}, err
	}
	if err := loadEnv(k); err != nil {
		return Config{}, err
	}
	return decode(k)
}

// Load builds a configuration from defaults, an optional YAML file,
// RFRAME_ environment variables and explicitly set flags, in increasing
// order of precedence. Flag names are kebab-case forms of the config keys.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := loadDefaults(k); err != nil {
		return Config{}, err
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: RFRAME_LOG_LEVEL -> log_level
	if err := loadEnv(k); err != nil {
		return Config{}, err
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	return decode(k)
}

func loadDefaults(k *koanf.Koanf) error {
	d := NewConfig()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"group_parallel_threshold": d.GroupParallelThreshold,
		"worker_pool_size":         d.WorkerPoolSize,
		"collect_chunk_size":       d.CollectChunkSize,
		"string_fallback":          d.StringFallback,
		"strict_binding":           d.StrictBinding,
		"metrics_collection":       d.MetricsCollection,
		"metrics_addr":             d.MetricsAddr,
		"log_level":                d.LogLevel,
		"log_encoding":             d.LogEncoding,
	}, "."), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

func loadEnv(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return fmt.Errorf("failed to load env vars: %w", err)
	}
	return nil
}

func decode(k *koanf.Koanf) (Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
