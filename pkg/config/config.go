// Package config loads the client configuration from file, environment and
// defaults. No ambient global state: the loaded Config is passed explicitly
// to the constructors that need it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/tams/internal/bytesize"
	"github.com/marmos91/tams/pkg/catalog"
	"github.com/marmos91/tams/pkg/library"
)

// Config is the TAMS client configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (TAMS_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Database configures the scan catalog (SQLite or PostgreSQL).
	Database catalog.Config `mapstructure:"database" yaml:"database"`

	// Library configures the two-tier file library.
	Library LibraryConfig `mapstructure:"library" yaml:"library"`

	// Jobs configures the background job pool.
	Jobs JobsConfig `mapstructure:"jobs" yaml:"jobs"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format selects the handler: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is the destination: stdout, stderr or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// LibraryConfig locates the two library tiers. The roots stay empty until
// the user points them at real storage; jobs that need them fail their
// preconditions with a clear message instead.
type LibraryConfig struct {
	// LocalRoot is the root of the local working-copy tier.
	LocalRoot string `mapstructure:"local_root" yaml:"local_root"`

	// PermanentRoot is the root of the permanent archival tier.
	PermanentRoot string `mapstructure:"permanent_root" yaml:"permanent_root"`

	// ArchiveDirName is the archive subfolder name under each scan
	// directory. Default: "permanent".
	ArchiveDirName string `mapstructure:"archive_dir_name" validate:"required" yaml:"archive_dir_name"`
}

// Layout converts the library configuration into a path resolver.
func (c LibraryConfig) Layout() library.Layout {
	return library.Layout{
		LocalRoot:      c.LocalRoot,
		PermanentRoot:  c.PermanentRoot,
		ArchiveDirName: c.ArchiveDirName,
	}
}

// JobsConfig tunes the background job pool.
type JobsConfig struct {
	// Workers is the number of concurrent job workers.
	Workers int `mapstructure:"workers" validate:"required,gt=0" yaml:"workers"`

	// QueueSize is the capacity of the pending-job queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0" yaml:"queue_size"`

	// StopTimeout is how long shutdown waits for running jobs to reach a
	// checkpoint.
	StopTimeout time.Duration `mapstructure:"stop_timeout" validate:"required,gt=0" yaml:"stop_timeout"`

	// ConfirmThreshold asks for an extra confirmation before starting a
	// transfer whose indexed size is at or above this value. 0 disables it.
	ConfirmThreshold bytesize.ByteSize `mapstructure:"confirm_threshold" yaml:"confirm_threshold"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns metrics collection on. Default: false.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// ListenAddr is the /metrics listen address.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Load loads configuration from file, environment, and defaults.
// An empty configPath uses the default location.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and points the user at `tams init` when no
// config file exists yet.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  tams init\n\n"+
				"Or specify a custom config file:\n"+
				"  tams <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  tams init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in YAML.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600 since the database section may contain credentials.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setupViper configures environment variable and config file handling.
// Environment variables use the TAMS_ prefix with underscores, e.g.
// TAMS_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("TAMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the config file if present. A missing file is not an
// error; defaults apply instead.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks combines the custom decode hooks: human-readable byte
// sizes and durations.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook converts strings like "1Gi" or "100MB" and plain
// numbers to bytesize.ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" or "5m" to time.Duration.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory: $XDG_CONFIG_HOME/tams,
// falling back to ~/.config/tams.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tams")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tams")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path (for init).
func GetConfigDir() string {
	return getConfigDir()
}
