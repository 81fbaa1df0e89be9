package config

import (
	"strings"
	"time"

	"github.com/marmos91/tams/internal/bytesize"
	"github.com/marmos91/tams/pkg/library"
)

// DefaultConfirmThreshold is the indexed transfer size above which the CLI
// asks for an extra confirmation before starting the job.
const DefaultConfirmThreshold = 10 * bytesize.GiB

// GetDefaultConfig returns a configuration with all defaults applied.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any unspecified configuration
// fields. Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	cfg.Database.ApplyDefaults()
	applyLibraryDefaults(&cfg.Library)
	applyJobsDefaults(&cfg.Jobs)
	applyMetricsDefaults(&cfg.Metrics)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyLibraryDefaults sets library tier defaults. The roots have no
// sensible default and stay empty until `tams init` writes them.
func applyLibraryDefaults(cfg *LibraryConfig) {
	if cfg.ArchiveDirName == "" {
		cfg.ArchiveDirName = library.DefaultArchiveDirName
	}
}

// applyJobsDefaults sets job pool defaults.
func applyJobsDefaults(cfg *JobsConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 16
	}
	if cfg.StopTimeout == 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	if cfg.ConfirmThreshold == 0 {
		cfg.ConfirmThreshold = DefaultConfirmThreshold
	}
}

// applyMetricsDefaults sets metrics defaults. Collection is opt-in.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "localhost:9090"
	}
}
