// Package cmdutil provides shared utilities for tams commands.
package cmdutil

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/marmos91/tams/internal/cli/output"
	"github.com/marmos91/tams/internal/cli/prompt"
	"github.com/marmos91/tams/internal/logger"
	"github.com/marmos91/tams/pkg/catalog"
	"github.com/marmos91/tams/pkg/config"
	"github.com/marmos91/tams/pkg/metrics"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ConfigFile string
	Output     string
	Yes        bool
	Verbose    bool
}

// LoadConfig loads the configuration and initializes logging and metrics
// from it. Every command that touches the catalog or the library goes
// through here.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(Flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	logCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if Flags.Verbose {
		logCfg.Level = "DEBUG"
	}
	if err := logger.Init(logCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.Init()
	}
	return cfg, nil
}

// OpenCatalog opens the catalog and verifies the schema is present, so
// commands fail with a clear message against an uninitialized database.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Open(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := cat.ValidateTables(ctx); err != nil {
		_ = cat.Close()
		if catalog.IsMissingTables(err) {
			return nil, fmt.Errorf("%w\n\nRun 'tams init' to create the catalog schema", err)
		}
		return nil, err
	}
	return cat, nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// PrintOutput prints data in the specified format (JSON, YAML, or table).
// For table format, it displays emptyMsg if data is empty, otherwise uses the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResource prints a resource in the specified format.
// For table format, it uses the provided tableRenderer. For JSON/YAML, it outputs the resource.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// Confirm prompts for yes/no confirmation, honoring the --yes flag.
func Confirm(label string) (bool, error) {
	if Flags.Yes {
		return true, nil
	}
	return prompt.Confirm(label, false)
}

// ParseID parses a positional argument as a catalog id.
func ParseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", what, arg)
	}
	return id, nil
}

// FormatValues renders catalog row values for vertical metadata tables.
func FormatValues(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatValue(v)
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case *time.Time:
		if val == nil {
			return "-"
		}
		return val.Format("2006-01-02")
	case time.Time:
		return val.Format("2006-01-02")
	case string:
		if val == "" {
			return "-"
		}
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
