package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/pkg/catalog"
	"github.com/marmos91/tams/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and catalog schema",
	Long: `Create a default configuration file and initialize the catalog schema.

The configuration is written to $XDG_CONFIG_HOME/tams/config.yaml (or the
path given with --config). The catalog schema migration is idempotent, so
re-running init against an existing catalog is safe.

Examples:
  # Initialize with defaults (SQLite catalog)
  tams init

  # Initialize at a custom location
  tams init --config /srv/tams/config.yaml

  # Overwrite an existing configuration file
  tams init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cmdutil.Flags.ConfigFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	var cfg *config.Config
	if _, err := os.Stat(path); err == nil && !initForce {
		// Keep the existing configuration; init still makes sure the
		// catalog schema exists.
		fmt.Printf("Configuration file already exists: %s (use --force to overwrite)\n", path)
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
	} else {
		cfg = config.GetDefaultConfig()
		if err := config.SaveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", path)
	}

	cat, err := catalog.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.Migrate(); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	fmt.Println("Catalog schema is up to date.")

	if cfg.Library.LocalRoot == "" || cfg.Library.PermanentRoot == "" {
		fmt.Printf("\nNext, set library.local_root and library.permanent_root in %s\n", path)
	}
	return nil
}
