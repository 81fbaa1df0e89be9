package scan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/internal/cli/output"
	"github.com/marmos91/tams/internal/logger"
	"github.com/marmos91/tams/pkg/library"
)

var (
	createProjectID    int64
	createInstrumentID int64
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new scan",
	Long: `Register a new scan in the catalog and create its local scan
directory: the raw-data area, the metadata sidecar and a README placeholder.

Both the project and the instrument must already exist in the catalog.

Examples:
  # Register a scan for project 42 on instrument 3
  tams scan create --project 42 --instrument 3`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().Int64Var(&createProjectID, "project", 0, "Project the scan belongs to (required)")
	createCmd.Flags().Int64Var(&createInstrumentID, "instrument", 0, "Instrument the scan was acquired on (required)")
	_ = createCmd.MarkFlagRequired("project")
	_ = createCmd.MarkFlagRequired("instrument")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cat, err := cmdutil.OpenCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	scanID, err := cat.CreateScan(ctx, createProjectID, createInstrumentID)
	if err != nil {
		return err
	}

	// Materialize the scan directory in the local tier when one is
	// configured; catalog-only setups just get the row.
	if cfg.Library.LocalRoot != "" {
		layout := cfg.Library.Layout()
		scanDir := layout.LocalScanDir(createProjectID, scanID)
		h := library.Hardcoded{
			ScanID:       scanID,
			ProjectID:    createProjectID,
			InstrumentID: createInstrumentID,
		}
		if err := layout.InitScanDir(scanDir, h); err != nil {
			return fmt.Errorf("scan %d registered, but its local directory could not be created: %w", scanID, err)
		}
		logger.Info("Created local scan directory",
			logger.KeyScanID, scanID, logger.KeyPath, scanDir)
	}

	row, err := cat.GetScanMetadata(ctx, scanID)
	if err != nil {
		return err
	}
	return cmdutil.PrintResource(os.Stdout, row, output.MetadataTable{
		Labels: row.Labels,
		Values: cmdutil.FormatValues(row.Values),
	})
}
