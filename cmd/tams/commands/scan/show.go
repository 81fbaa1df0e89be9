package scan

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/internal/cli/output"
)

var showCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Show a scan with its references resolved",
	Long: `Show a single scan with its project and instrument foreign keys
resolved to display names.

Examples:
  # Show scan 7
  tams scan show 7`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	scanID, err := cmdutil.ParseID(args[0], "scan")
	if err != nil {
		return err
	}

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

	row, err := cat.GetScanMetadata(ctx, scanID)
	if err != nil {
		return err
	}

	return cmdutil.PrintResource(os.Stdout, row, output.MetadataTable{
		Labels: row.Labels,
		Values: cmdutil.FormatValues(row.Values),
	})
}
