package project

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/internal/cli/output"
)

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show full metadata of a project",
	Long: `Show the full catalog row for a single project.

Examples:
  # Show project 42
  tams project show 42

  # As JSON
  tams project show 42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	projectID, err := cmdutil.ParseID(args[0], "project")
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

	row, err := cat.GetProjectMetadata(ctx, projectID)
	if err != nil {
		return err
	}

	return cmdutil.PrintResource(os.Stdout, row, output.MetadataTable{
		Labels: row.Labels,
		Values: cmdutil.FormatValues(row.Values),
	})
}
