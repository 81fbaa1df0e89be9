package scan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List all scans of a project",
	Long: `List all scans belonging to a project, ordered by id.

Examples:
  # List scans of project 42
  tams scan list 42

  # As JSON
  tams scan list 42 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

// ScanList is a list of scans for table rendering.
type ScanList []catalog.Scan

// Headers implements TableRenderer.
func (sl ScanList) Headers() []string {
	return []string{"ID", "PROJECT", "INSTRUMENT"}
}

// Rows implements TableRenderer.
func (sl ScanList) Rows() [][]string {
	rows := make([][]string, 0, len(sl))
	for _, s := range sl {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.ScanID),
			fmt.Sprintf("%d", s.ProjectID),
			fmt.Sprintf("%d", s.InstrumentID),
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
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

	// A project with no scans and a missing project look the same in the
	// scan table; resolve the project first for a clear error.
	if _, err := cat.GetProject(ctx, projectID); err != nil {
		return err
	}

	scans, err := cat.ListScans(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list scans: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, scans, len(scans) == 0, "No scans found.", ScanList(scans))
}
