package project

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Long: `List all projects in the scan catalog.

Examples:
  # List projects as table
  tams project list

  # List as JSON
  tams project list -o json`,
	RunE: runList,
}

// ProjectList is a list of projects for table rendering.
type ProjectList []catalog.Project

// Headers implements TableRenderer.
func (pl ProjectList) Headers() []string {
	return []string{"ID", "TITLE", "TYPE", "KEYWORD"}
}

// Rows implements TableRenderer.
func (pl ProjectList) Rows() [][]string {
	rows := make([][]string, 0, len(pl))
	for _, p := range pl {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.ProjectID), p.Title, p.ProjectType, p.Keyword,
		})
	}
	return rows
}

func runList(cmd *cobra.Command, args []string) error {
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

	projects, err := cat.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, projects, len(projects) == 0, "No projects found.", ProjectList(projects))
}
