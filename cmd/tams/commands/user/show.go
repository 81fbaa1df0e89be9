package user

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/internal/cli/output"
)

var showCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show full metadata of a user",
	Long: `Show the full catalog row for a single user.

Examples:
  # Show user 5
  tams user show 5

  # As YAML
  tams user show 5 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	userID, err := cmdutil.ParseID(args[0], "user")
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

	row, err := cat.GetUserMetadata(ctx, userID)
	if err != nil {
		return err
	}

	return cmdutil.PrintResource(os.Stdout, row, output.MetadataTable{
		Labels: row.Labels,
		Values: cmdutil.FormatValues(row.Values),
	})
}
