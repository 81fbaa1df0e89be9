// Package scan implements catalog scan commands for tams.
package scan

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for scan browsing and creation.
var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "Browse and create catalog scans",
	Long: `Browse scans in the catalog and register new ones.

A scan belongs to exactly one project and one instrument; its id doubles
as the scan's directory name in both library tiers.

Examples:
  # List all scans of project 42
  tams scan list 42

  # Show a scan with its project and instrument resolved
  tams scan show 7

  # Register a new scan
  tams scan create --project 42 --instrument 3`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(createCmd)
}
