// Package user implements catalog user commands for tams.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for user browsing. The catalog treats users as
// read-only reference data; account management lives elsewhere.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "Browse catalog users",
	Long: `Browse users in the scan catalog.

Examples:
  # Show the metadata of user 5
  tams user show 5`,
}

func init() {
	Cmd.AddCommand(showCmd)
}
