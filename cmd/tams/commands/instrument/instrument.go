// Package instrument implements catalog instrument commands for tams.
package instrument

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for instrument browsing.
var Cmd = &cobra.Command{
	Use:   "instrument",
	Short: "Browse catalog instruments",
	Long: `Browse acquisition instruments in the scan catalog, for example to
look up the id to pass to "tams scan create".

Examples:
  # List all instruments
  tams instrument list`,
}

func init() {
	Cmd.AddCommand(listCmd)
}
