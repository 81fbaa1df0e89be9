// Package project implements catalog project commands for tams.
package project

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for project browsing.
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Browse catalog projects",
	Long: `Browse research projects in the scan catalog.

Examples:
  # List all projects
  tams project list

  # Show the full metadata of project 42
  tams project show 42`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
}
