// Package commands implements the CLI commands for the tams client.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	instrumentcmd "github.com/marmos91/tams/cmd/tams/commands/instrument"
	projectcmd "github.com/marmos91/tams/cmd/tams/commands/project"
	scancmd "github.com/marmos91/tams/cmd/tams/commands/scan"
	usercmd "github.com/marmos91/tams/cmd/tams/commands/user"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tams",
	Short: "TAMS - Scan archive management client",
	Long: `tams is the command-line client for a TAMS scan archive.

Use this tool to browse the scan catalog, move scan data between the local
working copy and the permanent archive, and validate local copies against
the archive.

Use "tams [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync flags to cmdutil.Flags for subcommands
		cmdutil.Flags.ConfigFile, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.Yes, _ = cmd.Flags().GetBool("yes")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: $XDG_CONFIG_HOME/tams/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json|yaml)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Assume yes for all confirmation prompts")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(projectcmd.Cmd)
	rootCmd.AddCommand(scancmd.Cmd)
	rootCmd.AddCommand(instrumentcmd.Cmd)
	rootCmd.AddCommand(usercmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
