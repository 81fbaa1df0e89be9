package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/pkg/runner"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project-id>",
	Short: "Validate local scan data against the permanent archive",
	Long: `Compare a project's local working copy against the permanent archive.

Every archived file is checked for presence, size and content checksum in
the local library, and local files without an archived counterpart are
reported. A mismatch is a verdict, not a failure: the check keeps going
and reports everything it found.

Examples:
  # Validate all archived scans of project 42
  tams validate 42

  # Validate only scan 7
  tams validate 42 --scan 7`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Int64Slice("scan", nil, "Scan id to validate (repeatable; default: all)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	projectID, err := cmdutil.ParseID(args[0], "project")
	if err != nil {
		return err
	}
	scanIDs, _ := cmd.Flags().GetInt64Slice("scan")

	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}

	job, err := runner.NewValidateJob(runner.ValidateConfig{
		Layout:    cfg.Library.Layout(),
		ProjectID: projectID,
		ScanIDs:   scanIDs,
	})
	if err != nil {
		return err
	}

	if err := waitJob(cfg, job.Job); err != nil {
		return err
	}

	switch job.Status() {
	case runner.StatusKilled:
		fmt.Println("Validation stopped before completion; no verdict.")
		return nil
	case runner.StatusFinished:
		valid, _ := job.Result()
		if valid {
			fmt.Printf("Project %d validated: local copies match the archive.\n", projectID)
			return nil
		}
		mismatches := job.Mismatches()
		fmt.Printf("Project %d does NOT match the archive:\n", projectID)
		for _, m := range mismatches {
			fmt.Printf("  %s\n", m)
		}
		return fmt.Errorf("%d mismatch(es) found", len(mismatches))
	default:
		return fmt.Errorf("validation could not complete: %w", job.Err())
	}
}
