package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/tams/cmd/tams/cmdutil"
	"github.com/marmos91/tams/internal/bytesize"
	"github.com/marmos91/tams/internal/cli/prompt"
	"github.com/marmos91/tams/pkg/config"
	"github.com/marmos91/tams/pkg/metrics"
	"github.com/marmos91/tams/pkg/runner"
)

var downloadCmd = &cobra.Command{
	Use:   "download <project-id>",
	Short: "Copy scan data from the permanent archive to the local library",
	Long: `Copy a project's scan data from the permanent archive into the local
working copy. By default every archived scan of the project is copied;
use --scan to restrict the transfer.

Files already present locally are kept, not overwritten. The transfer can
be interrupted with Ctrl+C; it stops at the next file boundary and keeps
everything copied so far.

Examples:
  # Download all archived scans of project 42
  tams download 42

  # Download only scans 7 and 9
  tams download 42 --scan 7 --scan 9`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, runner.DirectionDownload)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <project-id>",
	Short: "Copy scan data from the local library to the permanent archive",
	Long: `Copy a project's scan data from the local working copy into the
permanent archive. By default every local scan of the project is copied;
use --scan to restrict the transfer.

Files already present in the archive are kept, not overwritten.

Examples:
  # Archive all local scans of project 42
  tams upload 42

  # Archive only scan 7
  tams upload 42 --scan 7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd, args, runner.DirectionUpload)
	},
}

func init() {
	downloadCmd.Flags().Int64Slice("scan", nil, "Scan id to transfer (repeatable; default: all)")
	uploadCmd.Flags().Int64Slice("scan", nil, "Scan id to transfer (repeatable; default: all)")
}

func runTransfer(cmd *cobra.Command, args []string, direction runner.Direction) error {
	projectID, err := cmdutil.ParseID(args[0], "project")
	if err != nil {
		return err
	}
	scanIDs, _ := cmd.Flags().GetInt64Slice("scan")

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

	project, err := cat.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	verb := "Download"
	if direction == runner.DirectionUpload {
		verb = "Upload"
	}
	ok, err := cmdutil.Confirm(fmt.Sprintf("%s scan data for project %d (%s)?", verb, projectID, project.Title))
	if err != nil {
		return abortedOrErr(err)
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	job, err := runner.NewTransferJob(ctx, runner.TransferConfig{
		Layout:    cfg.Library.Layout(),
		ProjectID: projectID,
		ScanIDs:   scanIDs,
		Direction: direction,
	}, cat)
	if err != nil {
		return err
	}

	// Large transfers get a second look once the size is known.
	if threshold := cfg.Jobs.ConfirmThreshold; threshold > 0 && job.SizeInBytes() >= threshold.Int64() {
		ok, err := cmdutil.Confirm(fmt.Sprintf("This will transfer %s across %d files. Continue?",
			bytesize.Format(job.SizeInBytes()), job.MaxProgress()+1))
		if err != nil {
			return abortedOrErr(err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := waitJob(cfg, job.Job); err != nil {
		return err
	}

	switch job.Status() {
	case runner.StatusFinished:
		fmt.Printf("Transferred %d scans (%s) for project %d.\n",
			len(job.ScanIDs()), bytesize.Format(job.SizeInBytes()), projectID)
		return nil
	case runner.StatusKilled:
		fmt.Println("Transfer stopped before completion; files copied so far were kept.")
		return nil
	default:
		return fmt.Errorf("transfer failed: %w", job.Err())
	}
}

// waitJob runs a job through a worker pool sized from the configuration,
// rendering progress on stderr and mapping Ctrl+C to a clean kill at the
// next file boundary.
func waitJob(cfg *config.Config, j *runner.Job) error {
	if metrics.IsEnabled() {
		j.SetMetrics(metrics.NewJobMetrics())
		if srv := metrics.Serve(cfg.Metrics.ListenAddr); srv != nil {
			defer srv.Close()
		}
	}

	pool := runner.NewPool(runner.PoolConfig{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
	})
	pool.Start(context.Background())
	defer pool.Stop(cfg.Jobs.StopTimeout)

	total := j.MaxProgress() + 1
	j.Subscribe(runner.ObserverFuncs{
		OnProgress: func(int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d files", j.Progress()+1, total)
		},
		OnFinished: func() { fmt.Fprintln(os.Stderr) },
		OnKilled:   func() { fmt.Fprintln(os.Stderr) },
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := j.Start(pool); err != nil {
		return err
	}

	for {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupt received, stopping at the next file boundary...")
			_ = j.Kill()
		case <-j.Done():
			return nil
		}
	}
}

// abortedOrErr turns a Ctrl+C on a prompt into a quiet exit.
func abortedOrErr(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
