package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/marmos91/tams/internal/logger"
	"github.com/marmos91/tams/pkg/library"
)

// ErrPrecondition marks a constructor-time validation failure: the caller
// must not start the job.
var ErrPrecondition = errors.New("precondition failed")

// Direction selects which library tier a transfer reads from.
type Direction string

const (
	// DirectionDownload copies scans from the permanent tier to the local tier.
	DirectionDownload Direction = "download"

	// DirectionUpload copies scans from the local tier to the permanent tier.
	DirectionUpload Direction = "upload"
)

// MetadataSource resolves the catalog-derived sidecar fields for a scan.
// Satisfied by *catalog.Catalog.
type MetadataSource interface {
	ScanHardcoded(ctx context.Context, scanID int64) (library.Hardcoded, error)
}

// TransferConfig describes a transfer between library tiers.
type TransferConfig struct {
	// Layout resolves paths in both tiers.
	Layout library.Layout

	// ProjectID selects the project to transfer.
	ProjectID int64

	// ScanIDs selects the scans to transfer. Empty means every scan present
	// under the project's source-tier directory.
	ScanIDs []int64

	// Direction selects download or upload.
	Direction Direction
}

// TransferJob copies the raw-data files of one or more scans between the
// library tiers, keeping the destination sidecar in sync with the catalog.
// One unit of work is one file copied (or skipped on a recoverable error);
// the source copy is always left in place.
type TransferJob struct {
	*Job

	cfg     TransferConfig
	meta    MetadataSource
	scanIDs []int64
}

// NewTransferJob validates preconditions, indexes the transfer set and
// returns a ready-to-start job. Indexing walks every target scan directory
// synchronously and can be slow for large trees; callers should warn the
// user before constructing the job.
//
// Fails with an ErrPrecondition-wrapped error when a library root is missing
// or not a directory, the project has no source-tier directory, an explicit
// scan id is absent from the source tier, or indexing finds zero files.
func NewTransferJob(ctx context.Context, cfg TransferConfig, meta MetadataSource) (*TransferJob, error) {
	if cfg.Direction != DirectionDownload && cfg.Direction != DirectionUpload {
		return nil, fmt.Errorf("%w: unknown transfer direction %q", ErrPrecondition, cfg.Direction)
	}

	if err := checkLibraryRoot("local", cfg.Layout.LocalRoot); err != nil {
		return nil, err
	}
	if err := checkLibraryRoot("permanent", cfg.Layout.PermanentRoot); err != nil {
		return nil, err
	}

	sourceRoot := cfg.Layout.PermanentRoot
	if cfg.Direction == DirectionUpload {
		sourceRoot = cfg.Layout.LocalRoot
	}

	projectDir := library.ProjectDir(sourceRoot, cfg.ProjectID)
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: project %d has no directory in the %s library",
			ErrPrecondition, cfg.ProjectID, cfg.Direction.sourceTier())
	}

	scanIDs, err := resolveScanIDs(projectDir, cfg.ScanIDs)
	if err != nil {
		return nil, err
	}

	totalFiles := 0
	var totalBytes int64
	for _, scanID := range scanIDs {
		files, size, err := library.Index(library.RawDir(filepath.Join(projectDir, fmt.Sprint(scanID))))
		if err != nil {
			return nil, err
		}
		totalFiles += files
		totalBytes += size
	}
	if totalFiles == 0 {
		return nil, fmt.Errorf("%w: nothing to transfer for project %d", ErrPrecondition, cfg.ProjectID)
	}

	logger.Info("Indexed transfer",
		logger.KeyJobType, string(cfg.Direction),
		logger.KeyProjectID, cfg.ProjectID,
		"scans", len(scanIDs),
		logger.KeyFiles, totalFiles,
		logger.KeySize, totalBytes)

	j := &TransferJob{
		Job:     newJob(string(cfg.Direction), totalFiles-1, totalBytes),
		cfg:     cfg,
		meta:    meta,
		scanIDs: scanIDs,
	}
	j.Job.body = j.execute
	return j, nil
}

// ScanIDs returns the scans selected for transfer, in ascending order.
func (t *TransferJob) ScanIDs() []int64 {
	return slices.Clone(t.scanIDs)
}

// execute is the job body: per scan in ascending id order, materialize the
// destination directory, sync the sidecar from the catalog, then copy every
// raw-data file with a checkpoint after each one.
func (t *TransferJob) execute(ctx context.Context) error {
	for _, scanID := range t.scanIDs {
		srcScan, dstScan := t.scanDirs(scanID)

		// The scan directory was present at indexing time.
		if _, err := os.Stat(srcScan); err != nil {
			return fmt.Errorf("%s library unreachable: %w", t.cfg.Direction.sourceTier(), err)
		}

		h, err := t.meta.ScanHardcoded(ctx, scanID)
		if err != nil {
			return err
		}
		if err := t.cfg.Layout.InitScanDir(dstScan, h); err != nil {
			return err
		}

		sig, err := t.copyScanFiles(scanID, srcScan, dstScan)
		if err != nil {
			return err
		}
		switch sig {
		case sigKilled:
			return ErrKilled
		case sigFinished:
			return nil
		}
	}
	return nil
}

// copyScanFiles copies a scan's raw-data area file by file. Recoverable
// per-file errors (same file, already exists, permission denied) are logged
// and skipped; the unit of work still counts so progress reaches the indexed
// total. Any other error aborts the job.
func (t *TransferJob) copyScanFiles(scanID int64, srcScan, dstScan string) (signal, error) {
	srcRaw := library.RawDir(srcScan)
	dstRaw := library.RawDir(dstScan)

	files, err := library.ListFiles(srcRaw)
	if err != nil {
		return sigContinue, err
	}

	for _, rel := range files {
		src := filepath.Join(srcRaw, rel)
		dst := filepath.Join(dstRaw, rel)

		if err := library.CopyFile(src, dst); err != nil {
			if !library.IsRecoverable(err) {
				return sigContinue, err
			}
			logger.Warn("Skipping file",
				logger.KeyJobID, t.ID(),
				logger.KeyScanID, scanID,
				logger.KeySource, src,
				"error", err)
			t.jm.FileSkipped()
		} else {
			t.jm.FileTransferred(fileSize(src))
		}

		t.advance()
		if sig := t.checkpoint(); sig != sigContinue {
			return sig, nil
		}
	}
	return sigContinue, nil
}

// scanDirs returns the (source, destination) scan directories for the
// configured direction.
func (t *TransferJob) scanDirs(scanID int64) (src, dst string) {
	local := t.cfg.Layout.LocalScanDir(t.cfg.ProjectID, scanID)
	permanent := t.cfg.Layout.PermanentScanDir(t.cfg.ProjectID, scanID)
	if t.cfg.Direction == DirectionUpload {
		return local, permanent
	}
	return permanent, local
}

// sourceTier names the tier a direction reads from, for error messages.
func (d Direction) sourceTier() string {
	if d == DirectionUpload {
		return "local"
	}
	return "permanent"
}

// checkLibraryRoot verifies a library root exists and is a directory.
func checkLibraryRoot(tier, root string) error {
	if root == "" {
		return fmt.Errorf("%w: %s library root is not configured", ErrPrecondition, tier)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s library root %s is missing", ErrPrecondition, tier, root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s library root %s is not a directory", ErrPrecondition, tier, root)
	}
	return nil
}

// resolveScanIDs returns the target scan ids in ascending order: every scan
// directory under projectDir when explicit is empty, otherwise the explicit
// list, each of which must exist.
func resolveScanIDs(projectDir string, explicit []int64) ([]int64, error) {
	if len(explicit) == 0 {
		ids, err := library.ScanIDs(projectDir)
		if err != nil {
			return nil, err
		}
		return ids, nil
	}

	ids := slices.Clone(explicit)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	for _, id := range ids {
		dir := filepath.Join(projectDir, fmt.Sprint(id))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: scan %d not found under %s", ErrPrecondition, id, projectDir)
		}
	}
	return ids, nil
}

// fileSize returns a file's size for metrics, or 0 if it cannot be read.
func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
