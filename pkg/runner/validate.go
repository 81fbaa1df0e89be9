package runner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/marmos91/tams/internal/logger"
	"github.com/marmos91/tams/pkg/library"
)

// ValidateConfig describes a validation of local scans against the
// permanent tier.
type ValidateConfig struct {
	// Layout resolves paths in both tiers.
	Layout library.Layout

	// ProjectID selects the project to validate.
	ProjectID int64

	// ScanIDs selects the scans to validate. Empty means every scan present
	// under the project's permanent-tier directory.
	ScanIDs []int64
}

// ValidateJob compares the local copy of one or more scans against the
// permanent tier, file by file, on size and SHA-256 checksum. One unit of
// work is one file compared.
//
// The outcome is tri-state: valid (every expected file matches), invalid
// (a file is missing or mismatched — a data problem), or an error terminal
// state when the comparison itself could not be completed (an
// infrastructure problem).
type ValidateJob struct {
	*Job

	cfg     ValidateConfig
	scanIDs []int64

	valid      bool
	mismatches []string
}

// NewValidateJob validates preconditions, indexes the comparison set over
// the permanent tier and returns a ready-to-start job. Precondition failures
// mirror NewTransferJob and wrap ErrPrecondition.
func NewValidateJob(cfg ValidateConfig) (*ValidateJob, error) {
	if err := checkLibraryRoot("local", cfg.Layout.LocalRoot); err != nil {
		return nil, err
	}
	if err := checkLibraryRoot("permanent", cfg.Layout.PermanentRoot); err != nil {
		return nil, err
	}

	projectDir := cfg.Layout.PermanentProjectDir(cfg.ProjectID)
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: project %d has no directory in the permanent library",
			ErrPrecondition, cfg.ProjectID)
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
		return nil, fmt.Errorf("%w: nothing to validate for project %d", ErrPrecondition, cfg.ProjectID)
	}

	j := &ValidateJob{
		Job:     newJob("validate", totalFiles-1, totalBytes),
		cfg:     cfg,
		scanIDs: scanIDs,
		valid:   true,
	}
	j.Job.body = j.execute
	return j, nil
}

// ScanIDs returns the scans selected for validation, in ascending order.
func (v *ValidateJob) ScanIDs() []int64 {
	return slices.Clone(v.scanIDs)
}

// Result returns the validation outcome once the job is terminal. The error
// is non-nil when the comparison could not be completed (job errored or was
// killed), in which case the boolean carries no meaning.
func (v *ValidateJob) Result() (bool, error) {
	switch v.Status() {
	case StatusFinished:
		return v.valid, nil
	case StatusError:
		return false, v.Err()
	case StatusKilled:
		return false, ErrKilled
	default:
		return false, fmt.Errorf("validation job %s has not completed", v.ID())
	}
}

// Mismatches returns the permanent-tier paths that failed comparison, for
// diagnostic display. Meaningful once the job has finished.
func (v *ValidateJob) Mismatches() []string {
	return slices.Clone(v.mismatches)
}

// execute is the job body: per scan in ascending id order, compare every
// raw-data file of the permanent tier against its local counterpart, with a
// checkpoint after each file. A missing or differing local file marks the
// result invalid; a read failure on either side aborts the job.
func (v *ValidateJob) execute(_ context.Context) error {
	for _, scanID := range v.scanIDs {
		permScan := v.cfg.Layout.PermanentScanDir(v.cfg.ProjectID, scanID)
		permRaw := library.RawDir(permScan)
		localRaw := library.RawDir(v.cfg.Layout.LocalScanDir(v.cfg.ProjectID, scanID))

		// The scan directory was present at indexing time; losing it now
		// means the tier itself became unreachable, not that data differs.
		if _, err := os.Stat(permScan); err != nil {
			return fmt.Errorf("permanent library unreachable: %w", err)
		}

		files, err := library.ListFiles(permRaw)
		if err != nil {
			return err
		}

		// Local files with no permanent counterpart also invalidate the set.
		localFiles, err := library.ListFiles(localRaw)
		if err != nil {
			return err
		}
		for _, rel := range localFiles {
			if !slices.Contains(files, rel) {
				v.recordMismatch(scanID, filepath.Join(localRaw, rel), "not in permanent tier")
			}
		}

		for _, rel := range files {
			match, err := compareFiles(filepath.Join(permRaw, rel), filepath.Join(localRaw, rel))
			if err != nil {
				return err
			}
			if !match {
				v.recordMismatch(scanID, filepath.Join(permRaw, rel), "missing or differs locally")
			}

			v.advance()
			switch v.checkpoint() {
			case sigKilled:
				return ErrKilled
			case sigFinished:
				return nil
			}
		}
	}
	return nil
}

// recordMismatch marks the result invalid and logs the offending file.
func (v *ValidateJob) recordMismatch(scanID int64, path, reason string) {
	v.valid = false
	v.mismatches = append(v.mismatches, path)
	logger.Warn("Validation mismatch",
		logger.KeyJobID, v.ID(),
		logger.KeyScanID, scanID,
		logger.KeyPath, path,
		"reason", reason)
}

// compareFiles reports whether the local counterpart of a permanent file
// exists with identical size and SHA-256 checksum. A missing local file is a
// mismatch, not an error; any read failure is an error.
func compareFiles(permanent, local string) (bool, error) {
	permInfo, err := os.Stat(permanent)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", permanent, err)
	}

	localInfo, err := os.Stat(local)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", local, err)
	}

	if permInfo.Size() != localInfo.Size() {
		return false, nil
	}

	permSum, err := checksumFile(permanent)
	if err != nil {
		return false, err
	}
	localSum, err := checksumFile(local)
	if err != nil {
		return false, err
	}
	return bytes.Equal(permSum, localSum), nil
}

// checksumFile computes the SHA-256 digest of a file.
func checksumFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to checksum %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
