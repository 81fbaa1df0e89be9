package library

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/marmos91/tams/internal/logger"
)

// ErrSameFile is returned when a copy source and destination resolve to the
// same path.
var ErrSameFile = errors.New("source and destination are the same file")

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	logger.Debug("Created directory", logger.KeyPath, path)
	return nil
}

// CopyFile copies a single regular file from src to dst, creating parent
// directories as needed. The source is left in place. If dst already exists
// it is not overwritten; os.ErrExist is returned instead.
func CopyFile(src, dst string) error {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	if absSrc == absDst {
		return fmt.Errorf("%w: %s", ErrSameFile, src)
	}

	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// O_EXCL so a pre-existing destination surfaces as os.ErrExist.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// IsRecoverable reports whether a per-file transfer error should be logged
// and skipped rather than failing the whole job: same-file collisions,
// already-existing destinations and permission errors.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSameFile) ||
		errors.Is(err, os.ErrExist) ||
		errors.Is(err, os.ErrPermission)
}

// Index walks dir recursively, counting regular files and summing their
// sizes. A missing directory indexes as empty; directories themselves are
// never counted.
func Index(dir string) (files int, size int64, err error) {
	if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
		return 0, 0, nil
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		files++
		size += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to index %s: %w", dir, err)
	}
	return files, size, nil
}

// ListFiles returns the relative paths of all regular files under dir in
// lexical walk order. A missing directory lists as empty.
func ListFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	return files, nil
}

// ScanIDs returns the ids of all scan directories under a project directory,
// in ascending order. Non-numeric entries are skipped with a warning since a
// scan's on-disk representation is a directory named by its id.
func ScanIDs(projectDir string) ([]int64, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory %s: %w", projectDir, err)
	}

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseInt(entry.Name(), 10, 64)
		if err != nil {
			logger.Warn("Skipping non-scan directory in project",
				logger.KeyPath, filepath.Join(projectDir, entry.Name()))
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
