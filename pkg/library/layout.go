// Package library implements the on-disk layout of the two-tier scan
// library: a local working copy and a permanent archival copy. Both tiers
// share the same structure:
//
//	{library_root}/{project_id}/{scan_id}/tams_meta/user_form.toml
//	{library_root}/{project_id}/{scan_id}/tams_meta/README.txt
//	{library_root}/{project_id}/{scan_id}/raw/...
//
// plus a configurable archive subfolder under each scan directory.
package library

import (
	"path/filepath"
	"strconv"
)

// Well-known names inside a scan directory.
const (
	// MetaDirName is the metadata subfolder of a scan directory.
	MetaDirName = "tams_meta"

	// UserFormName is the metadata sidecar document.
	UserFormName = "user_form.toml"

	// ReadmeName is the placeholder README created per new scan directory.
	ReadmeName = "README.txt"

	// RawDirName is the raw-data area of a scan directory.
	RawDirName = "raw"

	// DefaultArchiveDirName is the default permanent-archive subfolder name.
	DefaultArchiveDirName = "permanent"
)

// Layout resolves paths in both library tiers. It is a pure value; no
// function in this package consults global state.
type Layout struct {
	// LocalRoot is the root of the local (working copy) tier.
	LocalRoot string

	// PermanentRoot is the root of the permanent (archival) tier.
	PermanentRoot string

	// ArchiveDirName is the permanent-archive subfolder name under each
	// scan directory. Defaults to DefaultArchiveDirName when empty.
	ArchiveDirName string
}

// archiveDir returns the configured archive subfolder name.
func (l Layout) archiveDir() string {
	if l.ArchiveDirName == "" {
		return DefaultArchiveDirName
	}
	return l.ArchiveDirName
}

// ProjectDir returns the directory of a project under a library root.
func ProjectDir(root string, projectID int64) string {
	return filepath.Join(root, strconv.FormatInt(projectID, 10))
}

// ScanDir returns the directory of a scan under a library root.
func ScanDir(root string, projectID, scanID int64) string {
	return filepath.Join(ProjectDir(root, projectID), strconv.FormatInt(scanID, 10))
}

// MetaDir returns the metadata subfolder of a scan directory.
func MetaDir(scanDir string) string {
	return filepath.Join(scanDir, MetaDirName)
}

// UserFormPath returns the sidecar document path within a scan directory.
func UserFormPath(scanDir string) string {
	return filepath.Join(scanDir, MetaDirName, UserFormName)
}

// ReadmePath returns the README placeholder path within a scan directory.
func ReadmePath(scanDir string) string {
	return filepath.Join(scanDir, MetaDirName, ReadmeName)
}

// RawDir returns the raw-data area of a scan directory.
func RawDir(scanDir string) string {
	return filepath.Join(scanDir, RawDirName)
}

// LocalProjectDir returns the project directory in the local tier.
func (l Layout) LocalProjectDir(projectID int64) string {
	return ProjectDir(l.LocalRoot, projectID)
}

// PermanentProjectDir returns the project directory in the permanent tier.
func (l Layout) PermanentProjectDir(projectID int64) string {
	return ProjectDir(l.PermanentRoot, projectID)
}

// LocalScanDir returns the scan directory in the local tier.
func (l Layout) LocalScanDir(projectID, scanID int64) string {
	return ScanDir(l.LocalRoot, projectID, scanID)
}

// PermanentScanDir returns the scan directory in the permanent tier.
func (l Layout) PermanentScanDir(projectID, scanID int64) string {
	return ScanDir(l.PermanentRoot, projectID, scanID)
}

// ArchiveDir returns the permanent-archive subfolder within a scan directory.
func (l Layout) ArchiveDir(scanDir string) string {
	return filepath.Join(scanDir, l.archiveDir())
}
