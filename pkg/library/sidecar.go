package library

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// readmePlaceholder is the content written to a new scan's README.txt.
const readmePlaceholder = "Placeholder file for README.txt"

// Hardcoded is the catalog-derived section of the sidecar document. It is
// fully regenerated from the catalog on every write and must never be edited
// by hand.
type Hardcoded struct {
	ScanID       int64 `toml:"scan_id" json:"scan_id"`
	ProjectID    int64 `toml:"project_id" json:"project_id"`
	InstrumentID int64 `toml:"instrument_id" json:"instrument_id"`
}

// Sidecar is the per-scan metadata document (user_form.toml). The hardcoded
// group mirrors the catalog; the mutable group holds free-form user-editable
// fields and survives regeneration.
type Sidecar struct {
	Hardcoded Hardcoded      `toml:"hardcoded" json:"hardcoded"`
	Mutable   map[string]any `toml:"mutable" json:"mutable"`
}

// NewSidecar returns a sidecar for a scan that has never had one: the
// mutable group starts from the template the original form used.
func NewSidecar(h Hardcoded) *Sidecar {
	return &Sidecar{
		Hardcoded: h,
		Mutable:   map[string]any{"example": ""},
	}
}

// LoadSidecar reads and decodes a sidecar document.
func LoadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Sidecar
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar %s: %w", path, err)
	}
	return &s, nil
}

// WriteSidecar encodes and writes a sidecar document. Encoding is
// deterministic, so writing the same state twice produces identical bytes.
func WriteSidecar(path string, s *Sidecar) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", path, err)
	}
	return nil
}

// SyncSidecar regenerates the hardcoded group of the sidecar at path from
// the given catalog state. If a sidecar already exists there, its mutable
// group is preserved; otherwise a fresh document with the mutable template
// is created. Returns the written sidecar.
func SyncSidecar(path string, h Hardcoded) (*Sidecar, error) {
	s := NewSidecar(h)

	existing, err := LoadSidecar(path)
	switch {
	case err == nil:
		if existing.Mutable != nil {
			s.Mutable = existing.Mutable
		}
	case os.IsNotExist(err):
		// First write at this destination; keep the template.
	default:
		return nil, err
	}

	if err := WriteSidecar(path, s); err != nil {
		return nil, err
	}
	return s, nil
}

// InitScanDir materializes a brand-new scan directory: metadata subfolder
// with sidecar and README placeholder, raw-data area, and the archive
// subfolder.
func (l Layout) InitScanDir(scanDir string, h Hardcoded) error {
	if err := EnsureDir(MetaDir(scanDir)); err != nil {
		return err
	}
	if _, err := SyncSidecar(UserFormPath(scanDir), h); err != nil {
		return err
	}
	if err := writeReadmeIfMissing(ReadmePath(scanDir)); err != nil {
		return err
	}
	if err := EnsureDir(RawDir(scanDir)); err != nil {
		return err
	}
	return EnsureDir(l.ArchiveDir(scanDir))
}

// writeReadmeIfMissing creates the README placeholder unless one exists.
func writeReadmeIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(readmePlaceholder), 0644)
}
