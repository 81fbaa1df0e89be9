package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tams/pkg/library"
)

// fakeMeta resolves sidecar fields from a fixed map.
type fakeMeta struct {
	byScan map[int64]library.Hardcoded
}

func (f fakeMeta) ScanHardcoded(_ context.Context, scanID int64) (library.Hardcoded, error) {
	h, ok := f.byScan[scanID]
	if !ok {
		return library.Hardcoded{}, fmt.Errorf("scan %d not found", scanID)
	}
	return h, nil
}

func testMeta() fakeMeta {
	return fakeMeta{byScan: map[int64]library.Hardcoded{
		1: {ScanID: 1, ProjectID: 7, InstrumentID: 3},
		2: {ScanID: 2, ProjectID: 7, InstrumentID: 3},
	}}
}

func writeFixtureFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", size)), 0644))
}

// setupTiers builds the canonical fixture: project 7 in the permanent tier
// with scan 1 holding three raw files of 10, 20 and 30 bytes (one nested in
// a subdirectory) and scan 2 holding no files at all.
func setupTiers(t *testing.T) library.Layout {
	t.Helper()

	l := library.Layout{
		LocalRoot:     t.TempDir(),
		PermanentRoot: t.TempDir(),
	}

	scan1Raw := library.RawDir(l.PermanentScanDir(7, 1))
	writeFixtureFile(t, filepath.Join(scan1Raw, "slice_000.tif"), 10)
	writeFixtureFile(t, filepath.Join(scan1Raw, "slice_001.tif"), 20)
	writeFixtureFile(t, filepath.Join(scan1Raw, "recon", "volume.vol"), 30)

	require.NoError(t, os.MkdirAll(l.PermanentScanDir(7, 2), 0755))

	return l
}

func runJob(t *testing.T, j *Job) {
	t.Helper()
	j.run(context.Background())
	waitDone(t, j)
}

func TestDownloadEndToEnd(t *testing.T) {
	l := setupTiers(t)

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		Direction: DirectionDownload,
	}, testMeta())
	require.NoError(t, err)

	// No explicit scan list selects every archived scan.
	assert.Equal(t, []int64{1, 2}, j.ScanIDs())
	assert.Equal(t, 2, j.MaxProgress())
	assert.Equal(t, int64(60), j.SizeInBytes())
	assert.Equal(t, "download", j.Type())

	rec := &recorder{}
	j.Subscribe(rec)
	runJob(t, j.Job)

	require.Equal(t, StatusFinished, j.Status())
	assert.Equal(t, j.MaxProgress(), j.Progress())

	increments, finished, killed := rec.counts()
	assert.Equal(t, 3, increments)
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, killed)

	// Scan 1 arrived in full, structure preserved.
	localRaw := library.RawDir(l.LocalScanDir(7, 1))
	for name, size := range map[string]int64{
		"slice_000.tif": 10,
		"slice_001.tif": 20,
		filepath.Join("recon", "volume.vol"): 30,
	} {
		info, err := os.Stat(filepath.Join(localRaw, name))
		require.NoError(t, err, name)
		assert.Equal(t, size, info.Size(), name)
	}

	// Source copies remain in place.
	files, size, err := library.Index(library.RawDir(l.PermanentScanDir(7, 1)))
	require.NoError(t, err)
	assert.Equal(t, 3, files)
	assert.Equal(t, int64(60), size)

	// Sidecar regenerated from the catalog.
	s, err := library.LoadSidecar(library.UserFormPath(l.LocalScanDir(7, 1)))
	require.NoError(t, err)
	assert.Equal(t, library.Hardcoded{ScanID: 1, ProjectID: 7, InstrumentID: 3}, s.Hardcoded)

	_, err = os.Stat(library.ReadmePath(l.LocalScanDir(7, 1)))
	assert.NoError(t, err)

	// Scan 2 exists locally but carries no data.
	files, _, err = library.Index(library.RawDir(l.LocalScanDir(7, 2)))
	require.NoError(t, err)
	assert.Zero(t, files)
}

func TestUploadDirection(t *testing.T) {
	l := library.Layout{
		LocalRoot:     t.TempDir(),
		PermanentRoot: t.TempDir(),
	}
	writeFixtureFile(t, filepath.Join(library.RawDir(l.LocalScanDir(7, 1)), "slice.tif"), 10)

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		Direction: DirectionUpload,
	}, testMeta())
	require.NoError(t, err)
	assert.Equal(t, "upload", j.Type())
	assert.Equal(t, 0, j.MaxProgress())

	runJob(t, j.Job)
	require.Equal(t, StatusFinished, j.Status())

	info, err := os.Stat(filepath.Join(library.RawDir(l.PermanentScanDir(7, 1)), "slice.tif"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())
}

func TestTransferExplicitScans(t *testing.T) {
	l := setupTiers(t)

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		ScanIDs:   []int64{1},
		Direction: DirectionDownload,
	}, testMeta())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, j.ScanIDs())

	runJob(t, j.Job)
	require.Equal(t, StatusFinished, j.Status())

	_, err = os.Stat(l.LocalScanDir(7, 2))
	assert.True(t, os.IsNotExist(err), "unselected scans are not materialized")
}

func TestTransferPreconditions(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(t *testing.T) TransferConfig
	}{
		{
			name: "missing local root",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				l.LocalRoot = filepath.Join(t.TempDir(), "gone")
				return TransferConfig{Layout: l, ProjectID: 7, Direction: DirectionDownload}
			},
		},
		{
			name: "missing permanent root",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				l.PermanentRoot = filepath.Join(t.TempDir(), "gone")
				return TransferConfig{Layout: l, ProjectID: 7, Direction: DirectionDownload}
			},
		},
		{
			name: "local root is a file",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				f := filepath.Join(t.TempDir(), "root")
				writeFixtureFile(t, f, 1)
				l.LocalRoot = f
				return TransferConfig{Layout: l, ProjectID: 7, Direction: DirectionDownload}
			},
		},
		{
			name: "project not archived",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				return TransferConfig{Layout: l, ProjectID: 99, Direction: DirectionDownload}
			},
		},
		{
			name: "explicit scan missing",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				return TransferConfig{Layout: l, ProjectID: 7, ScanIDs: []int64{1, 9}, Direction: DirectionDownload}
			},
		},
		{
			name: "nothing to transfer",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				return TransferConfig{Layout: l, ProjectID: 7, ScanIDs: []int64{2}, Direction: DirectionDownload}
			},
		},
		{
			name: "unknown direction",
			cfg: func(t *testing.T) TransferConfig {
				l := setupTiers(t)
				return TransferConfig{Layout: l, ProjectID: 7, Direction: Direction("sideways")}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransferJob(context.Background(), tt.cfg(t), testMeta())
			require.ErrorIs(t, err, ErrPrecondition)
		})
	}
}

func TestTransferSkipsExistingDestination(t *testing.T) {
	l := setupTiers(t)

	// A file already present at the destination must survive untouched.
	existing := filepath.Join(library.RawDir(l.LocalScanDir(7, 1)), "slice_000.tif")
	writeFixtureFile(t, existing, 4)

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		Direction: DirectionDownload,
	}, testMeta())
	require.NoError(t, err)

	rec := &recorder{}
	j.Subscribe(rec)
	runJob(t, j.Job)

	require.Equal(t, StatusFinished, j.Status())

	// The skipped file still counts as a unit of work.
	increments, _, _ := rec.counts()
	assert.Equal(t, 3, increments)
	assert.Equal(t, j.MaxProgress(), j.Progress())

	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, int64(4), info.Size())
}

func TestTransferPreservesMutableSidecar(t *testing.T) {
	l := setupTiers(t)

	// A sidecar from a previous download, with user edits and stale
	// hardcoded fields.
	scanDir := l.LocalScanDir(7, 1)
	require.NoError(t, os.MkdirAll(library.MetaDir(scanDir), 0755))
	require.NoError(t, library.WriteSidecar(library.UserFormPath(scanDir), &library.Sidecar{
		Hardcoded: library.Hardcoded{ScanID: 1, ProjectID: 7, InstrumentID: 99},
		Mutable:   map[string]any{"operator": "ada"},
	}))

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		ScanIDs:   []int64{1},
		Direction: DirectionDownload,
	}, testMeta())
	require.NoError(t, err)

	runJob(t, j.Job)
	require.Equal(t, StatusFinished, j.Status())

	s, err := library.LoadSidecar(library.UserFormPath(scanDir))
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.Hardcoded.InstrumentID, "hardcoded fields come from the catalog")
	assert.Equal(t, "ada", s.Mutable["operator"], "user edits survive a re-download")
}

func TestTransferCatalogFailureIsUnrecoverable(t *testing.T) {
	l := setupTiers(t)

	rec := &recorder{}
	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		Direction: DirectionDownload,
	}, fakeMeta{byScan: map[int64]library.Hardcoded{}})
	require.NoError(t, err)

	j.Subscribe(rec)
	runJob(t, j.Job)

	assert.Equal(t, StatusError, j.Status())
	require.Error(t, j.Err())

	_, finished, killed := rec.counts()
	assert.Equal(t, 0, finished)
	assert.Equal(t, 0, killed)
}

func TestTransferKilledBeforeStart(t *testing.T) {
	l := setupTiers(t)

	j, err := NewTransferJob(context.Background(), TransferConfig{
		Layout:    l,
		ProjectID: 7,
		Direction: DirectionDownload,
	}, testMeta())
	require.NoError(t, err)

	rec := &recorder{}
	j.Subscribe(rec)
	require.NoError(t, j.Kill())
	j.run(context.Background())

	assert.Equal(t, StatusKilled, j.Status())

	increments, finished, killed := rec.counts()
	assert.Equal(t, 0, increments)
	assert.Equal(t, 0, finished)
	assert.Equal(t, 1, killed)

	_, err = os.Stat(l.LocalScanDir(7, 1))
	assert.True(t, os.IsNotExist(err), "a killed pending job must not touch the library")
}
