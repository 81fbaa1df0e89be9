package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tams/internal/bytesize"
	"github.com/marmos91/tams/pkg/catalog"
	"github.com/marmos91/tams/pkg/library"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, catalog.DatabaseTypeSQLite, cfg.Database.Type)
	assert.Equal(t, library.DefaultArchiveDirName, cfg.Library.ArchiveDirName)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Equal(t, 16, cfg.Jobs.QueueSize)
	assert.Equal(t, 30*time.Second, cfg.Jobs.StopTimeout)
	assert.Equal(t, DefaultConfirmThreshold, cfg.Jobs.ConfirmThreshold)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
library:
  local_root: /data/local
  permanent_root: /data/permanent
  archive_dir_name: archive
jobs:
  workers: 4
  stop_timeout: 5s
  confirm_threshold: 1Gi
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/data/local", cfg.Library.LocalRoot)
	assert.Equal(t, "archive", cfg.Library.ArchiveDirName)
	assert.Equal(t, 4, cfg.Jobs.Workers)
	assert.Equal(t, 16, cfg.Jobs.QueueSize, "unset fields get defaults")
	assert.Equal(t, 5*time.Second, cfg.Jobs.StopTimeout)
	assert.Equal(t, bytesize.GiB, cfg.Jobs.ConfirmThreshold)
}

func TestLoadInvalidLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: noisy
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoadRejectsIdenticalRoots(t *testing.T) {
	path := writeConfig(t, `
library:
  local_root: /data/tams
  permanent_root: /data/tams
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoadPostgresDatabase(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
  postgres:
    host: db.example.org
    database: tams
    user: tams
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, catalog.DatabaseTypePostgres, cfg.Database.Type)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port, "port defaulted")
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
}

func TestLoadPostgresMissingHost(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
`)
	t.Setenv("TAMS_LOGGING_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestSaveAndReload(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Library.LocalRoot = "/data/local"
	cfg.Library.PermanentRoot = "/data/permanent"
	cfg.Jobs.Workers = 3

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Library, loaded.Library)
	assert.Equal(t, 3, loaded.Jobs.Workers)
}

func TestLibraryLayout(t *testing.T) {
	c := LibraryConfig{
		LocalRoot:      "/a",
		PermanentRoot:  "/b",
		ArchiveDirName: "archive",
	}
	l := c.Layout()
	assert.Equal(t, "/a", l.LocalRoot)
	assert.Equal(t, "/b", l.PermanentRoot)
	assert.Equal(t, "/a/7/1", l.LocalScanDir(7, 1))
}

func TestMustLoadMissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tams init")
}
