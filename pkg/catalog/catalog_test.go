package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/tams/pkg/library"
)

// newTestCatalog creates an in-memory SQLite catalog with a migrated schema
// and a small fixture: project 7 with scans on instrument 3.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := Open(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	require.NoError(t, c.Migrate())
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.db.Create(&Project{
		ProjectID:   7,
		Title:       "Ammonite tomography",
		ProjectType: "X-ray CT",
		Summary:     "High-resolution fossil scans",
		Keyword:     "palaeontology",
	}).Error)
	require.NoError(t, c.db.Create(&Instrument{InstrumentID: 3, Name: "Nikon XT H 225"}).Error)
	require.NoError(t, c.db.Create(&User{
		UserID: 1, FirstName: "Ada", LastName: "Lovelace", EmailAddress: "ada@example.org",
	}).Error)
	require.NoError(t, c.db.Create(&Scan{ScanID: 1, ProjectID: 7, InstrumentID: 3}).Error)
	require.NoError(t, c.db.Create(&Scan{ScanID: 2, ProjectID: 7, InstrumentID: 3}).Error)

	return c
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
	assert.NotEmpty(t, cfg.SQLite.Path)

	pg := &Config{Type: DatabaseTypePostgres}
	pg.ApplyDefaults()
	assert.Equal(t, 5432, pg.Postgres.Port)
	assert.Equal(t, "disable", pg.Postgres.SSLMode)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, (&Config{Type: "oracle"}).Validate())
	assert.Error(t, (&Config{Type: DatabaseTypePostgres}).Validate())
	assert.NoError(t, (&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	}).Validate())
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()

	cfg := PostgresConfig{
		Host: "db.example.org", Port: 5432, User: "tams",
		Password: "secret", Database: "catalog", SSLMode: "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.example.org")
	assert.Contains(t, dsn, "dbname=catalog")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestValidateTables(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.ValidateTables(ctx))

	require.NoError(t, c.db.Migrator().DropTable(&Scan{}))
	err := c.ValidateTables(ctx)
	require.Error(t, err)
	assert.True(t, IsMissingTables(err))
	assert.Contains(t, err.Error(), "scan")
}

func TestTables(t *testing.T) {
	c := newTestCatalog(t)

	tables, err := c.Tables(context.Background())
	require.NoError(t, err)
	for _, name := range []string{"project", "scan", "instrument", "user"} {
		assert.True(t, tables[name], "expected table %q", name)
	}
}

func TestSelect(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	rows, labels, err := c.Select(ctx, []string{"scan_id", "project_id"}, "scan", "project_id=7")
	require.NoError(t, err)
	assert.Equal(t, []string{"scan_id", "project_id"}, labels)
	assert.Len(t, rows, 2)

	_, _, err = c.Select(ctx, []string{"*"}, "scan")
	assert.Error(t, err, "wildcard selects are unsupported")

	_, _, err = c.Select(ctx, nil, "scan")
	assert.Error(t, err)
}

func TestGetProjectMetadata(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	row, err := c.GetProjectMetadata(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "project_id", row.Labels[0])
	assert.EqualValues(t, 7, row.Values[0])
	assert.Equal(t, "Ammonite tomography", row.Values[1])

	_, err = c.GetProjectMetadata(ctx, 404)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestGetScanMetadataResolvesForeignKeys(t *testing.T) {
	c := newTestCatalog(t)

	row, err := c.GetScanMetadata(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"scan_id", "project_id", "instrument_id"}, row.Labels)
	assert.EqualValues(t, 1, row.Values[0])
	assert.Equal(t, "7 (Ammonite tomography)", row.Values[1])
	assert.Equal(t, "3 (Nikon XT H 225)", row.Values[2])
}

func TestGetUserMetadata(t *testing.T) {
	c := newTestCatalog(t)

	row, err := c.GetUserMetadata(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", row.Values[1])

	_, err = c.GetUserMetadata(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestScanHardcoded(t *testing.T) {
	c := newTestCatalog(t)

	h, err := c.ScanHardcoded(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, library.Hardcoded{ScanID: 1, ProjectID: 7, InstrumentID: 3}, h)

	_, err = c.ScanHardcoded(context.Background(), 404)
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestCreateScan(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	id, err := c.CreateScan(ctx, 7, 3)
	require.NoError(t, err)
	assert.Greater(t, id, int64(2))

	scan, err := c.GetScan(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 7, scan.ProjectID)

	_, err = c.CreateScan(ctx, 404, 3)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = c.CreateScan(ctx, 7, 404)
	assert.ErrorIs(t, err, ErrInstrumentNotFound)
}

func TestListScans(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	scans, err := c.ListScans(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, scans, 2)

	all, err := c.ListScans(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := c.ListScans(ctx, 404)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVersion(t *testing.T) {
	c := newTestCatalog(t)

	version, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
