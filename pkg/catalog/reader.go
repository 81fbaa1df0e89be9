package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/marmos91/tams/pkg/library"
)

// requiredTables are the relations the client cannot function without.
// Checked once per session by ValidateTables, not per query.
var requiredTables = []string{"project", "scan", "instrument", "user"}

// Row is a single catalog row paired with its column labels, the shape the
// metadata display and sidecar derivation consume.
type Row struct {
	Labels []string `json:"labels"`
	Values []any    `json:"values"`
}

// Tables returns the set of table names present in the catalog.
func (c *Catalog) Tables(ctx context.Context) (map[string]bool, error) {
	names, err := c.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog tables: %w", err)
	}
	tables := make(map[string]bool, len(names))
	for _, name := range names {
		tables[name] = true
	}
	return tables, nil
}

// ValidateTables verifies the required relations exist, returning a
// MissingTablesError naming every absent one. Call this once after Open,
// before constructing jobs.
func (c *Catalog) ValidateTables(ctx context.Context) error {
	present, err := c.Tables(ctx)
	if err != nil {
		return err
	}

	var missing []string
	for _, table := range requiredTables {
		if !present[table] {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return &MissingTablesError{Missing: missing}
	}
	return nil
}

// Select runs a plain projection query and returns the rows together with
// the column labels. Wildcard selects are rejected since the labels would
// not be predictable.
func (c *Catalog) Select(ctx context.Context, columns []string, table string, conds ...string) ([][]any, []string, error) {
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("no columns selected")
	}
	for _, col := range columns {
		if strings.Contains(col, "*") {
			return nil, nil, fmt.Errorf("wildcard selects are not supported")
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %q", strings.Join(columns, ", "), table)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := c.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("select from %s failed: %w", table, err)
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("select from %s failed: %w", table, err)
	}

	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = strings.TrimSpace(col)
	}
	return result, labels, nil
}

// Version returns the database server version string.
func (c *Catalog) Version(ctx context.Context) (string, error) {
	query := "SELECT version()"
	if c.config.Type == DatabaseTypeSQLite {
		query = "SELECT sqlite_version()"
	}

	var version string
	if err := c.db.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", fmt.Errorf("failed to read catalog version: %w", err)
	}
	return version, nil
}

// GetProject returns a project by id.
func (c *Catalog) GetProject(ctx context.Context, projectID int64) (*Project, error) {
	var project Project
	err := c.db.WithContext(ctx).First(&project, "project_id = ?", projectID).Error
	if err != nil {
		return nil, convertNotFoundError(err, ErrProjectNotFound)
	}
	return &project, nil
}

// GetScan returns a scan by id.
func (c *Catalog) GetScan(ctx context.Context, scanID int64) (*Scan, error) {
	var scan Scan
	err := c.db.WithContext(ctx).First(&scan, "scan_id = ?", scanID).Error
	if err != nil {
		return nil, convertNotFoundError(err, ErrScanNotFound)
	}
	return &scan, nil
}

// GetInstrument returns an instrument by id.
func (c *Catalog) GetInstrument(ctx context.Context, instrumentID int64) (*Instrument, error) {
	var instrument Instrument
	err := c.db.WithContext(ctx).First(&instrument, "instrument_id = ?", instrumentID).Error
	if err != nil {
		return nil, convertNotFoundError(err, ErrInstrumentNotFound)
	}
	return &instrument, nil
}

// GetProjectMetadata returns the full project row with column labels.
func (c *Catalog) GetProjectMetadata(ctx context.Context, projectID int64) (Row, error) {
	project, err := c.GetProject(ctx, projectID)
	if err != nil {
		return Row{}, err
	}
	return Row{
		Labels: []string{"project_id", "title", "project_type", "summary", "keyword", "start_date", "end_date", "directory_path"},
		Values: []any{
			project.ProjectID, project.Title, project.ProjectType, project.Summary,
			project.Keyword, project.StartDate, project.EndDate, project.DirectoryPath,
		},
	}, nil
}

// GetUserMetadata returns the full user row with column labels.
func (c *Catalog) GetUserMetadata(ctx context.Context, userID int64) (Row, error) {
	var user User
	err := c.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		return Row{}, convertNotFoundError(err, ErrUserNotFound)
	}
	return Row{
		Labels: []string{"user_id", "first_name", "last_name", "email_address"},
		Values: []any{user.UserID, user.FirstName, user.LastName, user.EmailAddress},
	}, nil
}

// GetScanMetadata returns the scan row with foreign keys resolved to
// "id (display name)" strings, the form the metadata display expects.
func (c *Catalog) GetScanMetadata(ctx context.Context, scanID int64) (Row, error) {
	scan, err := c.GetScan(ctx, scanID)
	if err != nil {
		return Row{}, err
	}

	project, err := c.GetProject(ctx, scan.ProjectID)
	if err != nil {
		return Row{}, err
	}
	instrument, err := c.GetInstrument(ctx, scan.InstrumentID)
	if err != nil {
		return Row{}, err
	}

	return Row{
		Labels: []string{"scan_id", "project_id", "instrument_id"},
		Values: []any{
			scan.ScanID,
			fmt.Sprintf("%d (%s)", project.ProjectID, project.Title),
			fmt.Sprintf("%d (%s)", instrument.InstrumentID, instrument.Name),
		},
	}, nil
}

// ScanHardcoded derives the sidecar's hardcoded block for a scan: the raw
// catalog ids, unresolved.
func (c *Catalog) ScanHardcoded(ctx context.Context, scanID int64) (library.Hardcoded, error) {
	scan, err := c.GetScan(ctx, scanID)
	if err != nil {
		return library.Hardcoded{}, err
	}
	return library.Hardcoded{
		ScanID:       scan.ScanID,
		ProjectID:    scan.ProjectID,
		InstrumentID: scan.InstrumentID,
	}, nil
}

// CreateScan inserts a new scan after verifying both foreign keys exist,
// and returns the generated scan id.
func (c *Catalog) CreateScan(ctx context.Context, projectID, instrumentID int64) (int64, error) {
	if _, err := c.GetProject(ctx, projectID); err != nil {
		return 0, err
	}
	if _, err := c.GetInstrument(ctx, instrumentID); err != nil {
		return 0, err
	}

	scan := Scan{ProjectID: projectID, InstrumentID: instrumentID}
	if err := c.db.WithContext(ctx).Create(&scan).Error; err != nil {
		return 0, fmt.Errorf("failed to create scan: %w", err)
	}
	return scan.ScanID, nil
}

// ListProjects returns all projects ordered by id.
func (c *Catalog) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.db.WithContext(ctx).Order("project_id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListScans returns all scans of a project ordered by id. A zero projectID
// lists every scan in the catalog.
func (c *Catalog) ListScans(ctx context.Context, projectID int64) ([]Scan, error) {
	q := c.db.WithContext(ctx).Order("scan_id")
	if projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	var scans []Scan
	if err := q.Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return scans, nil
}

// ListInstruments returns all instruments ordered by id.
func (c *Catalog) ListInstruments(ctx context.Context) ([]Instrument, error) {
	var instruments []Instrument
	if err := c.db.WithContext(ctx).Order("instrument_id").Find(&instruments).Error; err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	return instruments, nil
}
