// Package catalog implements read access to the relational scan catalog:
// projects, scans, instruments and users. It supports SQLite (single
// workstation, default) and PostgreSQL (shared facility catalog) through the
// same GORM codebase.
package catalog

import "time"

// Project is a research project owning scans. Its id doubles as the
// project's directory name in both library tiers.
type Project struct {
	ProjectID     int64      `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	ProjectType   string     `gorm:"column:project_type;size:255" json:"project_type"`
	Summary       string     `json:"summary"`
	Keyword       string     `json:"keyword"`
	StartDate     *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate       *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	DirectoryPath string     `gorm:"column:directory_path" json:"directory_path"`
}

// TableName returns the table name for Project.
func (Project) TableName() string {
	return "project"
}

// Scan is a single acquisition. Its id doubles as the scan's directory name
// under its project's directory.
type Scan struct {
	ScanID       int64 `gorm:"column:scan_id;primaryKey;autoIncrement" json:"scan_id"`
	ProjectID    int64 `gorm:"column:project_id;not null;index" json:"project_id"`
	InstrumentID int64 `gorm:"column:instrument_id;not null" json:"instrument_id"`
}

// TableName returns the table name for Scan.
func (Scan) TableName() string {
	return "scan"
}

// Instrument is a reference entity describing an acquisition device.
type Instrument struct {
	InstrumentID int64  `gorm:"column:instrument_id;primaryKey;autoIncrement" json:"instrument_id"`
	Name         string `gorm:"size:255;not null" json:"name"`
}

// TableName returns the table name for Instrument.
func (Instrument) TableName() string {
	return "instrument"
}

// User is a reference entity with display metadata; read-only here.
type User struct {
	UserID       int64  `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	FirstName    string `gorm:"column:first_name;size:255" json:"first_name"`
	LastName     string `gorm:"column:last_name;size:255" json:"last_name"`
	EmailAddress string `gorm:"column:email_address;size:255" json:"email_address"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "user"
}

// AllModels returns all GORM models for auto-migration.
func AllModels() []any {
	return []any{
		&Project{},
		&Scan{},
		&Instrument{},
		&User{},
	}
}
