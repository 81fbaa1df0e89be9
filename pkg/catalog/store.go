package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseType defines the supported catalog backends.
type DatabaseType string

const (
	// DatabaseTypeSQLite uses SQLite (single workstation, default).
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres uses PostgreSQL (shared facility catalog).
	DatabaseTypePostgres DatabaseType = "postgres"
)

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	// Default: $XDG_CONFIG_HOME/tams/catalog.db
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password"`
	SSLMode      string `mapstructure:"ssl_mode" yaml:"ssl_mode"` // disable, require, verify-ca, verify-full
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)
	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	return dsn
}

// Config contains catalog database configuration.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	if c.Type == DatabaseTypeSQLite && c.SQLite.Path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
		c.SQLite.Path = filepath.Join(configDir, "tams", "catalog.db")
	}

	if c.Type == DatabaseTypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
		if c.Postgres.MaxOpenConns == 0 {
			c.Postgres.MaxOpenConns = 10
		}
		if c.Postgres.MaxIdleConns == 0 {
			c.Postgres.MaxIdleConns = 2
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case DatabaseTypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("postgres database is required")
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("postgres user is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// Catalog provides read access to the scan catalog plus the few writes the
// client needs (scan creation). Queries go through GORM's connection pool;
// no transaction is held across calls, so a long-running job never pins a
// catalog connection.
type Catalog struct {
	db     *gorm.DB
	config *Config
}

// Open connects to the catalog described by the configuration. It does not
// create or alter the schema; call Migrate for that (used by `tams init`
// and tests). Schema presence is checked by ValidateTables.
func Open(config *Config) (*Catalog, error) {
	if config == nil {
		config = &Config{}
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch config.Type {
	case DatabaseTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(config.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
		// WAL + busy_timeout so catalog reads stay usable while a job holds
		// the write lock briefly during scan creation.
		dsn := config.SQLite.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		dialector = sqlite.Open(dsn)

	case DatabaseTypePostgres:
		dialector = postgres.Open(config.Postgres.DSN())

	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}

	if config.Type == DatabaseTypePostgres {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying database: %w", err)
		}
		sqlDB.SetMaxOpenConns(config.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.Postgres.MaxIdleConns)
	}

	return &Catalog{db: db, config: config}, nil
}

// Migrate creates or updates the catalog schema via GORM auto-migration.
func (c *Catalog) Migrate() error {
	if err := c.db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}
	return nil
}

// Close releases the underlying database connection pool.
func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying GORM handle, useful for tests.
func (c *Catalog) DB() *gorm.DB {
	return c.db
}

// convertNotFoundError converts gorm.ErrRecordNotFound to the appropriate
// domain error.
func convertNotFoundError(err error, notFoundErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundErr
	}
	return err
}
