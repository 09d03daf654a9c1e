package main

import (
	"database/sql"
	"fmt"
)

// SourceDB abstracts catalog access so encscan can audit multiple
// engines (MySQL, PostgreSQL, SQLite). Implementations are read-only:
// they query catalog metadata and never touch row data.
type SourceDB interface {
	// Name returns a human-readable engine name ("MySQL", "PostgreSQL", "SQLite").
	Name() string

	// OpenDB opens a database connection with driver-specific options.
	OpenDB(dsn string) (*sql.DB, error)

	// ExtractDBName extracts a logical database name from the DSN
	// (used in reports and the default output filename).
	ExtractDBName(dsn string) (string, error)

	// ListTables returns the names of all base tables, in the engine's
	// enumeration order. This order is preserved in the scan summary.
	ListTables(db *sql.DB, dbName string) ([]string, error)

	// TableMeta returns the table-level catalog snapshot for one table.
	// Catalog fields the engine does not have (e.g. SQLite comments)
	// come back as empty strings.
	TableMeta(db *sql.DB, dbName, tableName string) (*TableMeta, error)

	// TableColumns returns the table's column descriptors in ordinal order.
	TableColumns(db *sql.DB, dbName, tableName string) ([]Column, error)

	// MaxWorkers returns the maximum number of parallel scan workers.
	// 0 means use the config value; >0 caps workers to this value.
	MaxWorkers() int
}

// newSourceDB returns a SourceDB implementation for the given source type.
func newSourceDB(sourceType string) (SourceDB, error) {
	switch sourceType {
	case "mysql":
		return &mysqlSourceDB{}, nil
	case "postgres":
		return &postgresSourceDB{}, nil
	case "sqlite":
		return &sqliteSourceDB{}, nil
	default:
		return nil, fmt.Errorf("unsupported source type %q (must be mysql, postgres, or sqlite)", sourceType)
	}
}

// sourceCatalog adapts a SourceDB plus an open connection to the
// aggregator's catalog interface.
type sourceCatalog struct {
	src    SourceDB
	db     *sql.DB
	dbName string
}

func (c *sourceCatalog) TableMeta(tableName string) (*TableMeta, error) {
	return c.src.TableMeta(c.db, c.dbName, tableName)
}

func (c *sourceCatalog) TableColumns(tableName string) ([]Column, error) {
	return c.src.TableColumns(c.db, c.dbName, tableName)
}
