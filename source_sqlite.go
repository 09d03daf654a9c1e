package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

type sqliteSourceDB struct{}

func (s *sqliteSourceDB) Name() string { return "SQLite" }

func (s *sqliteSourceDB) OpenDB(dsn string) (*sql.DB, error) {
	uri, err := sqliteReadOnlyURI(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (s *sqliteSourceDB) ExtractDBName(dsn string) (string, error) {
	path := dsn
	// Strip file: URI prefix
	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err == nil {
			path = u.Path
			if path == "" {
				path = u.Opaque
			}
		} else {
			path = strings.TrimPrefix(dsn, "file:")
			if idx := strings.IndexByte(path, '?'); idx >= 0 {
				path = path[:idx]
			}
		}
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		return "sqlite", nil
	}
	return base, nil
}

// MaxWorkers caps the scan at one worker: the connection pool is pinned
// to a single connection.
func (s *sqliteSourceDB) MaxWorkers() int { return 1 }

func (s *sqliteSourceDB) ListTables(db *sql.DB, _ string) ([]string, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *sqliteSourceDB) TableMeta(db *sql.DB, _, tableName string) (*TableMeta, error) {
	// SQLite has no table options or comments in its catalog; the stored
	// CREATE TABLE text is the only table-level evidence source.
	var createStmt sql.NullString
	err := db.QueryRow(
		"SELECT sql FROM sqlite_master WHERE type='table' AND name = ?",
		tableName,
	).Scan(&createStmt)
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", tableName, err)
	}
	return &TableMeta{
		Name:            tableName,
		CreateStatement: createStmt.String,
	}, nil
}

func (s *sqliteSourceDB) TableColumns(db *sql.DB, _, tableName string) ([]Column, error) {
	quotedTable := strings.ReplaceAll(tableName, "\"", "\"\"")
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_xinfo(\"%s\")", quotedTable))
	if err != nil {
		return nil, fmt.Errorf("columns for %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid, notnull, pk, hidden int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk, &hidden); err != nil {
			return nil, err
		}
		c := Column{
			Name:       name,
			DataType:   strings.ToLower(colType),
			ColumnType: strings.ToLower(colType),
		}
		// Default expressions are the only per-column place encryption
		// function calls can appear in SQLite.
		if dflt.Valid {
			c.Extra = "default " + dflt.String
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// sqliteReadOnlyURI converts a DSN to a read-only file URI so a scan can
// never write to the database being audited.
func sqliteReadOnlyURI(dsn string) (string, error) {
	// Reject in-memory databases
	if dsn == ":memory:" || dsn == "file::memory:" ||
		strings.Contains(dsn, "mode=memory") {
		return "", fmt.Errorf("in-memory SQLite databases are not supported (each sql.Open gets a separate DB)")
	}

	if !strings.HasPrefix(dsn, "file:") {
		// Plain file path → file URI with read-only mode
		return "file:" + dsn + "?mode=ro", nil
	}

	// URI form — add or override mode=ro
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse sqlite URI: %w", err)
	}
	q := u.Query()
	q.Set("mode", "ro")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
