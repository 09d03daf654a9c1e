package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

type mysqlSourceDB struct{}

func (m *mysqlSourceDB) Name() string { return "MySQL" }

func (m *mysqlSourceDB) OpenDB(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.InterpolateParams = true
	cfg.Loc = time.UTC
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	return db, nil
}

func (m *mysqlSourceDB) ExtractDBName(dsn string) (string, error) {
	return extractMySQLDBName(dsn)
}

func (m *mysqlSourceDB) MaxWorkers() int { return 0 }

func (m *mysqlSourceDB) ListTables(db *sql.DB, dbName string) ([]string, error) {
	rows, err := db.Query(
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		 ORDER BY TABLE_NAME`,
		dbName,
	)
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

func (m *mysqlSourceDB) TableMeta(db *sql.DB, dbName, tableName string) (*TableMeta, error) {
	meta := &TableMeta{Name: tableName}

	var createOptions, tableComment sql.NullString
	err := db.QueryRow(
		`SELECT CREATE_OPTIONS, TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		dbName, tableName,
	).Scan(&createOptions, &tableComment)
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", tableName, err)
	}
	// NULL catalog fields are treated as empty, not as a distinct state
	meta.CreateOptions = createOptions.String
	meta.Comment = tableComment.String

	var name, createStmt string
	err = db.QueryRow("SHOW CREATE TABLE " + mysqlIdent(tableName)).Scan(&name, &createStmt)
	if err != nil {
		return nil, fmt.Errorf("show create table %s: %w", tableName, err)
	}
	meta.CreateStatement = createStmt

	return meta, nil
}

func (m *mysqlSourceDB) TableColumns(db *sql.DB, dbName, tableName string) ([]Column, error) {
	rows, err := db.Query(
		`SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, COLUMN_COMMENT, EXTRA
		 FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		 ORDER BY ORDINAL_POSITION`,
		dbName, tableName,
	)
	if err != nil {
		return nil, fmt.Errorf("columns for %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var dataType, colType, comment, extra sql.NullString
		if err := rows.Scan(&c.Name, &dataType, &colType, &comment, &extra); err != nil {
			return nil, err
		}
		c.DataType = dataType.String
		c.ColumnType = colType.String
		c.Comment = comment.String
		c.Extra = extra.String
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// mysqlIdent quotes a MySQL identifier.
func mysqlIdent(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

// extractMySQLDBName pulls the database name from a MySQL DSN.
// Expects format: user:pass@tcp(host:port)/dbname or user:pass@host:port/dbname
func extractMySQLDBName(dsn string) (string, error) {
	// Find the last '/' before any '?' parameters
	paramIdx := len(dsn)
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		paramIdx = i
	}
	slashIdx := strings.LastIndexByte(dsn[:paramIdx], '/')
	if slashIdx < 0 {
		return "", fmt.Errorf("cannot extract database name from DSN: no '/' found")
	}
	dbName := dsn[slashIdx+1 : paramIdx]
	if dbName == "" {
		return "", fmt.Errorf("cannot extract database name from DSN: empty name")
	}
	return dbName, nil
}
