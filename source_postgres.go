package main

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
)

type postgresSourceDB struct {
	schema string
}

func (p *postgresSourceDB) Name() string { return "PostgreSQL" }

func (p *postgresSourceDB) OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func (p *postgresSourceDB) ExtractDBName(dsn string) (string, error) {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.Database == "" {
		return "", fmt.Errorf("cannot extract database name from DSN")
	}
	return cfg.Database, nil
}

func (p *postgresSourceDB) MaxWorkers() int { return 0 }

// SetSchema selects the namespace to scan. Empty keeps the default "public".
func (p *postgresSourceDB) SetSchema(schema string) {
	p.schema = schema
}

func (p *postgresSourceDB) schemaName() string {
	if p.schema == "" {
		return "public"
	}
	return p.schema
}

func (p *postgresSourceDB) ListTables(db *sql.DB, _ string) ([]string, error) {
	rows, err := db.Query(
		`SELECT c.relname
		 FROM pg_catalog.pg_class c
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 WHERE n.nspname = $1 AND c.relkind = 'r'
		 ORDER BY c.relname`,
		p.schemaName(),
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

func (p *postgresSourceDB) TableMeta(db *sql.DB, dbName, tableName string) (*TableMeta, error) {
	meta := &TableMeta{Name: tableName}

	err := db.QueryRow(
		`SELECT coalesce(array_to_string(c.reloptions, ', '), ''),
		        coalesce(obj_description(c.oid, 'pg_class'), '')
		 FROM pg_catalog.pg_class c
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 WHERE n.nspname = $1 AND c.relname = $2 AND c.relkind = 'r'`,
		p.schemaName(), tableName,
	).Scan(&meta.CreateOptions, &meta.Comment)
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", tableName, err)
	}

	// PostgreSQL has no SHOW CREATE TABLE; rebuild a DDL-shaped text from
	// the column definitions so default and generation expressions
	// (pgp_sym_encrypt(...) and friends) are visible to the classifier.
	cols, err := p.TableColumns(db, dbName, tableName)
	if err != nil {
		return nil, err
	}
	meta.CreateStatement = buildPostgresDDL(p.schemaName(), tableName, cols)

	return meta, nil
}

func (p *postgresSourceDB) TableColumns(db *sql.DB, _, tableName string) ([]Column, error) {
	rows, err := db.Query(
		`SELECT a.attname,
		        t.typname,
		        pg_catalog.format_type(a.atttypid, a.atttypmod),
		        coalesce(col_description(a.attrelid, a.attnum), ''),
		        coalesce(pg_catalog.pg_get_expr(d.adbin, d.adrelid), ''),
		        a.attgenerated <> ''
		 FROM pg_catalog.pg_attribute a
		 JOIN pg_catalog.pg_class c ON c.oid = a.attrelid
		 JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		 JOIN pg_catalog.pg_type t ON t.oid = a.atttypid
		 LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		 WHERE n.nspname = $1 AND c.relname = $2
		   AND a.attnum > 0 AND NOT a.attisdropped
		 ORDER BY a.attnum`,
		p.schemaName(), tableName,
	)
	if err != nil {
		return nil, fmt.Errorf("columns for %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		var expr string
		var generated bool
		if err := rows.Scan(&c.Name, &c.DataType, &c.ColumnType, &c.Comment, &expr, &generated); err != nil {
			return nil, err
		}
		// Carry the default/generation expression as the extra attribute;
		// this is where column-level encryption functions show up.
		switch {
		case generated && expr != "":
			c.Extra = "generated always as (" + expr + ") stored"
		case expr != "":
			c.Extra = "default " + expr
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// buildPostgresDDL renders a CREATE TABLE-shaped text from column
// definitions. It is evidence text for the classifier, not executable DDL.
func buildPostgresDDL(schema, table string, cols []Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s.%s (\n", schema, table)
	for i, c := range cols {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  %s %s", c.Name, c.ColumnType)
		if c.Extra != "" {
			b.WriteString(" " + c.Extra)
		}
	}
	b.WriteString("\n)")
	return b.String()
}
