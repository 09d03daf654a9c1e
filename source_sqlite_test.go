package main

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func TestSqliteReadOnlyURI(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
		err  bool
	}{
		{"audit.db", "file:audit.db?mode=ro", false},
		{"/var/data/audit.db", "file:/var/data/audit.db?mode=ro", false},
		{"file:audit.db?cache=shared", "file:audit.db?cache=shared&mode=ro", false},
		{"file:audit.db?mode=rw", "file:audit.db?mode=ro", false},
		{":memory:", "", true},
		{"file::memory:", "", true},
		{"file:x?mode=memory", "", true},
	}
	for _, tt := range tests {
		got, err := sqliteReadOnlyURI(tt.dsn)
		if tt.err {
			if err == nil {
				t.Errorf("sqliteReadOnlyURI(%q) expected error", tt.dsn)
			}
			continue
		}
		if err != nil {
			t.Errorf("sqliteReadOnlyURI(%q) unexpected error: %v", tt.dsn, err)
			continue
		}
		if got != tt.want {
			t.Errorf("sqliteReadOnlyURI(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestSqliteExtractDBName(t *testing.T) {
	src := &sqliteSourceDB{}
	tests := []struct {
		dsn  string
		want string
	}{
		{"/var/data/audit.db", "audit"},
		{"audit.db", "audit"},
		{"file:/var/data/prod.sqlite?mode=ro", "prod"},
	}
	for _, tt := range tests {
		got, err := src.ExtractDBName(tt.dsn)
		if err != nil {
			t.Errorf("ExtractDBName(%q) error: %v", tt.dsn, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractDBName(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

// seedSQLite creates a scannable database file and returns its path.
func seedSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scantest.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite for seeding: %v", err)
	}
	defer db.Close()

	// SQLite accepts arbitrary declared column types and does not resolve
	// default expressions until insert time, so encryption-shaped schemas
	// can be created without any crypto extension present.
	stmts := []string{
		`CREATE TABLE accounts (id integer primary key, name text)`,
		`CREATE TABLE secrets (id integer primary key, payload text_encrypted)`,
		`CREATE TABLE vault (id integer primary key, data blob DEFAULT (aes_encrypt('x', 'k')))`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
	return path
}

func TestSQLiteScan_EndToEnd(t *testing.T) {
	path := seedSQLite(t)

	src := &sqliteSourceDB{}
	db, err := src.OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error: %v", err)
	}
	defer db.Close()

	dbName, err := src.ExtractDBName(path)
	if err != nil {
		t.Fatalf("ExtractDBName() error: %v", err)
	}

	tables, err := src.ListTables(db, dbName)
	if err != nil {
		t.Fatalf("ListTables() error: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("ListTables() = %v, want 3 tables", tables)
	}

	cat := &sourceCatalog{src: src, db: db, dbName: dbName}
	summary, err := scanDatabase(context.Background(), cat, dbName, tables, scanOptions{})
	if err != nil {
		t.Fatalf("scanDatabase() error: %v", err)
	}

	if summary.EncryptedTables != 2 || summary.UnencryptedTables != 1 {
		t.Fatalf("counts = enc %d unenc %d, want 2/1 (%+v)",
			summary.EncryptedTables, summary.UnencryptedTables, summary.Tables)
	}

	byName := map[string]TableResult{}
	for _, r := range summary.Tables {
		byName[r.Table] = r
	}

	if r := byName["accounts"]; r.Encrypted {
		t.Errorf("accounts verdict = %+v, want not encrypted", r)
	}

	// Declared type carries the marker.
	secrets := byName["secrets"]
	if secrets.Type != ColumnLevelEncryption || len(secrets.EncryptedColumns) != 1 {
		t.Fatalf("secrets verdict = %+v", secrets)
	}
	if secrets.EncryptedColumns[0].Name != "payload" {
		t.Errorf("secrets matched column = %q", secrets.EncryptedColumns[0].Name)
	}

	// Default expression carries an encryption function call.
	vault := byName["vault"]
	if vault.Type != ColumnLevelEncryption || len(vault.EncryptedColumns) != 1 {
		t.Fatalf("vault verdict = %+v", vault)
	}
	if !vault.EncryptedColumns[0].FunctionCall {
		t.Errorf("vault finding = %+v, want FunctionCall", vault.EncryptedColumns[0])
	}
	if !strings.Contains(strings.ToLower(vault.EncryptedColumns[0].Extra), "aes_encrypt") {
		t.Errorf("vault extra = %q", vault.EncryptedColumns[0].Extra)
	}
}

func TestSQLiteTableMeta_DDLText(t *testing.T) {
	path := seedSQLite(t)

	src := &sqliteSourceDB{}
	db, err := src.OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB() error: %v", err)
	}
	defer db.Close()

	meta, err := src.TableMeta(db, "", "secrets")
	if err != nil {
		t.Fatalf("TableMeta() error: %v", err)
	}
	if meta.CreateOptions != "" || meta.Comment != "" {
		t.Errorf("SQLite meta should have empty options/comment: %+v", meta)
	}
	if !strings.Contains(strings.ToLower(meta.CreateStatement), "create table") {
		t.Errorf("CreateStatement = %q", meta.CreateStatement)
	}
}
