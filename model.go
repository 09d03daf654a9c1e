package main

import "encoding/json"

// TableMeta is the per-table catalog snapshot the classifiers consume.
// Absent catalog fields are carried as empty strings, never omitted.
type TableMeta struct {
	Name            string
	CreateOptions   string // engine-specific creation options text
	Comment         string
	CreateStatement string // full DDL text as the engine reports it
}

// Column is one row of a table's column list, as read from the catalog.
type Column struct {
	Name       string
	DataType   string // short form, e.g. "varchar"
	ColumnType string // full form, e.g. "varchar(255)"
	Comment    string
	Extra      string // engine-specific flags / default or generation expression
}

// EncryptionType labels the scope of a positive verdict.
type EncryptionType string

const (
	TableLevelEncryption  EncryptionType = "Table-level encryption"
	ColumnLevelEncryption EncryptionType = "Column-level encryption"
)

// Algorithm is the encryption algorithm family extracted from evidence text.
type Algorithm string

const (
	AlgorithmAES  Algorithm = "AES"
	AlgorithmDES  Algorithm = "DES"
	Algorithm3DES Algorithm = "3DES"
)

// MarshalJSON serializes an absent encryption type as null.
func (t EncryptionType) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// MarshalJSON serializes an absent algorithm as null.
func (a Algorithm) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

// ColumnFinding is the per-column record kept for a column that matched
// a column-level encryption marker. FunctionCall reports whether an
// encryption function name (aes_encrypt, encrypt(, ...) fired, as
// opposed to only the generic "encrypt" substring check.
type ColumnFinding struct {
	Name         string `json:"column_name"`
	DataType     string `json:"data_type"`
	ColumnType   string `json:"column_type"`
	Comment      string `json:"comment"`
	Extra        string `json:"extra"`
	Encrypted    bool   `json:"encrypted"`
	FunctionCall bool   `json:"function_call"`
}

// Verdict is the classification result for one table. Details maps the
// evidence source (create_options, table_comment, create_statement) to
// the raw text that triggered the match, for audit traceability.
type Verdict struct {
	Encrypted        bool              `json:"encrypted"`
	Type             EncryptionType    `json:"encryption_type"`
	Algorithm        Algorithm         `json:"encryption_algorithm"`
	EncryptedColumns []ColumnFinding   `json:"encrypted_columns"`
	Details          map[string]string `json:"details"`
}

// notEncrypted returns the canonical negative verdict.
func notEncrypted() Verdict {
	return Verdict{Details: map[string]string{}}
}

// TableResult pairs a table name with its verdict. Error is set when the
// catalog fetch failed for this table; a failed table is distinct from a
// "not encrypted" one and counts in neither encryption bucket.
type TableResult struct {
	Table string `json:"table_name"`
	Verdict
	Error string `json:"error,omitempty"`
}

// Summary is the database-level aggregate. Tables preserves the catalog's
// table enumeration order regardless of how the scan was parallelized.
type Summary struct {
	Database          string        `json:"database"`
	TotalTables       int           `json:"total_tables"`
	EncryptedTables   int           `json:"encrypted_tables"`
	UnencryptedTables int           `json:"unencrypted_tables"`
	FailedTables      int           `json:"failed_tables,omitempty"`
	Tables            []TableResult `json:"tables"`
}

// add appends one per-table result and updates the derived counts.
// EncryptedTables + UnencryptedTables + FailedTables == TotalTables holds
// after every call.
func (s *Summary) add(r TableResult) {
	s.Tables = append(s.Tables, r)
	s.TotalTables++
	switch {
	case r.Error != "":
		s.FailedTables++
	case r.Encrypted:
		s.EncryptedTables++
	default:
		s.UnencryptedTables++
	}
}

// EncryptionRate returns the percentage of encrypted tables, 0.0 for an
// empty database.
func (s *Summary) EncryptionRate() float64 {
	if s.TotalTables == 0 {
		return 0.0
	}
	return float64(s.EncryptedTables) / float64(s.TotalTables) * 100.0
}
