package main

import "strings"

// Marker vocabulary. Matching is substring-based on lower-cased text,
// deliberately loose: "encrypted=yesno" still matches. Tightening this
// into whole-word parsing would change classification outcomes on
// ambiguous catalogs and must not be done silently.
var (
	// createOptionMarkers match INFORMATION_SCHEMA CREATE_OPTIONS text.
	createOptionMarkers = []string{
		"encryption='y'",
		"encryption=y",
		"encrypted=yes",
		"encryption_key_id",
	}

	// createStatementMarkers match full DDL text (SHOW CREATE TABLE et al).
	createStatementMarkers = []string{
		"encryption='y'",
		"encrypted=yes",
		"encryption_key_id",
	}

	// columnFunctionMarkers match encryption function calls in column
	// definitions. The trailing paren separates the call forms from the
	// generic "encrypt" substring check; both checks may fire on the
	// same column.
	columnFunctionMarkers = []string{
		"aes_encrypt",
		"aes_decrypt",
		"encrypt(",
		"decrypt(",
	}
)

// commentMarker matches any "encrypt"-derived wording in comments,
// types, and extra attributes ("encrypted", "encryption", ...).
const commentMarker = "encrypt"

// defaultDDLExcerptLimit bounds the create-statement evidence recorded
// in verdict details. Algorithm extraction always sees the full text.
const defaultDDLExcerptLimit = 512

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// extractAlgorithm scans evidence text for an algorithm token and
// returns the most specific family found: "3des" wins over its "des"
// substring, then "aes", then "des". Empty when no token is present.
func extractAlgorithm(evidence string) Algorithm {
	lower := strings.ToLower(evidence)
	switch {
	case strings.Contains(lower, "3des"):
		return Algorithm3DES
	case strings.Contains(lower, "aes"):
		return AlgorithmAES
	case strings.Contains(lower, "des"):
		return AlgorithmDES
	default:
		return ""
	}
}

// excerpt truncates s to limit bytes for evidence recording. limit <= 0
// disables truncation.
func excerpt(s string, limit int) string {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}

// classifyTable checks one table's catalog metadata for table-level
// encryption markers. Checks run in fixed priority order — creation
// options, then table comment, then the full creation statement — and
// the first match wins. The matched source text is recorded as evidence
// and also drives algorithm extraction. Returns (verdict, true) on a
// match and (zero, false) when no table-level marker is present, in
// which case the caller falls through to column classification.
func classifyTable(meta *TableMeta, ddlExcerptLimit int) (Verdict, bool) {
	if opts := strings.ToLower(meta.CreateOptions); containsAny(opts, createOptionMarkers) {
		return Verdict{
			Encrypted: true,
			Type:      TableLevelEncryption,
			Algorithm: extractAlgorithm(meta.CreateOptions),
			Details:   map[string]string{"create_options": meta.CreateOptions},
		}, true
	}

	if strings.Contains(strings.ToLower(meta.Comment), commentMarker) {
		return Verdict{
			Encrypted: true,
			Type:      TableLevelEncryption,
			Algorithm: extractAlgorithm(meta.Comment),
			Details:   map[string]string{"table_comment": meta.Comment},
		}, true
	}

	if stmt := strings.ToLower(meta.CreateStatement); containsAny(stmt, createStatementMarkers) {
		return Verdict{
			Encrypted: true,
			Type:      TableLevelEncryption,
			Algorithm: extractAlgorithm(meta.CreateStatement),
			Details:   map[string]string{"create_statement": excerpt(meta.CreateStatement, ddlExcerptLimit)},
		}, true
	}

	return Verdict{}, false
}

// classifyColumn evaluates one column against the column-level markers.
func classifyColumn(col Column) ColumnFinding {
	dataType := strings.ToLower(col.DataType)
	colType := strings.ToLower(col.ColumnType)
	comment := strings.ToLower(col.Comment)
	extra := strings.ToLower(col.Extra)

	finding := ColumnFinding{
		Name:       col.Name,
		DataType:   col.DataType,
		ColumnType: col.ColumnType,
		Comment:    col.Comment,
		Extra:      col.Extra,
	}

	if strings.Contains(dataType, commentMarker) ||
		strings.Contains(colType, commentMarker) ||
		strings.Contains(comment, commentMarker) ||
		strings.Contains(extra, commentMarker) {
		finding.Encrypted = true
	}
	if containsAny(colType, columnFunctionMarkers) ||
		containsAny(comment, columnFunctionMarkers) ||
		containsAny(extra, columnFunctionMarkers) {
		finding.Encrypted = true
		finding.FunctionCall = true
	}
	return finding
}

// classifyColumns checks every column of a table independently and
// aggregates the matches into a column-level verdict. Each column
// yields at most one finding even when several checks fire. The
// table-level algorithm field stays absent for column-level verdicts;
// function-name detection is reported per column instead. Returns
// (zero, false) when no column matched.
func classifyColumns(columns []Column) (Verdict, bool) {
	var matched []ColumnFinding
	for _, col := range columns {
		if finding := classifyColumn(col); finding.Encrypted {
			matched = append(matched, finding)
		}
	}
	if len(matched) == 0 {
		return Verdict{}, false
	}
	return Verdict{
		Encrypted:        true,
		Type:             ColumnLevelEncryption,
		EncryptedColumns: matched,
		Details:          map[string]string{},
	}, true
}
