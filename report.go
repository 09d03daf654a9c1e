package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// writeConsoleSummary renders the human-readable scan report.
func writeConsoleSummary(w io.Writer, s *Summary) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "ENCRYPTION SCAN SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Database:           %s\n", s.Database)
	fmt.Fprintf(w, "Total tables:       %d\n", s.TotalTables)
	fmt.Fprintf(w, "Encrypted tables:   %d\n", s.EncryptedTables)
	fmt.Fprintf(w, "Unencrypted tables: %d\n", s.UnencryptedTables)
	if s.FailedTables > 0 {
		fmt.Fprintf(w, "Failed tables:      %d\n", s.FailedTables)
	}
	fmt.Fprintf(w, "Encryption rate:    %.1f%%\n", s.EncryptionRate())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "DETAILED RESULTS:")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, t := range s.Tables {
		fmt.Fprintf(w, "%-40s %s\n", t.Table, resultLabel(t))
		if t.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", t.Error)
			continue
		}
		if !t.Encrypted {
			continue
		}
		fmt.Fprintf(w, "    type: %s\n", t.Type)
		if t.Algorithm != "" {
			fmt.Fprintf(w, "    algorithm: %s\n", t.Algorithm)
		}
		for _, col := range t.EncryptedColumns {
			fmt.Fprintf(w, "    column: %s (%s)\n", col.Name, col.ColumnType)
		}
	}
}

func resultLabel(t TableResult) string {
	switch {
	case t.Error != "":
		return "SCAN FAILED"
	case t.Encrypted:
		return "ENCRYPTED"
	default:
		return "NOT ENCRYPTED"
	}
}

// defaultJSONPath names the report file after the database and table count.
func defaultJSONPath(s *Summary) string {
	return fmt.Sprintf("encryption_scan_%s_%d_tables.json", s.Database, s.TotalTables)
}

// writeJSONReport serializes the summary to path. An empty path selects
// the default filename. Returns the path written.
func writeJSONReport(s *Summary, path string) (string, error) {
	if path == "" {
		path = defaultJSONPath(s)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
