package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// ScanConfig holds the full TOML-driven scan configuration.
type ScanConfig struct {
	Source       SourceConfig `toml:"source"`
	Workers      int          `toml:"workers"`
	OnTableError string       `toml:"on_table_error"` // skip|abort
	Report       ReportConfig `toml:"report"`
}

// SourceConfig identifies the database engine and connection string.
type SourceConfig struct {
	Type   string `toml:"type"`   // "mysql", "postgres", or "sqlite"
	DSN    string `toml:"dsn"`
	Schema string `toml:"schema"` // namespace to scan (PostgreSQL only, default: "public")
}

// ReportConfig controls the report sinks.
type ReportConfig struct {
	Console         bool   `toml:"console"`
	JSON            bool   `toml:"json"`
	JSONPath        string `toml:"json_path"`         // empty → encryption_scan_<db>_<n>_tables.json
	DDLExcerptLimit int    `toml:"ddl_excerpt_limit"` // bytes of DDL kept as evidence; -1 disables the cap
}

// loadConfig reads a TOML config file and returns a ScanConfig with
// defaults applied.
func loadConfig(path string) (*ScanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := ScanConfig{
		OnTableError: "skip",
		Report: ReportConfig{
			Console: true,
			JSON:    true,
		},
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers()
	}

	if cfg.OnTableError == "" {
		cfg.OnTableError = "skip"
	}
	switch cfg.OnTableError {
	case "skip", "abort":
	default:
		return nil, fmt.Errorf("on_table_error must be one of: skip, abort")
	}

	// Source validation
	if cfg.Source.Type == "" {
		return nil, fmt.Errorf("source.type is required (must be mysql, postgres, or sqlite)")
	}
	src, err := newSourceDB(cfg.Source.Type)
	if err != nil {
		return nil, err
	}
	if cfg.Source.DSN == "" {
		return nil, fmt.Errorf("source.dsn is required")
	}
	if cfg.Source.Schema != "" && cfg.Source.Type != "postgres" {
		return nil, fmt.Errorf("source.schema is a postgres-only option")
	}

	// Cap workers based on source limits
	if max := src.MaxWorkers(); max > 0 && cfg.Workers > max {
		cfg.Workers = max
	}

	if cfg.Report.DDLExcerptLimit == 0 {
		cfg.Report.DDLExcerptLimit = defaultDDLExcerptLimit
	}

	return &cfg, nil
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
