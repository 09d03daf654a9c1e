package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	outputPath string
)

var rootCmd = &cobra.Command{
	Use:   "encscan [config.toml]",
	Short: "Database at-rest encryption audit scanner",
	Long: `encscan inspects a database's catalog metadata and classifies every
table as encrypted or not, detecting table-level encryption (TDE
markers in creation options, comments, and DDL) and column-level
encryption (markers and encryption function calls in column
definitions). It is read-only: no row data is accessed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to scan TOML config file")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "JSON report path (overrides report.json_path)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	// Resolve config path: positional arg takes precedence over --config flag
	cfgPath := configPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return fmt.Errorf("config file required: encscan <config.toml> or encscan --config <config.toml>")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if outputPath != "" {
		cfg.Report.JSON = true
		cfg.Report.JSONPath = outputPath
	}

	ctx := context.Background()
	start := time.Now()

	src, err := newSourceDB(cfg.Source.Type)
	if err != nil {
		return err
	}
	if pg, ok := src.(*postgresSourceDB); ok {
		pg.SetSchema(cfg.Source.Schema)
	}

	// 1. Connect to the source (catalog queries only)
	log.Printf("connecting to %s...", src.Name())
	db, err := src.OpenDB(cfg.Source.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", src.Name(), err)
	}

	dbName, err := src.ExtractDBName(cfg.Source.DSN)
	if err != nil {
		return err
	}

	// 2. Enumerate tables
	log.Printf("scanning database '%s' for encrypted tables...", dbName)
	tables, err := src.ListTables(db, dbName)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	log.Printf("found %d tables to scan", len(tables))

	// 3. Classify every table
	cat := &sourceCatalog{src: src, db: db, dbName: dbName}
	summary, err := scanDatabase(ctx, cat, dbName, tables, scanOptions{
		Workers:         cfg.Workers,
		AbortOnError:    cfg.OnTableError == "abort",
		DDLExcerptLimit: cfg.Report.DDLExcerptLimit,
		OnResult: func(done, total int, r TableResult) {
			detail := ""
			if r.Encrypted {
				detail = fmt.Sprintf(" (%s)", r.Type)
			}
			log.Printf("  [%d/%d] %s — %s%s", done, total, r.Table, resultLabel(r), detail)
		},
	})
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	// 4. Report
	if cfg.Report.Console {
		writeConsoleSummary(os.Stdout, summary)
	}
	if cfg.Report.JSON {
		path, err := writeJSONReport(summary, cfg.Report.JSONPath)
		if err != nil {
			return err
		}
		log.Printf("results saved to %s", path)
	}

	log.Printf("scan completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
