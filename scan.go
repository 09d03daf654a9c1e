package main

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// catalog supplies per-table metadata for classification. Implementations
// must be safe for concurrent calls when the scan runs with workers > 1.
type catalog interface {
	// TableMeta returns the catalog snapshot for one table.
	TableMeta(tableName string) (*TableMeta, error)

	// TableColumns returns the table's columns in ordinal order.
	TableColumns(tableName string) ([]Column, error)
}

// scanOptions controls the aggregation loop.
type scanOptions struct {
	// Workers is the number of tables classified concurrently. Values
	// below 1 are treated as 1.
	Workers int

	// AbortOnError stops the whole scan on the first catalog fetch
	// failure. When false (default policy) the failing table is recorded
	// with an error marker and the scan continues, so one unreachable
	// table cannot hide results for the rest of the database.
	AbortOnError bool

	// DDLExcerptLimit bounds the create-statement evidence recorded in
	// verdict details. Zero keeps the default; negative disables the cap.
	DDLExcerptLimit int

	// OnResult, if set, is called once per completed table in completion
	// order. It must not retain the result past the call.
	OnResult func(done, total int, result TableResult)
}

// scanTable fetches one table's metadata and runs the classifiers:
// table-level first, column-level only when the table-level check is
// negative, canonical not-encrypted when both are.
func scanTable(cat catalog, tableName string, ddlExcerptLimit int) (TableResult, error) {
	meta, err := cat.TableMeta(tableName)
	if err != nil {
		return TableResult{}, fmt.Errorf("fetch metadata for %s: %w", tableName, err)
	}

	if verdict, ok := classifyTable(meta, ddlExcerptLimit); ok {
		return TableResult{Table: tableName, Verdict: verdict}, nil
	}

	columns, err := cat.TableColumns(tableName)
	if err != nil {
		return TableResult{}, fmt.Errorf("fetch columns for %s: %w", tableName, err)
	}
	if verdict, ok := classifyColumns(columns); ok {
		return TableResult{Table: tableName, Verdict: verdict}, nil
	}

	return TableResult{Table: tableName, Verdict: notEncrypted()}, nil
}

// scanDatabase classifies every named table and aggregates the verdicts.
// Tables are processed by a worker pool but the summary always lists them
// in the order supplied, which is part of the result contract. The
// aggregator itself performs no I/O; progress is surfaced only through
// opts.OnResult.
func scanDatabase(ctx context.Context, cat catalog, dbName string, tableNames []string, opts scanOptions) (*Summary, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tableNames) {
		workers = len(tableNames)
	}
	excerptLimit := opts.DDLExcerptLimit
	if excerptLimit == 0 {
		excerptLimit = defaultDDLExcerptLimit
	}

	results := make([]TableResult, len(tableNames))

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range tableNames {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var mu sync.Mutex
	done := 0

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				name := tableNames[i]
				result, err := scanTable(cat, name, excerptLimit)
				if err != nil {
					if opts.AbortOnError {
						return err
					}
					result = TableResult{Table: name, Verdict: notEncrypted(), Error: err.Error()}
				}
				results[i] = result

				if opts.OnResult != nil {
					mu.Lock()
					done++
					opts.OnResult(done, len(tableNames), result)
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Database: dbName}
	for _, r := range results {
		summary.add(r)
	}
	return summary, nil
}
