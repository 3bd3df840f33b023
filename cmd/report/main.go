// Package main renders the report of a recorded simulation run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"sol-memebot/internal/config"
	"sol-memebot/internal/reporting"
	"sol-memebot/internal/storage"
	pgstore "sol-memebot/internal/storage/postgres"
)

// Output formats.
const (
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runID := flag.String("run-id", "", "Run to report (empty = latest finished run)")
	format := flag.String("format", formatMarkdown, "Output format: markdown or csv")
	output := flag.String("output", "", "Output file (empty = stdout)")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	flag.Parse()

	if *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required")
		os.Exit(1)
	}
	if *format != formatMarkdown && *format != formatCSV {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (valid: %s, %s)\n", *format, formatMarkdown, formatCSV)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	gen := reporting.NewGenerator(pgstore.NewRunStore(pool), pgstore.NewTradeStore(pool))

	var report *reporting.Report
	if *runID == "" {
		report, err = gen.GenerateLatest(ctx)
	} else {
		report, err = gen.Generate(ctx, *runID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "Error: no recorded run found")
		pool.Close()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		pool.Close()
		os.Exit(1)
	}

	var content string
	switch *format {
	case formatCSV:
		content = reporting.RenderCSV(report.Trades)
	default:
		content = reporting.RenderMarkdown(report)
	}

	if *output == "" {
		fmt.Print(content)
		return
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			pool.Close()
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, []byte(content), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		pool.Close()
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (run %s)\n", *output, report.RunID)
}
