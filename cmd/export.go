// =============================================================================
// SAF-T Export - Export Command
// =============================================================================
//
// This file defines the 'export' command, the main command for generating
// SAF-T audit files. It drives the whole pipeline around the core:
//
//   1. Load configuration and per-business SAF-T settings
//   2. Discover record workbooks in the input directory
//   3. Pair each workbook with its settings file by code
//   4. For each workbook (concurrently):
//      a. Load the record snapshot
//      b. Run the export pipeline (aggregate -> tree -> serialize)
//      c. Write the audit file under its suggested name
//      d. Archive the workbook
//   5. Print a summary report
//
// COMMAND USAGE:
//   saftexport export --from 2023-01-01 --to 2023-12-31 [flags]
//
// FLAGS:
//   --from        : Reporting period start date (required, YYYY-MM-DD)
//   --to          : Reporting period end date (required, YYYY-MM-DD)
//   --file        : Export a single workbook instead of scanning the input dir
//   --dry-run     : Run the pipeline without writing or archiving files
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/saqlainkhadim/saft-export/internal/config"
	"github.com/saqlainkhadim/saft-export/internal/saft"
	"github.com/saqlainkhadim/saft-export/internal/types"
	"github.com/saqlainkhadim/saft-export/internal/workbook"
	"github.com/saqlainkhadim/saft-export/pkg/utils"
)

// Export command flags.
var (
	fromDate string
	toDate   string
	onlyFile string
	dryRun   bool
)

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Generate SAF-T audit files from record workbooks",
	Long: `The export command scans the input directory for record workbooks, pairs
each workbook <code>.xlsx with its SAF-T settings file <code>.yaml, and
generates one audit file per business for the given reporting period.

Workbooks are processed concurrently; each export pipeline is independent.
A workbook without a complete settings file fails before any export work
starts, and a failed export never leaves a partial audit file behind.

On success the audit file is written to the output directory and the
workbook is moved to the input archive. On error the workbook stays in
place and processing continues for the others.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport()
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&fromDate, "from", "", "Reporting period start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&toDate, "to", "", "Reporting period end date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&onlyFile, "file", "", "Path to a single workbook to export")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the pipeline without writing output files")

	exportCmd.MarkFlagRequired("from")
	exportCmd.MarkFlagRequired("to")
}

// outcome is the result of exporting one workbook.
type outcome struct {
	Workbook   string
	OutputFile string
	Stats      saft.Stats
	Err        error
}

// runExport orchestrates the export pipeline for every discovered workbook.
func runExport() error {
	startTime := time.Now()

	periodStart, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return fmt.Errorf("invalid --from date: %w", err)
	}
	periodEnd, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return fmt.Errorf("invalid --to date: %w", err)
	}
	if periodEnd.Before(periodStart) {
		return fmt.Errorf("--to date is before --from date")
	}

	fmt.Println("=== SAF-T Export ===")
	fmt.Println("Loading configuration...")

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	// Settings are validated for completeness here, before any workbook is
	// touched: a business without full SAF-T settings cannot be exported.
	settings, err := config.LoadAllSettings(mainConfig.SettingsDir)
	if err != nil {
		return fmt.Errorf("failed to load SAF-T settings: %w", err)
	}

	fmt.Printf("Loaded %d business settings file(s)\n", len(settings))

	workbooks, err := discoverWorkbooks(mainConfig.InputDir)
	if err != nil {
		return fmt.Errorf("failed to discover workbooks: %w", err)
	}
	if len(workbooks) == 0 {
		fmt.Println("No record workbooks found in the input directory.")
		return nil
	}

	fmt.Printf("Found %d workbook(s) to export\n", len(workbooks))
	fmt.Println("Exporting...")

	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	results := make(chan outcome, len(workbooks))
	sem := make(chan struct{}, mainConfig.MaxConcurrency)

	for _, path := range workbooks {
		wg.Add(1)

		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- exportWorkbook(path, settings, fm, types.ExportRequest{
				PeriodStart: periodStart,
				PeriodEnd:   periodEnd,
			})
		}(path)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var successCount, errorCount int
	for result := range results {
		if result.Err == nil {
			successCount++
			fmt.Printf("  ✓ %s -> %s\n", filepath.Base(result.Workbook), result.OutputFile)
			if verbose {
				fmt.Printf("    invoices: %d (skipped %d), payments: %d, lines: %d\n",
					result.Stats.InvoicesEmitted, result.Stats.InvoicesSkipped,
					result.Stats.PaymentsEmitted, result.Stats.LineItems)
			}
		} else {
			errorCount++
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.Workbook), result.Err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Export Complete ===")
	fmt.Printf("Total workbooks: %d\n", len(workbooks))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if errorCount > 0 && !mainConfig.ContinueOnError {
		return fmt.Errorf("%d workbook(s) failed", errorCount)
	}
	return nil
}

// exportWorkbook runs one full export pipeline: records in, audit file out.
func exportWorkbook(path string, settings map[string]*config.SAFTSettings, fm *utils.FileManager, req types.ExportRequest) outcome {
	result := outcome{Workbook: path}

	code := workbookCode(path)
	s, ok := settings[code]
	if !ok {
		result.Err = fmt.Errorf("no SAF-T settings file for workbook code %q", code)
		return result
	}
	req.BusinessID = s.BusinessID

	records, err := workbook.Load(path)
	if err != nil {
		result.Err = err
		return result
	}

	exporter := saft.New(s)
	export, err := exporter.Export(req, records)
	if err != nil {
		result.Err = err
		return result
	}
	result.Stats = export.Stats

	if dryRun {
		result.OutputFile = export.Filename + " (dry run)"
		return result
	}

	written, err := fm.WriteOutput(export.Filename, export.XML)
	if err != nil {
		result.Err = err
		return result
	}
	result.OutputFile = written

	if _, err := fm.ArchiveInput(path); err != nil {
		result.Err = err
		return result
	}

	return result
}

// discoverWorkbooks lists the workbooks to export: the single --file when
// given, otherwise every .xlsx in the input directory.
func discoverWorkbooks(inputDir string) ([]string, error) {
	if onlyFile != "" {
		return []string{onlyFile}, nil
	}

	var files []string
	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".xlsx" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// workbookCode derives the settings pairing code from a workbook path:
// the base name without extension.
func workbookCode(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
