// =============================================================================
// Sales Data Processor - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main command of the tool. It
// runs the whole pipeline for every input file.
//
// COMMAND USAGE:
//   salesproc process [files...] [flags]
//
// FLAGS:
//   --dry-run : Read and validate without writing reports
//   --archive : Move input files to archive_dir after processing
//   --strict  : Exit with an error when any file failed
//
// PROCESSING PIPELINE:
//   1. Resolve the input files (arguments, or discovery in input_dir)
//   2. For each file (concurrently, bounded by max_concurrency):
//      a. Read the records, skipping rows with a wrong field count
//      b. Validate and enrich the records
//      c. Write the XML, XLSX and YAML reports
//      d. Archive the input file
//   3. Print the per-file results and the totals
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-data-processor/internal/engine"
	"github.com/ginjaninja78/sales-data-processor/internal/pipeline"
	"github.com/ginjaninja78/sales-data-processor/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun reads and validates without writing output files.
var dryRun bool

// archive moves processed input files to the archive directory.
var archive bool

// strict turns a failed file into a non-zero exit status.
var strict bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Validate sales files and write the enriched reports",
	Long: `The process command reads pipe-delimited sales files, validates every
record and writes the valid, enriched records together with a summary to the
output directory.

Files named on the command line are processed; without arguments every file
in input_dir matching file_pattern is processed.

For each file:
  - Rows whose field count differs from the header are skipped and logged
  - Invalid records are counted per rule and left out of the reports
  - Valid records gain a Revenue column (Quantity x UnitPrice)

A file that cannot be read fails on its own; the other files are still
processed unless continue_on_error is false.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout(), args, pipeline.Options{
			DryRun:  dryRun,
			Archive: archive,
		})
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Read and validate without writing reports",
	)

	processCmd.Flags().BoolVar(
		&archive,
		"archive",
		false,
		"Move input files to archive_dir after processing",
	)

	processCmd.Flags().BoolVar(
		&strict,
		"strict",
		false,
		"Exit with an error when any file failed",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the pipeline and prints the results to out.
func runProcess(out io.Writer, args []string, options pipeline.Options) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: RESOLVE INPUT FILES
	// =========================================================================

	if options.Archive && appConfig.ArchiveDir == "" {
		return fmt.Errorf("--archive requires archive_dir to be set in the configuration")
	}

	fmt.Fprintln(out, "=== Sales Data Processor ===")

	files, err := resolveInputs(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No input files found.")
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(files))
	if options.DryRun {
		fmt.Fprintln(out, "Dry run: no reports will be written")
	} else if err := newFileManager().EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: PROCESS FILES
	// =========================================================================

	processor := pipeline.New(appConfig, logger, runID, options)
	results := processor.RunAll(files)

	// =========================================================================
	// STEP 3: PRINT RESULTS
	// =========================================================================

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if !result.Success {
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		counts := fmt.Sprintf("%d valid, %d invalid, %d skipped",
			result.Summary.ValidRecords, result.Summary.InvalidRecords, len(result.Skipped))
		if len(result.OutputFiles) == 0 {
			fmt.Fprintf(out, "  ✓ %s (%s)\n", name, counts)
		} else {
			fmt.Fprintf(out, "  ✓ %s -> %s (%s)\n", name, strings.Join(result.OutputFiles, ", "), counts)
		}
	}

	totals := pipeline.Aggregate(results)
	printTotals(out, totals, time.Since(startTime))

	return checkStrict(totals)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveInputs returns args when given, otherwise discovers files in the
// configured input directory.
func resolveInputs(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	files, err := newFileManager().DiscoverInputFiles(appConfig.FilePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input files: %w", err)
	}
	return files, nil
}

func newFileManager() *utils.FileManager {
	return utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir, appConfig.ArchiveDir)
}

// printTotals writes the totals block shared by process and validate.
func printTotals(out io.Writer, totals pipeline.Totals, elapsed time.Duration) {
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", totals.Files)
	fmt.Fprintf(out, "Successful:      %d\n", totals.Succeeded)
	fmt.Fprintf(out, "Errors:          %d\n", totals.Failed)
	fmt.Fprintf(out, "Total records:   %d\n", totals.Summary.TotalRecords)
	fmt.Fprintf(out, "Valid records:   %d\n", totals.Summary.ValidRecords)
	fmt.Fprintf(out, "Invalid records: %d\n", totals.Summary.InvalidRecords)
	fmt.Fprintf(out, "Skipped rows:    %d\n", totals.Skipped)
	fmt.Fprintf(out, "Time elapsed:    %s\n", elapsed.Round(time.Millisecond))
}

// printRejections writes the per-rule breakdown in rule order.
func printRejections(out io.Writer, rejections map[engine.Rule]int) {
	fmt.Fprintln(out, "\nRejections by rule:")
	for _, rule := range engine.Rules {
		fmt.Fprintf(out, "  %-17s %d\n", string(rule)+":", rejections[rule])
	}
}

// checkStrict fails the command in --strict mode when any file failed.
func checkStrict(totals pipeline.Totals) error {
	if strict && totals.Failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", totals.Failed, totals.Files)
	}
	return nil
}
