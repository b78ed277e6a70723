// =============================================================================
// Sales Data Processor - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   salesproc validate [files...]
//
// Runs the read and validation steps only. Nothing is written or archived;
// the command prints the counters and the rejections per rule.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-data-processor/internal/pipeline"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate sales files without writing reports",
	Long: `The validate command reads the input files and applies the validation rules
exactly like 'process', but writes no reports and archives nothing. Use it to
check a delivery before processing it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(
		&strict,
		"strict",
		false,
		"Exit with an error when any file failed",
	)
}

// runValidate validates every input file and prints the counters.
func runValidate(out io.Writer, args []string) error {
	startTime := time.Now()

	files, err := resolveInputs(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No input files found.")
		return nil
	}

	processor := pipeline.New(appConfig, logger, runID, pipeline.Options{DryRun: true})
	results := processor.RunAll(files)

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if !result.Success {
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		s := result.Summary
		fmt.Fprintf(out, "  ✓ %s: total=%d valid=%d invalid=%d skipped=%d\n",
			name, s.TotalRecords, s.ValidRecords, s.InvalidRecords, len(result.Skipped))
		for _, d := range result.Skipped {
			fmt.Fprintf(out, "      skipped %s\n", d)
		}
	}

	totals := pipeline.Aggregate(results)
	printTotals(out, totals, time.Since(startTime))
	printRejections(out, totals.Rejections)

	return checkStrict(totals)
}
