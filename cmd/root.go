// =============================================================================
// Sales Data Processor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesproc)
//   ├── processCmd  (salesproc process)
//   ├── validateCmd (salesproc validate)
//   └── versionCmd  (salesproc version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config)
//   2. Sets up the logger (--verbose, --log-format)
//   3. Assigns a run id shared by every report of this invocation
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// logFormat overrides log_format from the configuration file.
var logFormat string

// Loaded by PersistentPreRunE.
var (
	appConfig *config.Config
	logger    *logrus.Logger
	runID     string
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesproc",
	Short: "Sales Data Processor - Validate and enrich pipe-delimited sales exports",
	Long: `Sales Data Processor reads pipe-delimited sales transaction files,
validates every record against the business rules, computes the revenue of
each valid transaction and writes the results as XML, XLSX and YAML reports.

Key Features:
  - Rows with a wrong field count are skipped and reported by line number
  - Invalid records are counted per rule, never aborting the run
  - Concurrent processing of several input files
  - Optional archival of processed input files

Example Usage:
  salesproc process                      # Process all files in the input directory
  salesproc process data/sales_data.txt  # Process one file
  salesproc validate --config ./my.yaml  # Report counts without writing anything`,

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		"Log format: text or json (overrides log_format)",
	)
}

// initApp loads the configuration and sets up logging.
func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logFormat != "" {
		cfg.LogFormat = logFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	appConfig = cfg
	logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.SetOutput(cmd.ErrOrStderr())
	runID = uuid.New().String()

	logger.WithFields(logrus.Fields{
		"config": cfgFile,
		"run_id": runID,
	}).Debug("Configuration loaded")

	return nil
}
