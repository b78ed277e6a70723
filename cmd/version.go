// =============================================================================
// Sales Data Processor - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   salesproc version           full build report
//   salesproc version --short   version number only, for scripts
//
// BUILD FLAGS:
//   The release build stamps the binary through ldflags:
//
//   go build -ldflags "\
//     -X github.com/ginjaninja78/sales-data-processor/cmd.Version=1.2.0 \
//     -X github.com/ginjaninja78/sales-data-processor/cmd.Commit=$(git rev-parse --short HEAD) \
//     -X github.com/ginjaninja78/sales-data-processor/cmd.BuildDate=$(date -u +%Y-%m-%d)" \
//     -o salesproc .
//
//   Unstamped development builds report "dev".
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/engine"
)

// Stamped at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// versionShort prints only the version number.
var versionShort bool

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the build information",
	Long: `Display the version, commit and build date of this binary together with the
validation rules and report formats it supports.`,

	// The version is printed even when the configuration is broken.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },

	Run: func(cmd *cobra.Command, args []string) {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return
		}
		printVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(
		&versionShort,
		"short",
		false,
		"Print only the version number",
	)
}

func printVersion(out io.Writer) {
	rules := make([]string, len(engine.Rules))
	for i, rule := range engine.Rules {
		rules[i] = string(rule)
	}

	fmt.Fprintf(out, "salesproc %s\n", Version)
	fmt.Fprintf(out, "  commit:   %s\n", Commit)
	fmt.Fprintf(out, "  built:    %s\n", BuildDate)
	fmt.Fprintf(out, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "  rules:    %s\n", strings.Join(rules, ", "))
	fmt.Fprintf(out, "  formats:  %s\n", strings.Join([]string{config.FormatXML, config.FormatXLSX, config.FormatYAML}, ", "))
}
