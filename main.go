// =============================================================================
// Sales Data Processor - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesproc process       - Validate input files and write the reports
//   salesproc validate      - Validate input files without writing anything
//   salesproc version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core logic (source, engine, pipeline, report, config)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-data-processor/cmd"
)

func main() {
	cmd.Execute()
}
