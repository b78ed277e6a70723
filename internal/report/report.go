// =============================================================================
// Sales Data Processor - Report Writers
// =============================================================================
//
// This module writes the outcome of one processed file to disk. A Report
// carries the enriched records, the summary and the run metadata; each
// output format has its own generator:
//
//   xml  : records and summary as an XML document
//   xlsx : "Records" and "Summary" worksheets
//   yaml : summary, rejection breakdown and skipped source rows
//
// All generators are pure (Report in, bytes out) except the xlsx writer,
// which goes through excelize. Write puts every requested format into the
// output directory.
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/source"
	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// Report is the complete outcome of processing one input file.
type Report struct {
	// RunID identifies the CLI invocation that produced the report.
	RunID string

	// Source is the input file path.
	Source string

	// Headers are the input columns in file order.
	Headers []string

	// Records are the accepted, enriched records in input order.
	Records []types.EnrichedRecord

	// Summary holds the total/invalid/valid counters.
	Summary types.Summary

	// Rejections counts rejected records per rule name.
	Rejections map[string]int

	// Skipped lists rows the source discarded before validation.
	Skipped []source.Diagnostic

	StartedAt  time.Time
	FinishedAt time.Time
}

// Columns returns the output column order.
func (r *Report) Columns() []string {
	return types.Columns(r.Headers)
}

// Write generates every requested format into dir. baseName is the file
// name without extension. It returns the paths written, in format order.
func Write(r *Report, dir, baseName string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	for _, format := range formats {
		path := filepath.Join(dir, baseName+"."+format)

		var err error
		switch format {
		case config.FormatXML:
			err = writeBytes(path, GenerateXML, r)
		case config.FormatYAML:
			err = writeBytes(path, GenerateYAML, r)
		case config.FormatXLSX:
			err = WriteXLSX(r, path)
		default:
			err = fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s report: %w", format, err)
		}

		written = append(written, path)
	}

	return written, nil
}

func writeBytes(path string, generate func(*Report) ([]byte, error), r *Report) error {
	data, err := generate(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// cellValue renders a field for text-based outputs.
func cellValue(rec types.EnrichedRecord, column string) string {
	v, ok := rec.Get(column)
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
