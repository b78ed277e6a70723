package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Worksheet names used in the xlsx report.
const (
	RecordsSheet = "Records"
	SummarySheet = "Summary"
)

// WriteXLSX saves the report as a workbook with two sheets.
//
// Records: header row followed by one row per enriched record. Quantity,
// UnitPrice and Revenue are written as numbers, everything else as text.
//
// Summary: one "counter | value" row per summary counter and one per
// rejection rule.
func WriteXLSX(r *Report, path string) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// BuildWorkbook creates the workbook in memory. The caller closes it.
func BuildWorkbook(r *Report) (*excelize.File, error) {
	f := excelize.NewFile()

	// A new file starts with "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), RecordsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeRecordsSheet(f, r); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, r); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRecordsSheet(f *excelize.File, r *Report) error {
	columns := r.Columns()

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(RecordsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, rec := range r.Records {
		row := make([]any, len(columns))
		for j, col := range columns {
			v, _ := rec.Get(col)
			row[j] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return nil
}

func writeSummarySheet(f *excelize.File, r *Report) error {
	rows := [][]any{
		{"counter", "value"},
		{"total_records", r.Summary.TotalRecords},
		{"invalid_records", r.Summary.InvalidRecords},
		{"valid_records", r.Summary.ValidRecords},
		{"skipped_rows", len(r.Skipped)},
	}
	for _, rule := range sortedRules(r.Rejections) {
		rows = append(rows, []any{"rejected_" + rule, r.Rejections[rule]})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	return nil
}
