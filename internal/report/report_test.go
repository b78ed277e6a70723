package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sales-data-processor/internal/config"
	"github.com/ginjaninja78/sales-data-processor/internal/source"
	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

func sampleReport() *Report {
	start := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	return &Report{
		RunID:   "run-1",
		Source:  "input/sales_data.txt",
		Headers: []string{"TransactionID", "Product Name", "Quantity", "UnitPrice", "CustomerID", "Region"},
		Records: []types.EnrichedRecord{
			{
				TransactionID: "T1", CustomerID: "C1", Region: "North",
				Quantity: 3, UnitPrice: 1000, Revenue: 3000,
				Extra: map[string]string{"Product Name": "Mouse & Pad"},
			},
			{
				TransactionID: "T2", CustomerID: "C2", Region: "South",
				Quantity: 1, UnitPrice: 50, Revenue: 50,
				Extra: map[string]string{"Product Name": "Cable"},
			},
		},
		Summary:    types.Summary{TotalRecords: 4, InvalidRecords: 2, ValidRecords: 2},
		Rejections: map[string]int{"unit_price": 1, "transaction_id": 1},
		Skipped:    []source.Diagnostic{{Line: 5, Reason: "expected 6 fields, found 5", Fields: 5, Expected: 6}},
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
	}
}

func TestGenerateXML(t *testing.T) {
	data, err := GenerateXML(sampleReport())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<salesData source="input/sales_data.txt" runId="run-1">`)
	assert.Contains(t, out, `<total_records>4</total_records>`)
	assert.Contains(t, out, `<record n="1">`)
	assert.Contains(t, out, `<record n="2">`)
	assert.Contains(t, out, `<Product_Name>Mouse &amp; Pad</Product_Name>`)
	assert.Contains(t, out, `<Revenue>3000</Revenue>`)

	// Columns follow the header order with Revenue last.
	first := out[strings.Index(out, `<record n="1">`):strings.Index(out, `<record n="2">`)]
	assert.Less(t, strings.Index(first, "<TransactionID>"), strings.Index(first, "<Quantity>"))
	assert.Less(t, strings.Index(first, "<Region>"), strings.Index(first, "<Revenue>"))
}

func TestGenerateXML_NoRecords(t *testing.T) {
	r := sampleReport()
	r.Records = nil

	data, err := GenerateXML(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<record ")
}

func TestElementName(t *testing.T) {
	tests := map[string]string{
		"TransactionID": "TransactionID",
		"Unit Price":    "Unit_Price",
		"2024":          "_2024",
		"a/b":           "a_b",
		"xmlField":      "_xmlField",
		"":              "_",
		"Région":        "Région",
	}
	for in, want := range tests {
		assert.Equal(t, want, ElementName(in), in)
	}
}

func TestGenerateYAML(t *testing.T) {
	data, err := GenerateYAML(sampleReport())
	require.NoError(t, err)

	var doc struct {
		RunID    string `yaml:"run_id"`
		Duration string `yaml:"duration"`
		Summary  struct {
			Total   int `yaml:"total_records"`
			Invalid int `yaml:"invalid_records"`
			Valid   int `yaml:"valid_records"`
		} `yaml:"summary"`
		Rejections map[string]int      `yaml:"rejections"`
		Skipped    []source.Diagnostic `yaml:"skipped_rows"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "1.5s", doc.Duration)
	assert.Equal(t, 4, doc.Summary.Total)
	assert.Equal(t, 2, doc.Summary.Invalid)
	assert.Equal(t, 2, doc.Summary.Valid)
	assert.Equal(t, map[string]int{"unit_price": 1, "transaction_id": 1}, doc.Rejections)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, 5, doc.Skipped[0].Line)
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RecordsSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"TransactionID", "Product Name", "Quantity", "UnitPrice", "CustomerID", "Region", "Revenue"}, rows[0])
	assert.Equal(t, []string{"T1", "Mouse & Pad", "3", "1000", "C1", "North", "3000"}, rows[1])

	cellType, err := f.GetCellType(RecordsSheet, "G2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"total_records", "4"}, summary[1])
	assert.Equal(t, []string{"skipped_rows", "1"}, summary[4])
	assert.Equal(t, []string{"rejected_transaction_id", "1"}, summary[5])
	assert.Equal(t, []string{"rejected_unit_price", "1"}, summary[6])
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := Write(sampleReport(), dir, "sales_data_run",
		[]string{config.FormatXML, config.FormatXLSX, config.FormatYAML})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "sales_data_run.xml"),
		filepath.Join(dir, "sales_data_run.xlsx"),
		filepath.Join(dir, "sales_data_run.yaml"),
	}, paths)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}

	f, err := excelize.OpenFile(paths[1])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestWrite_UnknownFormat(t *testing.T) {
	_, err := Write(sampleReport(), t.TempDir(), "x", []string{"pdf"})
	assert.Error(t, err)
}
