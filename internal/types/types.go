// =============================================================================
// Sales Data Processor - Shared Types
// =============================================================================
//
// This package contains the record types shared by the source reader, the
// validation engine, the pipeline and the report writers. Keeping them here
// avoids import cycles between those packages.
//
// RECORD LIFECYCLE:
//   RawRecord       : produced by the source, one per data row
//   EnrichedRecord  : produced by the engine from exactly one accepted RawRecord
//   Summary         : produced by the engine once per run
//
// =============================================================================

package types

import "strconv"

// =============================================================================
// FIELD NAMES
// =============================================================================

// Field names the engine depends on. Every other header in the input file is
// treated as a passthrough field.
const (
	FieldTransactionID = "TransactionID"
	FieldCustomerID    = "CustomerID"
	FieldRegion        = "Region"
	FieldQuantity      = "Quantity"
	FieldUnitPrice     = "UnitPrice"
	FieldRevenue       = "Revenue"
)

// RequiredFields lists the fields every raw record must carry, in the order
// the engine checks them.
var RequiredFields = []string{
	FieldTransactionID,
	FieldCustomerID,
	FieldRegion,
	FieldQuantity,
	FieldUnitPrice,
}

// =============================================================================
// RAW RECORD
// =============================================================================

// RawRecord is an unvalidated data row: header name -> raw string value.
type RawRecord map[string]string

// =============================================================================
// ENRICHED RECORD
// =============================================================================

// EnrichedRecord is a raw record that passed every validation rule.
// Quantity and UnitPrice hold the cleaned integer values and Revenue is
// their product.
type EnrichedRecord struct {
	TransactionID string
	CustomerID    string
	Region        string

	Quantity  int64
	UnitPrice int64
	Revenue   int64

	// Extra holds every passthrough field exactly as it appeared in the
	// raw record.
	Extra map[string]string
}

// Get returns the value of a field in its output representation: integers
// for Quantity, UnitPrice and Revenue, strings for everything else.
// The boolean is false when the record has no such field.
func (e EnrichedRecord) Get(name string) (any, bool) {
	switch name {
	case FieldTransactionID:
		return e.TransactionID, true
	case FieldCustomerID:
		return e.CustomerID, true
	case FieldRegion:
		return e.Region, true
	case FieldQuantity:
		return e.Quantity, true
	case FieldUnitPrice:
		return e.UnitPrice, true
	case FieldRevenue:
		return e.Revenue, true
	}
	v, ok := e.Extra[name]
	return v, ok
}

// Fields renders the record back into a string mapping. Integers are written
// in base 10, so the result can be fed to the engine again.
func (e EnrichedRecord) Fields() RawRecord {
	out := make(RawRecord, len(e.Extra)+len(RequiredFields)+1)
	for k, v := range e.Extra {
		out[k] = v
	}
	out[FieldTransactionID] = e.TransactionID
	out[FieldCustomerID] = e.CustomerID
	out[FieldRegion] = e.Region
	out[FieldQuantity] = strconv.FormatInt(e.Quantity, 10)
	out[FieldUnitPrice] = strconv.FormatInt(e.UnitPrice, 10)
	out[FieldRevenue] = strconv.FormatInt(e.Revenue, 10)
	return out
}

// Columns returns the output column order for the given source headers:
// the headers in file order, followed by Revenue when the file did not
// already carry a Revenue column.
func Columns(headers []string) []string {
	cols := make([]string, 0, len(headers)+1)
	hasRevenue := false
	for _, h := range headers {
		if h == FieldRevenue {
			hasRevenue = true
		}
		cols = append(cols, h)
	}
	if !hasRevenue {
		cols = append(cols, FieldRevenue)
	}
	return cols
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary holds the aggregate counts for one processing run.
// TotalRecords always equals InvalidRecords + ValidRecords.
type Summary struct {
	TotalRecords   int `yaml:"total_records" json:"total_records"`
	InvalidRecords int `yaml:"invalid_records" json:"invalid_records"`
	ValidRecords   int `yaml:"valid_records" json:"valid_records"`
}

// Map returns the summary keyed by its external counter names.
func (s Summary) Map() map[string]int {
	return map[string]int{
		"total_records":   s.TotalRecords,
		"invalid_records": s.InvalidRecords,
		"valid_records":   s.ValidRecords,
	}
}

// Add accumulates another summary into s. Used to build totals across files.
func (s *Summary) Add(other Summary) {
	s.TotalRecords += other.TotalRecords
	s.InvalidRecords += other.InvalidRecords
	s.ValidRecords += other.ValidRecords
}
