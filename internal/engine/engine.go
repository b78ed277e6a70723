// =============================================================================
// Sales Data Processor - Validation/Transformation Engine
// =============================================================================
//
// The engine turns raw sales records into enriched records. Each record is
// checked against a fixed rule set, in this order, stopping at the first
// failure:
//
//   1. TransactionID must start with "T"
//   2. CustomerID and Region must be non-empty
//   3. Quantity must be a base-10 integer greater than 0
//   4. UnitPrice, with every comma removed, must be a base-10 integer > 0
//   5. Enrichment: Quantity/UnitPrice become integers, Revenue is added
//
// ERROR HANDLING:
//   - A failed rule rejects the record; it never fails the run
//   - A record missing a required key is rejected like any other bad record
//   - The input records are never modified
//
// The engine performs no I/O and holds no state between runs. Every call is
// independent and safe to use from several goroutines at once.
//
// =============================================================================

package engine

import (
	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome is the result of evaluating one raw record. Exactly one of Record
// (when Accepted) or Rejection (otherwise) is meaningful.
type Outcome struct {
	Accepted  bool
	Record    types.EnrichedRecord
	Rejection *Rejection
}

// Evaluate applies every rule to rec and returns the outcome.
// rec is only read.
func Evaluate(rec types.RawRecord) Outcome {
	if rec == nil {
		return rejected(reject(RuleMissingField, types.FieldTransactionID, "", "Record is empty"))
	}

	id, rej := checkTransactionID(rec)
	if rej != nil {
		return rejected(rej)
	}

	customer, region, rej := checkMandatory(rec)
	if rej != nil {
		return rejected(rej)
	}

	quantity, rej := checkQuantity(rec)
	if rej != nil {
		return rejected(rej)
	}

	unitPrice, rej := checkUnitPrice(rec)
	if rej != nil {
		return rejected(rej)
	}

	revenue, rej := checkRevenue(quantity, unitPrice)
	if rej != nil {
		return rejected(rej)
	}

	return Outcome{
		Accepted: true,
		Record: types.EnrichedRecord{
			TransactionID: id,
			CustomerID:    customer,
			Region:        region,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			Revenue:       revenue,
			Extra:         passthrough(rec),
		},
	}
}

func rejected(r *Rejection) Outcome {
	return Outcome{Rejection: r}
}

// passthrough copies every field the engine does not own.
// A Revenue column in the input is overwritten, so it is not carried.
func passthrough(rec types.RawRecord) map[string]string {
	extra := make(map[string]string, len(rec))
	for k, v := range rec {
		switch k {
		case types.FieldTransactionID, types.FieldCustomerID, types.FieldRegion,
			types.FieldQuantity, types.FieldUnitPrice, types.FieldRevenue:
			continue
		}
		extra[k] = v
	}
	return extra
}

// =============================================================================
// RUN
// =============================================================================

// Result contains everything one engine run produces.
type Result struct {
	// Records holds the accepted records in input order.
	Records []types.EnrichedRecord

	// Summary holds the total/invalid/valid counters.
	Summary types.Summary

	// Rejections counts rejected records per rule.
	Rejections map[Rule]int
}

// Run evaluates every record in order and returns the accepted records,
// the summary and the per-rule rejection breakdown.
func Run(records []types.RawRecord) *Result {
	result := &Result{
		Records:    make([]types.EnrichedRecord, 0, len(records)),
		Rejections: make(map[Rule]int),
	}

	invalid := 0
	for _, rec := range records {
		outcome := Evaluate(rec)
		if !outcome.Accepted {
			invalid++
			result.Rejections[outcome.Rejection.Rule]++
			continue
		}
		result.Records = append(result.Records, outcome.Record)
	}

	result.Summary = types.Summary{
		TotalRecords:   len(records),
		InvalidRecords: invalid,
		ValidRecords:   len(result.Records),
	}

	return result
}

// Process is the engine contract: enriched records in input order plus the
// summary of the run.
func Process(records []types.RawRecord) ([]types.EnrichedRecord, types.Summary) {
	result := Run(records)
	return result.Records, result.Summary
}
