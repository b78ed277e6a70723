package engine

import (
	"maps"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

func rawRecord(id, customer, region, qty, price string) types.RawRecord {
	return types.RawRecord{
		types.FieldTransactionID: id,
		types.FieldCustomerID:    customer,
		types.FieldRegion:        region,
		types.FieldQuantity:      qty,
		types.FieldUnitPrice:     price,
	}
}

// ----------------------------------------------------------------------------
// Evaluate
// ----------------------------------------------------------------------------

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		record   types.RawRecord
		wantRule Rule // empty when accepted
		wantQty  int64
		wantUP   int64
		wantRev  int64
	}{
		{
			name:    "accepted with thousands separator",
			record:  rawRecord("T1", "C1", "North", "3", "1,000"),
			wantQty: 3, wantUP: 1000, wantRev: 3000,
		},
		{
			name:    "scattered commas removed",
			record:  rawRecord("T9", "C9", "North", "1", "12,3,4"),
			wantQty: 1, wantUP: 1234, wantRev: 1234,
		},
		{
			name:    "explicit plus sign",
			record:  rawRecord("T9", "C9", "North", "+2", "5"),
			wantQty: 2, wantUP: 5, wantRev: 10,
		},
		{
			name:     "bad transaction prefix",
			record:   rawRecord("X1", "C1", "North", "3", "100"),
			wantRule: RuleTransactionID,
		},
		{
			name:     "lowercase prefix",
			record:   rawRecord("t1", "C1", "North", "3", "100"),
			wantRule: RuleTransactionID,
		},
		{
			name:     "empty transaction id",
			record:   rawRecord("", "C1", "North", "3", "100"),
			wantRule: RuleTransactionID,
		},
		{
			name:     "leading space before prefix",
			record:   rawRecord(" T1", "C1", "North", "3", "100"),
			wantRule: RuleTransactionID,
		},
		{
			name:    "blank customer is not empty",
			record:  rawRecord("T2", " ", "South", "1", "50"),
			wantQty: 1, wantUP: 50, wantRev: 50,
		},
		{
			name:     "padded quantity",
			record:   rawRecord("T3", "C3", "East", " 2", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "missing customer",
			record:   rawRecord("T2", "", "South", "1", "50"),
			wantRule: RuleMandatoryField,
		},
		{
			name:     "missing region",
			record:   rawRecord("T2", "C2", "", "1", "50"),
			wantRule: RuleMandatoryField,
		},
		{
			name:     "zero quantity",
			record:   rawRecord("T3", "C3", "East", "0", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "negative quantity",
			record:   rawRecord("T3", "C3", "East", "-4", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "decimal quantity",
			record:   rawRecord("T3", "C3", "East", "1.5", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "quantity with comma is not cleaned",
			record:   rawRecord("T3", "C3", "East", "1,000", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "empty quantity",
			record:   rawRecord("T3", "C3", "East", "", "50"),
			wantRule: RuleQuantity,
		},
		{
			name:     "unparseable unit price",
			record:   rawRecord("T4", "C4", "West", "2", "abc"),
			wantRule: RuleUnitPrice,
		},
		{
			name:     "decimal unit price",
			record:   rawRecord("T4", "C4", "West", "2", "10.50"),
			wantRule: RuleUnitPrice,
		},
		{
			name:     "zero unit price",
			record:   rawRecord("T4", "C4", "West", "2", "0"),
			wantRule: RuleUnitPrice,
		},
		{
			name:     "only commas",
			record:   rawRecord("T4", "C4", "West", "2", ",,"),
			wantRule: RuleUnitPrice,
		},
		{
			name:     "quantity beyond int64",
			record:   rawRecord("T5", "C5", "West", "99999999999999999999", "1"),
			wantRule: RuleQuantity,
		},
		{
			name:     "revenue overflow",
			record:   rawRecord("T5", "C5", "West", "9223372036854775807", "2"),
			wantRule: RuleRevenueOverflow,
		},
		{
			name:     "first failing rule wins",
			record:   rawRecord("X6", "", "", "0", "abc"),
			wantRule: RuleTransactionID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Evaluate(tt.record)

			if tt.wantRule != "" {
				require.False(t, outcome.Accepted)
				require.NotNil(t, outcome.Rejection)
				assert.Equal(t, tt.wantRule, outcome.Rejection.Rule)
				return
			}

			require.True(t, outcome.Accepted, "rejection: %v", outcome.Rejection)
			assert.Equal(t, tt.wantQty, outcome.Record.Quantity)
			assert.Equal(t, tt.wantUP, outcome.Record.UnitPrice)
			assert.Equal(t, tt.wantRev, outcome.Record.Revenue)
		})
	}
}

func TestEvaluate_MissingKeys(t *testing.T) {
	for _, field := range types.RequiredFields {
		t.Run(field, func(t *testing.T) {
			rec := rawRecord("T1", "C1", "North", "3", "100")
			delete(rec, field)

			outcome := Evaluate(rec)

			require.False(t, outcome.Accepted)
			assert.Equal(t, RuleMissingField, outcome.Rejection.Rule)
			assert.Equal(t, field, outcome.Rejection.Field)
		})
	}

	t.Run("nil record", func(t *testing.T) {
		outcome := Evaluate(nil)
		require.False(t, outcome.Accepted)
		assert.Equal(t, RuleMissingField, outcome.Rejection.Rule)
	})
}

func TestEvaluate_Passthrough(t *testing.T) {
	rec := rawRecord("T1", "C1", "North", "2", "7")
	rec["Date"] = "2024-12-01"
	rec["ProductName"] = "Mouse, Wireless"
	rec[types.FieldRevenue] = "stale"

	outcome := Evaluate(rec)

	require.True(t, outcome.Accepted)
	assert.Equal(t, map[string]string{
		"Date":        "2024-12-01",
		"ProductName": "Mouse, Wireless",
	}, outcome.Record.Extra)
	assert.Equal(t, int64(14), outcome.Record.Revenue)
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	accepted := rawRecord("T1", "C1", "North", "3", "1,000")
	rejected := rawRecord("T2", "C2", "South", "3", "bad")
	acceptedCopy := maps.Clone(accepted)
	rejectedCopy := maps.Clone(rejected)

	Evaluate(accepted)
	Evaluate(rejected)

	assert.Equal(t, acceptedCopy, accepted)
	assert.Equal(t, rejectedCopy, rejected)
}

func TestRejection_Error(t *testing.T) {
	outcome := Evaluate(rawRecord("T4", "C4", "West", "2", "abc"))
	require.NotNil(t, outcome.Rejection)
	assert.Equal(t,
		"[UNIT_PRICE] Field 'UnitPrice': Value is not a valid integer (value: 'abc')",
		outcome.Rejection.Error())
}

// ----------------------------------------------------------------------------
// Run / Process
// ----------------------------------------------------------------------------

func TestProcess_EndToEndExamples(t *testing.T) {
	records := []types.RawRecord{
		rawRecord("T1", "C1", "North", "3", "1,000"),
		rawRecord("X1", "C1", "North", "3", "100"),
		rawRecord("T2", "", "South", "1", "50"),
		rawRecord("T3", "C3", "East", "0", "50"),
		rawRecord("T4", "C4", "West", "2", "abc"),
	}

	enriched, summary := Process(records)

	require.Len(t, enriched, 1)
	assert.Equal(t, "T1", enriched[0].TransactionID)
	assert.Equal(t, int64(3), enriched[0].Quantity)
	assert.Equal(t, int64(1000), enriched[0].UnitPrice)
	assert.Equal(t, int64(3000), enriched[0].Revenue)
	assert.Equal(t, types.Summary{TotalRecords: 5, InvalidRecords: 4, ValidRecords: 1}, summary)
}

func TestRun_Breakdown(t *testing.T) {
	records := []types.RawRecord{
		rawRecord("X1", "C1", "North", "3", "100"),
		rawRecord("X2", "C1", "North", "3", "100"),
		rawRecord("T2", "", "South", "1", "50"),
		rawRecord("T4", "C4", "West", "2", "abc"),
		{types.FieldTransactionID: "T5"},
	}

	result := Run(records)

	assert.Equal(t, map[Rule]int{
		RuleTransactionID:  2,
		RuleMandatoryField: 1,
		RuleUnitPrice:      1,
		RuleMissingField:   1,
	}, result.Rejections)
	assert.Empty(t, result.Records)
	assert.Equal(t, 5, result.Summary.InvalidRecords)
}

func TestRun_EmptyInput(t *testing.T) {
	result := Run(nil)

	assert.Empty(t, result.Records)
	assert.Equal(t, types.Summary{}, result.Summary)
}

func TestRun_Invariants(t *testing.T) {
	var records []types.RawRecord
	for i := 0; i < 200; i++ {
		id := "T" + strconv.Itoa(i)
		if i%7 == 0 {
			id = "Z" + strconv.Itoa(i)
		}
		qty := strconv.Itoa(i%5 - 1) // -1..3
		price := strconv.Itoa(i%11) + ",0" + strconv.Itoa(i%10)
		records = append(records, rawRecord(id, "C", "R", qty, price))
	}

	result := Run(records)
	s := result.Summary

	assert.Equal(t, len(records), s.TotalRecords)
	assert.Equal(t, s.TotalRecords, s.InvalidRecords+s.ValidRecords)
	assert.Len(t, result.Records, s.ValidRecords)

	rejected := 0
	for _, n := range result.Rejections {
		rejected += n
	}
	assert.Equal(t, s.InvalidRecords, rejected)

	// Accepted records keep their relative input order.
	last := -1
	for _, rec := range result.Records {
		assert.Greater(t, rec.Quantity, int64(0))
		assert.Greater(t, rec.UnitPrice, int64(0))
		assert.Equal(t, rec.Quantity*rec.UnitPrice, rec.Revenue)

		idx, err := strconv.Atoi(rec.TransactionID[1:])
		require.NoError(t, err)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestProcess_Idempotent(t *testing.T) {
	records := []types.RawRecord{
		rawRecord("T1", "C1", "North", "3", "1,000"),
		rawRecord("T2", "C2", "South", "12", "2,500"),
		rawRecord("X3", "C3", "East", "1", "1"),
	}

	first, _ := Process(records)

	again := make([]types.RawRecord, len(first))
	for i, rec := range first {
		again[i] = rec.Fields()
	}
	second, summary := Process(again)

	require.Len(t, second, len(first))
	assert.Equal(t, len(first), summary.ValidRecords)
	for i := range first {
		assert.Equal(t, first[i].Revenue, second[i].Revenue)
		assert.Equal(t, first[i].Quantity, second[i].Quantity)
		assert.Equal(t, first[i].UnitPrice, second[i].UnitPrice)
	}
}

func TestCleanNumber(t *testing.T) {
	assert.Equal(t, "1234", CleanNumber("1,234"))
	assert.Equal(t, "1234", CleanNumber("12,3,4"))
	assert.Equal(t, "", CleanNumber(","))
	assert.Equal(t, "abc", CleanNumber("abc"))
}
