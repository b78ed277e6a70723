package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-data-processor/internal/types"
)

// =============================================================================
// RULE IDENTIFIERS
// =============================================================================

// Rule names the validation rule that rejected a record.
type Rule string

const (
	// RuleTransactionID rejects records whose TransactionID lacks the "T" prefix.
	RuleTransactionID Rule = "transaction_id"

	// RuleMissingField rejects records that do not carry a required key at all.
	RuleMissingField Rule = "missing_field"

	// RuleMandatoryField rejects records with an empty CustomerID or Region.
	RuleMandatoryField Rule = "mandatory_field"

	// RuleQuantity rejects unparseable or non-positive quantities.
	RuleQuantity Rule = "quantity"

	// RuleUnitPrice rejects unparseable or non-positive unit prices.
	RuleUnitPrice Rule = "unit_price"

	// RuleRevenueOverflow rejects records whose revenue does not fit in int64.
	RuleRevenueOverflow Rule = "revenue_overflow"
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{
	RuleTransactionID,
	RuleMissingField,
	RuleMandatoryField,
	RuleQuantity,
	RuleUnitPrice,
	RuleRevenueOverflow,
}

// TransactionPrefix is the prefix every accepted TransactionID starts with.
const TransactionPrefix = "T"

// thousandsSeparator is stripped from UnitPrice before parsing.
const thousandsSeparator = ","

// =============================================================================
// REJECTION
// =============================================================================

// Rejection describes why a record was not accepted. It implements error so
// callers can log or wrap it, but the engine never returns it as a failure.
type Rejection struct {
	Rule    Rule
	Field   string
	Value   string
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("[%s] Field '%s': %s (value: '%s')",
		strings.ToUpper(string(r.Rule)),
		r.Field,
		r.Message,
		r.Value,
	)
}

func reject(rule Rule, field, value, format string, args ...any) *Rejection {
	return &Rejection{
		Rule:    rule,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}

// =============================================================================
// FIELD RULES
// =============================================================================

// lookup returns a required field or a missing_field rejection.
func lookup(rec types.RawRecord, field string) (string, *Rejection) {
	v, ok := rec[field]
	if !ok {
		return "", reject(RuleMissingField, field, "", "Required field '%s' is absent", field)
	}
	return v, nil
}

func checkTransactionID(rec types.RawRecord) (string, *Rejection) {
	id, rej := lookup(rec, types.FieldTransactionID)
	if rej != nil {
		return "", rej
	}
	if !strings.HasPrefix(id, TransactionPrefix) {
		return "", reject(RuleTransactionID, types.FieldTransactionID, id,
			"TransactionID must start with '%s'", TransactionPrefix)
	}
	return id, nil
}

// checkMandatory verifies CustomerID and Region are present and non-empty.
// Values are compared as read: a field holding only spaces is not empty.
func checkMandatory(rec types.RawRecord) (customer, region string, rej *Rejection) {
	if customer, rej = lookup(rec, types.FieldCustomerID); rej != nil {
		return "", "", rej
	}
	if region, rej = lookup(rec, types.FieldRegion); rej != nil {
		return "", "", rej
	}
	if customer == "" {
		return "", "", reject(RuleMandatoryField, types.FieldCustomerID, customer,
			"Required field '%s' is empty", types.FieldCustomerID)
	}
	if region == "" {
		return "", "", reject(RuleMandatoryField, types.FieldRegion, region,
			"Required field '%s' is empty", types.FieldRegion)
	}
	return customer, region, nil
}

func checkQuantity(rec types.RawRecord) (int64, *Rejection) {
	raw, rej := lookup(rec, types.FieldQuantity)
	if rej != nil {
		return 0, rej
	}
	return parsePositive(RuleQuantity, types.FieldQuantity, raw, raw)
}

func checkUnitPrice(rec types.RawRecord) (int64, *Rejection) {
	raw, rej := lookup(rec, types.FieldUnitPrice)
	if rej != nil {
		return 0, rej
	}
	return parsePositive(RuleUnitPrice, types.FieldUnitPrice, raw, CleanNumber(raw))
}

func checkRevenue(quantity, unitPrice int64) (int64, *Rejection) {
	// Both operands are positive here.
	if quantity > math.MaxInt64/unitPrice {
		return 0, reject(RuleRevenueOverflow, types.FieldRevenue,
			fmt.Sprintf("%d*%d", quantity, unitPrice),
			"Revenue exceeds the supported integer range")
	}
	return quantity * unitPrice, nil
}

// =============================================================================
// NUMERIC HELPERS
// =============================================================================

// CleanNumber removes every thousands separator from s.
// Example: "12,3,4" -> "1234"
func CleanNumber(s string) string {
	return strings.ReplaceAll(s, thousandsSeparator, "")
}

// parsePositive parses cleaned as a base-10 int64 and requires it to be > 0.
// raw is the original text, reported on rejection.
func parsePositive(rule Rule, field, raw, cleaned string) (int64, *Rejection) {
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, reject(rule, field, raw, "Value is not a valid integer")
	}
	if n <= 0 {
		return 0, reject(rule, field, raw, "Value must be greater than 0 (actual: %d)", n)
	}
	return n, nil
}
