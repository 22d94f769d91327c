package sanity

import (
	"github.com/shopspring/decimal"

	"pdf2ofx/internal/canonical"
)

// KeyStrategy extracts one decimal field from a prediction by a single key
// spelling. Strategies are pure and independently testable; the ordered
// lists below encode the priority of known spellings.
type KeyStrategy string

// Extract returns the decimal under the strategy's key, nil when the key is
// absent or unreadable.
func (k KeyStrategy) Extract(pred canonical.Payload) *decimal.Decimal {
	if pred == nil {
		return nil
	}
	v, ok := pred[string(k)]
	if !ok {
		return nil
	}
	return canonical.ParseDecimal(canonical.Unwrap(v))
}

// StartBalanceStrategies lists starting-balance key spellings in priority
// order across known schema variants.
var StartBalanceStrategies = []KeyStrategy{
	"Starting Balance", "starting_balance",
	"Start Balance", "start_balance",
	"Balance Start", "balance_start",
	"Opening Balance", "opening_balance",
}

// EndBalanceStrategies lists ending-balance key spellings in priority order.
var EndBalanceStrategies = []KeyStrategy{
	"Ending Balance", "ending_balance",
	"End Balance", "end_balance",
	"Balance End", "balance_end",
	"Closing Balance", "closing_balance",
}

var confidenceStrategies = []KeyStrategy{"confidence", "Confidence"}

// lowConfidenceThreshold marks a payload-level confidence below which the
// quality score takes the low-confidence penalty.
var lowConfidenceThreshold = decimal.RequireFromString("0.5")

func firstMatch(pred canonical.Payload, strategies []KeyStrategy) *decimal.Decimal {
	for _, s := range strategies {
		if d := s.Extract(pred); d != nil {
			return d
		}
	}
	return nil
}

// ExtractBalances scans a raw payload for starting and ending balances,
// best effort. Either value may be nil.
func ExtractBalances(raw canonical.Payload) (starting, ending *decimal.Decimal) {
	if raw == nil {
		return nil, nil
	}
	pred := canonical.Prediction(raw)
	if pred == nil {
		return nil, nil
	}
	return firstMatch(pred, StartBalanceStrategies), firstMatch(pred, EndBalanceStrategies)
}

// LowConfidence reports whether the payload exposes an extraction
// confidence signal below the low-confidence threshold.
func LowConfidence(raw canonical.Payload) bool {
	if raw == nil {
		return false
	}
	conf := firstMatch(canonical.Prediction(raw), confidenceStrategies)
	return conf != nil && conf.LessThan(lowConfidenceThreshold)
}
