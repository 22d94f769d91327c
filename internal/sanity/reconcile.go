package sanity

import "github.com/shopspring/decimal"

var (
	okTolerance      = decimal.RequireFromString("0.01")
	warningTolerance = decimal.RequireFromString("1.00")
)

// Reconcile compares the ending balance computed from net movement against
// the externally stated one. With either balance missing the run is SKIPPED;
// otherwise |delta| ≤ 0.01 is OK, ≤ 1.00 is WARNING, above that ERROR.
func Reconcile(starting, ending *decimal.Decimal, netMovement decimal.Decimal) (reconciledEnd, delta *decimal.Decimal, status Status) {
	if starting == nil || ending == nil {
		return nil, nil, StatusSkipped
	}
	end := starting.Add(netMovement)
	diff := end.Sub(*ending)
	switch {
	case diff.Abs().LessThanOrEqual(okTolerance):
		status = StatusOK
	case diff.Abs().LessThanOrEqual(warningTolerance):
		status = StatusWarning
	default:
		status = StatusError
	}
	return &end, &diff, status
}
