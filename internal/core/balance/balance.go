// Package balance derives the energy-credit consistency check and the
// per-kWh fee rate from an extracted invoice record.
package balance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
)

// Status is the outcome of the balance check as shown in exports.
type Status string

const (
	StatusOK          Status = "OK"
	StatusMismatch    Status = "DIVERGENTE"
	StatusUnevaluated Status = "ERRO"
)

// ErrUnevaluated reports that the check could not run because inputs were missing.
// It is never returned for a balance that was computed and disagreed.
var ErrUnevaluated = errors.New("balance could not be evaluated")

// Result holds the derived columns for one record.
type Result struct {
	Calculated *int64
	Status     Status
	Difference *int64
	FeeRate    *decimal.Decimal
	// Err wraps ErrUnevaluated when Status is StatusUnevaluated.
	Err error
}

// Compute checks prior + injected - compensated against the extracted current balance.
func Compute(r extract.Record) Result {
	res := Result{FeeRate: FeeRate(r)}

	var missing []string
	for _, q := range []struct {
		field constants.Field
		v     *int64
	}{
		{constants.FieldPriorBalance, r.PriorBalance},
		{constants.FieldInjected, r.Injected},
		{constants.FieldCompensated, r.Compensated},
		{constants.FieldCurrentBalance, r.CurrentBalance},
	} {
		if q.v == nil {
			missing = append(missing, string(q.field))
		}
	}
	if len(missing) > 0 {
		res.Status = StatusUnevaluated
		res.Err = fmt.Errorf("%w: missing %s", ErrUnevaluated, strings.Join(missing, ", "))
		return res
	}

	calc := *r.PriorBalance + *r.Injected - *r.Compensated
	diff := *r.CurrentBalance - calc
	res.Calculated = &calc
	res.Difference = &diff
	res.Status = StatusOK
	if diff != 0 {
		res.Status = StatusMismatch
	}
	return res
}

// FeeRate is the fee amount divided by compensated kWh.
// It is nil when either is missing or nothing was compensated.
func FeeRate(r extract.Record) *decimal.Decimal {
	if r.FeeAmount == nil || r.Compensated == nil || *r.Compensated == 0 {
		return nil
	}
	rate := r.FeeAmount.Div(decimal.NewFromInt(*r.Compensated))
	return &rate
}
