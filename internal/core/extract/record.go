package extract

import (
	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/shopspring/decimal"
)

// Record is the flat result of extracting one invoice.
// A nil field was not recognized; it is never replaced by a default,
// except for the kWh quartet (see Extract).
type Record struct {
	CustomerName       *string          `json:"customer_name,omitempty"`
	CustomerCode       *string          `json:"customer_code,omitempty"`
	BillingPeriod      *string          `json:"billing_period,omitempty"`
	TotalPayable       *decimal.Decimal `json:"total_payable,omitempty"`
	DueDate            *string          `json:"due_date,omitempty"`
	PriorReadingDate   *string          `json:"prior_reading_date,omitempty"`
	CurrentReadingDate *string          `json:"current_reading_date,omitempty"`
	FeeAmount          *decimal.Decimal `json:"fee_amount,omitempty"`
	Consumption        *int64           `json:"consumption_kwh,omitempty"`
	PriorBalance       *int64           `json:"prior_balance_kwh,omitempty"`
	Injected           *int64           `json:"injected_kwh,omitempty"`
	Compensated        *int64           `json:"compensated_kwh,omitempty"`
	CurrentBalance     *int64           `json:"current_balance_kwh,omitempty"`
}

// Get returns the value recorded for f and whether it was recognized.
// Values are string, int64 or decimal.Decimal depending on the field.
func (r Record) Get(f constants.Field) (any, bool) {
	switch f {
	case constants.FieldCustomerName:
		return deref(r.CustomerName)
	case constants.FieldCustomerCode:
		return deref(r.CustomerCode)
	case constants.FieldBillingPeriod:
		return deref(r.BillingPeriod)
	case constants.FieldTotalPayable:
		return deref(r.TotalPayable)
	case constants.FieldDueDate:
		return deref(r.DueDate)
	case constants.FieldPriorReadingDate:
		return deref(r.PriorReadingDate)
	case constants.FieldCurrentReadingDate:
		return deref(r.CurrentReadingDate)
	case constants.FieldFeeAmount:
		return deref(r.FeeAmount)
	case constants.FieldConsumption:
		return deref(r.Consumption)
	case constants.FieldPriorBalance:
		return deref(r.PriorBalance)
	case constants.FieldInjected:
		return deref(r.Injected)
	case constants.FieldCompensated:
		return deref(r.Compensated)
	case constants.FieldCurrentBalance:
		return deref(r.CurrentBalance)
	}
	return nil, false
}

// Fields returns every record field keyed by its column name.
// Unrecognized fields are present with a nil value.
func (r Record) Fields() map[constants.Field]any {
	out := make(map[constants.Field]any, len(constants.RecordFields()))
	for _, f := range constants.RecordFields() {
		v, ok := r.Get(f)
		if !ok {
			v = nil
		}
		out[f] = v
	}
	return out
}

// Missing lists the fields that were not recognized, in extraction order.
func (r Record) Missing() []constants.Field {
	var missing []constants.Field
	for _, f := range constants.RecordFields() {
		if _, ok := r.Get(f); !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
