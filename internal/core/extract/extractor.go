// Package extract turns the page-concatenated text of one utility invoice
// into a flat record of billing, reading and energy-credit fields.
//
// Every field is recognized by an ordered chain of strategies; the first
// strategy that finds something wins. Nothing here performs I/O or logs,
// so Extract is safe to call from any number of goroutines.
package extract

// Extract recognizes every field of one invoice.
//
// Fields that cannot be found are left nil. The one exception is the kWh
// quartet (prior balance, injected, compensated, current balance): when none
// of the four is found, all four are set to zero, since invoices without an
// energy-credit section carry no balance to report. A partially found quartet
// is kept as found.
func Extract(text string) Record {
	return ExtractDocument(NewDocument(text))
}

// ExtractDocument is Extract for a document whose views were already built.
func ExtractDocument(doc *Document) Record {
	var r Record
	r.CustomerName = optional(recognizeCustomerName(doc))
	r.CustomerCode = optional(recognizeCustomerCode(doc))
	r.BillingPeriod = optional(recognizeBillingPeriod(doc))
	r.TotalPayable = optional(recognizeTotalPayable(doc))
	r.DueDate = optional(recognizeDueDate(doc))
	r.PriorReadingDate = optional(recognizePriorReading(doc))
	r.CurrentReadingDate = optional(recognizeCurrentReading(doc))
	r.FeeAmount = optional(recognizeFeeAmount(doc))
	r.Consumption = optional(recognizeConsumption(doc))

	r.PriorBalance = optional(recognizePriorBalance(doc))
	r.Injected = optional(recognizeInjected(doc))
	r.Compensated = optional(recognizeCompensated(doc))
	r.CurrentBalance = optional(recognizeCurrentBalance(doc))
	if r.PriorBalance == nil && r.Injected == nil && r.Compensated == nil && r.CurrentBalance == nil {
		r.PriorBalance = optional(int64(0), true)
		r.Injected = optional(int64(0), true)
		r.Compensated = optional(int64(0), true)
		r.CurrentBalance = optional(int64(0), true)
	}
	return r
}
