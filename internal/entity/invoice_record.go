package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
)

// InvoiceRecord is the stored extraction result of one file together with its derived columns.
type InvoiceRecord struct {
	ID                uuid.UUID        `json:"id"`
	FileID            uuid.UUID        `json:"file_id"`
	Filename          string           `json:"filename"`
	Record            extract.Record   `json:"record"`
	BalanceStatus     string           `json:"balance_status"`
	BalanceError      *string          `json:"balance_error,omitempty"`
	CalculatedBalance *int64           `json:"calculated_balance,omitempty"`
	BalanceDifference *int64           `json:"balance_difference,omitempty"`
	FeeRate           *decimal.Decimal `json:"fee_rate,omitempty"`
	ProcessedAt       time.Time        `json:"processed_at"`
}

// NewInvoiceRecord flattens an extraction and its balance check into a storable row.
func NewInvoiceRecord(fileID uuid.UUID, filename string, rec extract.Record, res balance.Result) *InvoiceRecord {
	out := &InvoiceRecord{
		FileID:            fileID,
		Filename:          filename,
		Record:            rec,
		BalanceStatus:     string(res.Status),
		CalculatedBalance: res.Calculated,
		BalanceDifference: res.Difference,
		FeeRate:           res.FeeRate,
		ProcessedAt:       time.Now().UTC(),
	}
	if res.Err != nil {
		msg := res.Err.Error()
		out.BalanceError = &msg
	}
	return out
}

// Balance rebuilds the derived columns stored on the row.
// Err is left nil; BalanceError keeps its text.
func (r *InvoiceRecord) Balance() balance.Result {
	return balance.Result{
		Calculated: r.CalculatedBalance,
		Status:     balance.Status(r.BalanceStatus),
		Difference: r.BalanceDifference,
		FeeRate:    r.FeeRate,
	}
}
