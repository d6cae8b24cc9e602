// Package export turns stored invoice records into delimited text,
// spreadsheet and JSON outputs.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Row maps a column to its value: string, int64, decimal.Decimal or nil when blank.
type Row map[constants.Field]any

// Table is an ordered set of columns and rows of values aligned with them.
type Table struct {
	Columns []constants.Field
	Rows    [][]any
}

// NewRow combines an extracted record, its balance check and the file name.
func NewRow(filename string, rec extract.Record, res balance.Result) Row {
	row := make(Row, len(constants.PreferredColumns()))
	for f, v := range rec.Fields() {
		row[f] = v
	}
	row[constants.FieldFeeRate] = nil
	if res.FeeRate != nil {
		row[constants.FieldFeeRate] = *res.FeeRate
	}
	row[constants.FieldCalculatedBalance] = deref(res.Calculated)
	row[constants.FieldBalanceCheck] = string(res.Status)
	row[constants.FieldBalanceDifference] = deref(res.Difference)
	row[constants.FieldFile] = filename
	return row
}

// RowFromRecord builds the export row of a stored record.
func RowFromRecord(r entity.InvoiceRecord) Row {
	return NewRow(r.Filename, r.Record, r.Balance())
}

// BuildTable lays rows out in the preferred column order.
// Columns that appear in no row are left out rather than padded.
func BuildTable(rows []Row) Table {
	present := map[constants.Field]bool{}
	for _, r := range rows {
		for f := range r {
			present[f] = true
		}
	}
	var t Table
	for _, c := range constants.PreferredColumns() {
		if present[c] {
			t.Columns = append(t.Columns, c)
		}
	}
	for _, r := range rows {
		vals := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			vals[i] = r[c]
		}
		t.Rows = append(t.Rows, vals)
	}
	return t
}

// Header returns the column names as strings.
func (t Table) Header() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = string(c)
	}
	return out
}

func deref(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// formatValue renders a cell for text outputs; nil is blank.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return x.String()
	}
	return ""
}
