package constants

// Field names one entry of the flat extraction record or one export column.
// The string values are the column headers downstream spreadsheets depend on.
type Field string

// Core record fields.
const (
	FieldCustomerName       Field = "NOME CLIENTE"
	FieldCustomerCode       Field = "CODIGO DO CLIENTE"
	FieldBillingPeriod      Field = "REF: MES/ANO"
	FieldTotalPayable       Field = "TOTAL A PAGAR (R$)"
	FieldDueDate            Field = "VENCIMENTO"
	FieldPriorReadingDate   Field = "LEITURA ANTERIOR"
	FieldCurrentReadingDate Field = "LEITURA ATUAL"
	FieldFeeAmount          Field = "CUSTO TUSD FIO B (R$)"
	FieldConsumption        Field = "CONSUMO (kWh)"
	FieldPriorBalance       Field = "SALDO ANTERIOR (kWh)"
	FieldInjected           Field = "INJETADO (kWh)"
	FieldCompensated        Field = "COMPENSADO (kWh)"
	FieldCurrentBalance     Field = "SALDO ATUAL (kWh)"
)

// Derived and file columns appended by the calling layer.
const (
	FieldFeeRate           Field = "TARIFA FIO B (R$/kWh)"
	FieldCalculatedBalance Field = "SALDO ATUAL (CALC)"
	FieldBalanceCheck      Field = "CHECK SALDO"
	FieldBalanceDifference Field = "DIF (kWh)"
	FieldFile              Field = "ARQUIVO"
)

var recordFields = []Field{
	FieldCustomerName,
	FieldCustomerCode,
	FieldBillingPeriod,
	FieldTotalPayable,
	FieldDueDate,
	FieldPriorReadingDate,
	FieldCurrentReadingDate,
	FieldFeeAmount,
	FieldConsumption,
	FieldPriorBalance,
	FieldInjected,
	FieldCompensated,
	FieldCurrentBalance,
}

var preferredColumns = []Field{
	FieldCustomerName,
	FieldCustomerCode,
	FieldBillingPeriod,
	FieldTotalPayable,
	FieldDueDate,
	FieldPriorReadingDate,
	FieldCurrentReadingDate,
	FieldFeeAmount,
	FieldFeeRate,
	FieldConsumption,
	FieldPriorBalance,
	FieldInjected,
	FieldCompensated,
	FieldCurrentBalance,
	FieldCalculatedBalance,
	FieldBalanceCheck,
	FieldBalanceDifference,
	FieldFile,
}

// RecordFields returns the fixed set of fields the extractor produces, in extraction order.
func RecordFields() []Field {
	out := make([]Field, len(recordFields))
	copy(out, recordFields)
	return out
}

// PreferredColumns returns the export column order.
func PreferredColumns() []Field {
	out := make([]Field, len(preferredColumns))
	copy(out, preferredColumns)
	return out
}

// AsStringSlice returns the preferred column order as plain strings.
func AsStringSlice() []string {
	result := make([]string, len(preferredColumns))
	for i, f := range preferredColumns {
		result[i] = string(f)
	}
	return result
}
