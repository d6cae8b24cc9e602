package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/balance"
)

const (
	dateRegex   = `^\d{2}/\d{2}/\d{4}$`
	periodRegex = `^[A-Z]{3}/\d{4}$`
)

// rowSchema describes one output row as consumed downstream.
func rowSchema() map[string]any {
	nullable := func(typ string, extra map[string]any) map[string]any {
		m := map[string]any{"type": []string{typ, "null"}}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}
	date := nullable("string", map[string]any{"pattern": dateRegex})

	props := map[string]any{
		string(constants.FieldCustomerName):       nullable("string", nil),
		string(constants.FieldCustomerCode):       nullable("string", map[string]any{"pattern": `^[0-9.\-]+$`}),
		string(constants.FieldBillingPeriod):      nullable("string", map[string]any{"pattern": periodRegex}),
		string(constants.FieldTotalPayable):       nullable("number", nil),
		string(constants.FieldDueDate):            date,
		string(constants.FieldPriorReadingDate):   date,
		string(constants.FieldCurrentReadingDate): date,
		string(constants.FieldFeeAmount):          nullable("number", nil),
		string(constants.FieldFeeRate):            nullable("number", nil),
		string(constants.FieldConsumption):        nullable("integer", nil),
		string(constants.FieldPriorBalance):       nullable("integer", nil),
		string(constants.FieldInjected):           nullable("integer", nil),
		string(constants.FieldCompensated):        nullable("integer", nil),
		string(constants.FieldCurrentBalance):     nullable("integer", nil),
		string(constants.FieldCalculatedBalance):  nullable("integer", nil),
		string(constants.FieldBalanceCheck): map[string]any{
			"type": "string",
			"enum": []string{string(balance.StatusOK), string(balance.StatusMismatch), string(balance.StatusUnevaluated)},
		},
		string(constants.FieldBalanceDifference): nullable("integer", nil),
		string(constants.FieldFile):              map[string]any{"type": "string"},
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"properties":           props,
		"required":             []string{string(constants.FieldBalanceCheck)},
		"additionalProperties": false,
	}
}

var compiledRowSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(rowSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("row.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("row.json")
})

// JSONValue renders the row as a JSON object keyed by column name.
// Decimals become JSON numbers.
func (r Row) JSONValue() map[string]any {
	out := make(map[string]any, len(r))
	for f, v := range r {
		if d, ok := v.(decimal.Decimal); ok {
			out[string(f)] = json.Number(d.String())
			continue
		}
		out[string(f)] = v
	}
	return out
}

// ValidateRow checks a row against the output schema.
func ValidateRow(r Row) error {
	schema, err := compiledRowSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(r.JSONValue())
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal row: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("row does not match schema: %w", err)
	}
	return nil
}
