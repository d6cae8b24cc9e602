package extract

import (
	"regexp"
	"strings"
)

// Labels and markers as they appear on the supported invoice layout.
const (
	currencySymbol = "R$"

	labelDueDate        = "VENCIMENTO"
	labelPriorReading   = "LEITURA ANTERIOR"
	labelCurrentReading = "LEITURA ATUAL"

	labelPriorBalance   = "SALDO ANTERIOR"
	labelInjected       = "INJETADO"
	labelCompensated    = "COMPENSADO"
	labelCurrentBalance = "SALDO ATUAL"

	markerCodeAnchor = "B3 COMERCIAL"
	markerFeeLine    = "CUSTO TUSD FIO B"
	markerTariff     = "ENERGIA ATIVA"
	markerSingleRate = "UNICO"

	// only the first lines of a document are searched for the customer name
	nameScanLines = 80
	nameMinRunes  = 12
)

// Lines carrying any of these are issuer boilerplate, never the customer name.
var boilerplateMarkers = [...]string{
	"NEOENERGIA",
	"NOTA FISCAL",
	"CHAVE DE ACESSO",
	"PAGUE COM O PIX",
}

var monthAbbreviations = [...]string{
	"JAN", "FEV", "MAR", "ABR", "MAI", "JUN",
	"JUL", "AGO", "SET", "OUT", "NOV", "DEZ",
}

const (
	datePattern   = `\b\d{2}/\d{2}/\d{4}\b`
	moneyPattern  = `\b\d{1,3}(?:\.\d{3})*,\d{2}\b|\b\d+,\d{2}\b`
	numberPattern = `(?:\d{1,3}(?:\.\d{3})+|\d+)(?:,\d{2})?`
)

var (
	reDate   = regexp.MustCompile(datePattern)
	reMoney  = regexp.MustCompile(moneyPattern)
	reNumber = regexp.MustCompile(numberPattern)

	reBillingPeriod = regexp.MustCompile(`(?i)\b(?:` + strings.Join(monthAbbreviations[:], "|") + `)\s*/\s*\d{4}\b`)

	// prior date, current date, day count, next reading date
	reReadingBlock = regexp.MustCompile(`(` + datePattern + `)\s+(` + datePattern + `)\s+\d+\s+(` + datePattern + `)`)

	reCodeLine     = regexp.MustCompile(`^[0-9.\-]+$`)
	reCustomerCode = regexp.MustCompile(`\b\d{1,3}(?:\.\d{3})*-\d\b|\b\d{6,9}-\d\b`)
	reUpperLetter  = regexp.MustCompile(`[A-ZÁÉÍÓÚÂÊÔÃÕÇ]`)

	reTotalPayable = regexp.MustCompile(`(?i)TOTAL\s+A\s+PAGAR.*?(R\$)?\s*([0-9.,]+)`)
	reFeeNearLabel = regexp.MustCompile(`(?i)CUSTO\s+TUSD\s+FIO\s+B.{0,220}?(` + moneyPattern + `)`)
)

// labelExpr turns a label into a case-insensitive expression tolerant of
// repeated spaces or tabs between its words.
func labelExpr(label string) string {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return `(?i)` + strings.Join(words, `[ \t]+`)
}

// dateAfterLabelRegexp matches the first date that follows label on the same line.
func dateAfterLabelRegexp(label string) *regexp.Regexp {
	return regexp.MustCompile(labelExpr(label) + `.*?(` + datePattern + `)`)
}

// energyAfterLabelRegexp captures the numeric tail that follows label,
// tolerating ':' or '.' separators and whitespace in between.
func energyAfterLabelRegexp(label string) *regexp.Regexp {
	return regexp.MustCompile(labelExpr(label) + `\s*[:.]*\s*([0-9][0-9.,\s]*)`)
}
