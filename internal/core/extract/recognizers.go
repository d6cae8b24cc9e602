package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	recognizeCustomerName   = firstOf[string](nameByHeuristic, firstLine)
	recognizeCustomerCode   = firstOf[string](codeAboveAnchor, codeAnywhere)
	recognizeBillingPeriod  = Strategy[string](billingPeriodToken)
	recognizeTotalPayable   = Strategy[decimal.Decimal](totalAfterLabel)
	recognizeDueDate        = firstOf[string](dateAfterLabel(labelDueDate), firstDate)
	recognizePriorReading   = firstOf[string](dateAfterLabel(labelPriorReading), readingBlockDate(1))
	recognizeCurrentReading = firstOf[string](dateAfterLabel(labelCurrentReading), readingBlockDate(2))
	recognizeFeeAmount      = firstOf[decimal.Decimal](feeOnLabelLine, feeNearLabel)
	recognizeConsumption    = Strategy[int64](consumptionOnTariffLine)

	recognizePriorBalance   = energyAfterLabel(labelPriorBalance)
	recognizeInjected       = energyAfterLabel(labelInjected)
	recognizeCompensated    = energyAfterLabel(labelCompensated)
	recognizeCurrentBalance = energyAfterLabel(labelCurrentBalance)
)

func nameByHeuristic(doc *Document) (string, bool) {
	lines := doc.Lines
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}
	for _, l := range lines {
		up := strings.ToUpper(l)
		if isBoilerplate(up) {
			continue
		}
		if utf8.RuneCountInString(l) >= nameMinRunes && reUpperLetter.MatchString(up) {
			return l, true
		}
	}
	return "", false
}

func isBoilerplate(upper string) bool {
	for _, m := range boilerplateMarkers {
		if strings.Contains(upper, m) {
			return true
		}
	}
	return false
}

func firstLine(doc *Document) (string, bool) {
	if len(doc.Lines) == 0 {
		return "", false
	}
	return doc.Lines[0], true
}

// codeAboveAnchor looks at the line right above the first anchor line.
// The scan stops at that anchor whether or not the line above qualifies.
func codeAboveAnchor(doc *Document) (string, bool) {
	for i, l := range doc.Lines {
		if i == 0 || !strings.Contains(strings.ToUpper(l), markerCodeAnchor) {
			continue
		}
		if c := doc.Lines[i-1]; reCodeLine.MatchString(c) {
			return c, true
		}
		break
	}
	return "", false
}

func codeAnywhere(doc *Document) (string, bool) {
	m := reCustomerCode.FindString(strings.Join(doc.Lines, " "))
	return m, m != ""
}

func billingPeriodToken(doc *Document) (string, bool) {
	m := reBillingPeriod.FindString(doc.Blob)
	if m == "" {
		return "", false
	}
	return strings.ReplaceAll(strings.ToUpper(m), " ", ""), true
}

func totalAfterLabel(doc *Document) (decimal.Decimal, bool) {
	m := reTotalPayable.FindStringSubmatch(doc.Blob)
	if m == nil {
		return decimal.Zero, false
	}
	return NormalizeCurrencyAmount(m[2])
}

func dateAfterLabel(label string) Strategy[string] {
	re := dateAfterLabelRegexp(label)
	return func(doc *Document) (string, bool) {
		m := re.FindStringSubmatch(doc.Blob)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

func firstDate(doc *Document) (string, bool) {
	m := reDate.FindString(doc.Blob)
	return m, m != ""
}

// readingBlockDate picks date number group out of the first reading block:
// 1 is the prior reading, 2 the current one.
func readingBlockDate(group int) Strategy[string] {
	return func(doc *Document) (string, bool) {
		m := reReadingBlock.FindStringSubmatch(doc.Blob)
		if m == nil {
			return "", false
		}
		return m[group], true
	}
}

func feeOnLabelLine(doc *Document) (decimal.Decimal, bool) {
	for _, l := range doc.Lines {
		if !strings.Contains(strings.ToUpper(NormalizeSpaces(l)), markerFeeLine) {
			continue
		}
		if m := reMoney.FindString(l); m != "" {
			return NormalizeCurrencyAmount(m)
		}
	}
	return decimal.Zero, false
}

func feeNearLabel(doc *Document) (decimal.Decimal, bool) {
	m := reFeeNearLabel.FindStringSubmatch(doc.Blob)
	if m == nil {
		return decimal.Zero, false
	}
	return NormalizeCurrencyAmount(m[1])
}

// consumptionOnTariffLine takes the last number on the single-rate active energy line.
func consumptionOnTariffLine(doc *Document) (int64, bool) {
	for _, l := range doc.Lines {
		up := foldAccents(strings.ToUpper(l))
		if !strings.Contains(up, markerTariff) || !strings.Contains(up, markerSingleRate) {
			continue
		}
		nums := reNumber.FindAllString(l, -1)
		if len(nums) == 0 {
			continue
		}
		return NormalizeEnergyQuantity(nums[len(nums)-1])
	}
	return 0, false
}

// energyAfterLabel reads the kWh figure following label in the raw text.
// The captured tail may run into a neighbouring column, so only the first
// well-formed number of it is kept.
func energyAfterLabel(label string) Strategy[int64] {
	re := energyAfterLabelRegexp(label)
	return func(doc *Document) (int64, bool) {
		m := re.FindStringSubmatch(doc.Raw)
		if m == nil {
			return 0, false
		}
		tail := strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, m[1])
		n := reNumber.FindString(tail)
		if n == "" {
			return 0, false
		}
		return NormalizeEnergyQuantity(n)
	}
}

// foldAccents strips combining marks so "ÚNICO" and "UNICO" compare equal.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
