package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reNonDigit     = regexp.MustCompile(`\D`)
	reNotAmountChr = regexp.MustCompile(`[^0-9.,]`)
)

// NormalizeEnergyQuantity converts a kWh figure in local formatting into an integer.
//
//	"5.920,00" -> 5920   (decimal remainder dropped, not rounded)
//	"16.774"   -> 16774
//	"10 504"   -> 10504  (digit groups broken by a space)
//
// It reports false when no digits remain or the value overflows int64.
func NormalizeEnergyQuantity(raw string) (int64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return 0, false
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ".", "")
	s = reNonDigit.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeCurrencyAmount converts a monetary amount in local formatting into a decimal.
//
//	"R$ 3.914,15" -> 3914.15
//	"0,60"        -> 0.60
//
// Thousands periods are removed and the decimal comma becomes a point.
// Unparseable input reports false.
func NormalizeCurrencyAmount(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(raw, currencySymbol, "")
	s = strings.TrimSpace(strings.ReplaceAll(s, " ", ""))
	s = reNotAmountChr.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
