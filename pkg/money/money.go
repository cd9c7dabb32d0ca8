// Package money formats rupiah amounts and gram weights the way receipts print them.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount as "Rp 1.250.000".
func Rupiah(amount int64) string {
	if amount < 0 {
		return "-Rp " + printer.Sprintf("%d", -amount)
	}
	return "Rp " + printer.Sprintf("%d", amount)
}

// Grams formats a weight with two decimals and a comma separator, e.g. "2,35 gr".
func Grams(weight decimal.Decimal) string {
	return strings.Replace(weight.StringFixed(2), ".", ",", 1) + " gr"
}

// Percent formats a percentage without trailing zeros, e.g. "92,5%".
func Percent(p decimal.Decimal) string {
	return strings.Replace(p.String(), ".", ",", 1) + "%"
}
