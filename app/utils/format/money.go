package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var currencySymbol = "$"

// SetCurrencySymbol changes the symbol used by Money. It is called once at
// start-up from configuration.
func SetCurrencySymbol(symbol string) {
	if symbol != "" {
		currencySymbol = symbol
	}
}

// Money renders an amount for display, e.g. "$1,234.50".
func Money(amount decimal.Decimal) string {
	ac := accounting.Accounting{Symbol: currencySymbol, Precision: 2, Thousand: ",", Decimal: "."}
	return ac.FormatMoneyDecimal(amount)
}

// Fixed renders an amount with exactly two decimals for JSON payloads.
func Fixed(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
