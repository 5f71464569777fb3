package calc_test

import (
	"testing"

	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		name       string
		price      string
		percent    int
		discount   string
		discounted string
	}{
		{"twenty percent of 500.50", "500.50", 20, "100.10", "400.40"},
		{"zero percent", "99.99", 0, "0", "99.99"},
		{"full discount", "42.00", 100, "42.00", "0"},
		{"rounds to cents", "10.00", 33, "3.30", "6.70"},
		{"odd cents", "0.99", 15, "0.15", "0.84"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			discount, discounted := calc.DiscountedPrice(dec(tc.price), tc.percent)
			assert.True(t, dec(tc.discount).Equal(discount), "discount: got %s", discount)
			assert.True(t, dec(tc.discounted).Equal(discounted), "discounted: got %s", discounted)
			assert.True(t, dec(tc.price).Sub(discount).Equal(discounted))
		})
	}
}

func TestUnitPriceThreshold(t *testing.T) {
	assert.True(t, dec("80").Equal(calc.UnitPrice(dec("100"), dec("80"))))
	assert.True(t, dec("100").Equal(calc.UnitPrice(dec("100"), dec("0"))))
	// Anything under 1 counts as "no discount".
	assert.True(t, dec("0.80").Equal(calc.UnitPrice(dec("0.80"), dec("0.50"))))
	assert.True(t, dec("1").Equal(calc.UnitPrice(dec("1.20"), dec("1"))))
}

func TestLineTotal(t *testing.T) {
	assert.True(t, dec("300").Equal(calc.LineTotal(dec("100"), decimal.Zero, 3)))
	assert.True(t, dec("801.80").Equal(calc.LineTotal(dec("500.50"), dec("400.90"), 2)))
}
