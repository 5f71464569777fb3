package calc

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// DiscountThreshold is the lowest discounted price still treated as a real
	// discount. A cached discounted price below it falls back to the list price.
	DiscountThreshold = decimal.NewFromInt(1)
)

// CalculateDiscount returns price * percent / 100 rounded to cents.
func CalculateDiscount(price decimal.Decimal, percent int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(percent))).Div(hundred).Round(2)
}

// DiscountedPrice returns the absolute discount and the resulting price.
// The pair always satisfies discounted == price - discount.
func DiscountedPrice(price decimal.Decimal, percent int) (discount, discounted decimal.Decimal) {
	discount = CalculateDiscount(price, percent)
	return discount, price.Sub(discount)
}

// UnitPrice is the price a cart line is charged per unit.
func UnitPrice(price, discountedPrice decimal.Decimal) decimal.Decimal {
	if discountedPrice.GreaterThanOrEqual(DiscountThreshold) {
		return discountedPrice
	}
	return price
}

// LineTotal is UnitPrice * qty.
func LineTotal(price, discountedPrice decimal.Decimal, qty int) decimal.Decimal {
	return UnitPrice(price, discountedPrice).Mul(decimal.NewFromInt(int64(qty)))
}
