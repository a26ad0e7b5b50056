package domain

import "github.com/shopspring/decimal"

// Decimal places of the money and quantity columns. Values are rounded or
// rejected before they reach the database so stored rows equal returned ones.
const (
	MoneyScale    int32 = 2
	QuantityScale int32 = 3
)

// RoundMoney rounds an amount half away from zero to whole cents
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// FitsScale reports whether d carries no more than places decimal digits
func FitsScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
