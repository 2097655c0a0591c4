package core

import "github.com/shopspring/decimal"

// RoundMoney rounds a monetary amount to 2 decimal places using
// fixed-point arithmetic. All monetary values cross storage boundaries
// through decimals so that repeated read-modify-write cycles do not
// accumulate floating-point drift.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// ItemSubtotal computes quantity * unitPrice rounded to 2 decimal places.
func ItemSubtotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromInt(int64(quantity)).
		Mul(decimal.NewFromFloat(unitPrice)).
		Round(2).
		InexactFloat64()
}

// OrderTotal sums item subtotals with decimal precision, rounded to
// 2 decimal places.
func OrderTotal(items []OrderItem) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromInt(int64(item.Quantity)).
			Mul(decimal.NewFromFloat(item.UnitPrice)))
	}
	return total.Round(2).InexactFloat64()
}
