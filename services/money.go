package services

import "github.com/shopspring/decimal"

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// money rounds to cents and converts back for storage.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func quantity(d decimal.Decimal) float64 {
	f, _ := d.Round(3).Float64()
	return f
}
