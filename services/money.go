package services

import "github.com/shopspring/decimal"

// mulRound2 computes amount × rate rounded to cents. Decimal arithmetic so
// tier boundaries and commission amounts never drift on binary floats.
func mulRound2(amount, rate float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2)
}

func roundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
