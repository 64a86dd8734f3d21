package util

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return RoundN(v, 2)
}

// RoundN rounds half away from zero to n decimal places.
func RoundN(v float64, n int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(n).Float64()
	return f
}
