package payroll

import "math"

// Round2 rounds to cents, half away from zero. Stages round once at their
// boundary; intermediate arithmetic stays unrounded to avoid cent drift.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Cents converts a cent-rounded amount to integer cents for exact
// comparison.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
