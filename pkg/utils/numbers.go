package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundTo rounds half away from zero to the given number of decimal places.
// NaN and infinities are returned unchanged.
func RoundTo(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Clamp limits a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
