package scoring

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to places decimal digits, half away from zero, on the
// shortest decimal form of v so 0.145 rounds to 0.15 rather than 0.14.
// NaN and ±Inf pass through unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Round2 rounds to two decimals (prices, PE statistics).
func Round2(v float64) float64 { return Round(v, 2) }

// Round3 rounds to three decimals (YoY ratios).
func Round3(v float64) float64 { return Round(v, 3) }
