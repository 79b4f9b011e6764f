package scoring

import (
	"math"
	"sort"
)

// =============================================================================
// Series statistics
// =============================================================================

// Mean 평균 계산
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev 표본 표준편차 (n-1). Fewer than two values yields 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// Max returns the largest value, or -Inf for an empty slice.
func Max(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest value, or +Inf for an empty slice.
func Min(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		if v < m {
			m = v
		}
	}
	return m
}

// Percentile 백분위수 계산 (sorted 입력, p: 0~100, 선형 보간)
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Quantile is Percentile over an unsorted slice with q in 0~1.
// The input is not modified.
func Quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, q*100)
}

// Winsorize clips every value above the q quantile down to it.
// It returns the clipped copy and the cap used.
func Winsorize(values []float64, q float64) ([]float64, float64) {
	limit := Quantile(values, q)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Min(v, limit)
	}
	return out, limit
}

// Slope is the OLS slope of values against their index 0..n-1.
// Fewer than two points yields 0; a constant series yields exactly 0.
func Slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xMean := float64(n-1) / 2
	var num, den float64
	for i, y := range values {
		dx := float64(i) - xMean
		// Σdx = 0 이므로 y 대신 y-y0 를 써도 기울기는 같고, 상수 시계열은 정확히 0
		num += dx * (y - values[0])
		den += dx * dx
	}
	return num / den
}

// Tail returns the last n values (all of them when shorter).
func Tail(values []float64, n int) []float64 {
	if n >= len(values) {
		return values
	}
	return values[len(values)-n:]
}

// PctChange is (cur-prev)/|prev| x 100, or 0 when prev is 0.
func PctChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / math.Abs(prev) * 100
}

// SafeDiv returns a/b, or fallback when b is 0.
func SafeDiv(a, b, fallback float64) float64 {
	if b == 0 {
		return fallback
	}
	return a / b
}
